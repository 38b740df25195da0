// Package store is a posts service over gorm: the system the integration
// checks exercise. Each action is a thin pass-through to the ORM.
package store

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Settings configures the service.
type Settings struct {
	// Fields whitelists the document fields rendered by Document.
	Fields []string
}

// Service exposes count/create/find/get/update/remove/vote/unvote actions
// over the posts table.
type Service struct {
	db             *gorm.DB
	logger         log.Logger
	fields         []string
	afterConnected func(ctx context.Context) error
	closer         io.Closer

	mu      sync.Mutex
	started bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAfterConnected registers a hook run by Start once the schema is ready.
func WithAfterConnected(fn func(ctx context.Context) error) Option {
	return func(s *Service) {
		s.afterConnected = fn
	}
}

// WithCloser hands ownership of the database connection to the service;
// Stop closes it.
func WithCloser(c io.Closer) Option {
	return func(s *Service) {
		s.closer = c
	}
}

// New returns a Service over db. Start must be called before any action.
func New(db *gorm.DB, settings Settings, opts ...Option) *Service {
	s := &Service{
		db:     db,
		logger: log.NewNopLogger(),
		fields: settings.Fields,
	}
	if len(s.fields) == 0 {
		s.fields = DefaultFields
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With(s.logger, "component", "posts")
	return s
}

// Start migrates the posts table and runs the after-connected hook.
func (s *Service) Start(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&postModel{}); err != nil {
		return errors.Wrap(err, "migrate posts")
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	level.Info(s.logger).Log("msg", "connected successfully")

	if s.afterConnected != nil {
		if err := s.afterConnected(ctx); err != nil {
			return errors.Wrap(err, "after connected")
		}
	}
	return nil
}

// Stop closes the database connection when the service owns it.
func (s *Service) Stop() error {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	if s.closer == nil {
		return nil
	}
	level.Debug(s.logger).Log("msg", "closing database")
	return s.closer.Close()
}

func (s *Service) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Count returns the number of posts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&postModel{}).Count(&n).Error; err != nil {
		return 0, s.logError("posts_count_failed", err)
	}
	return n, nil
}

// Create inserts a post and returns it as stored.
func (s *Service) Create(ctx context.Context, in PostInput) (Post, error) {
	if err := s.ready(); err != nil {
		return Post{}, err
	}
	row := postModelFromInput(in)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return Post{}, ErrConflict
		}
		return Post{}, s.logError("posts_create_failed", err, "title", in.Title)
	}
	return row.toEntity(), nil
}

// Find lists posts.
func (s *Service) Find(ctx context.Context, params FindParams) ([]Post, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	order, err := orderClause(params.Sort)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&postModel{}).Order(order)
	if params.Limit > 0 {
		tx = tx.Limit(params.Limit)
	}
	if params.Offset > 0 {
		tx = tx.Offset(params.Offset)
	}

	var rows []postModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, s.logError("posts_find_failed", err)
	}
	return toEntities(rows), nil
}

// Get returns the post with the given id.
func (s *Service) Get(ctx context.Context, id uint) (Post, error) {
	if err := s.ready(); err != nil {
		return Post{}, err
	}
	row, err := s.first(s.db.WithContext(ctx), id)
	if err != nil {
		return Post{}, err
	}
	return row.toEntity(), nil
}

// Update changes the given fields of a post and returns the result.
func (s *Service) Update(ctx context.Context, id uint, update PostUpdate) (Post, error) {
	if err := s.ready(); err != nil {
		return Post{}, err
	}

	var out postModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.first(tx, id)
		if err != nil {
			return err
		}
		cols := update.columns()
		if len(cols) > 0 {
			if err := tx.Model(&row).Updates(cols).Error; err != nil {
				return s.logError("posts_update_failed", err, "id", id)
			}
		}
		out, err = s.first(tx, id)
		return err
	})
	if err != nil {
		return Post{}, err
	}
	return out.toEntity(), nil
}

// Remove deletes a post and returns it as it was.
func (s *Service) Remove(ctx context.Context, id uint) (Post, error) {
	if err := s.ready(); err != nil {
		return Post{}, err
	}

	var removed postModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.first(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&postModel{}, row.ID).Error; err != nil {
			return s.logError("posts_remove_failed", err, "id", id)
		}
		removed = row
		return nil
	})
	if err != nil {
		return Post{}, err
	}
	return removed.toEntity(), nil
}

// Vote increments the post's votes and returns the fresh post.
func (s *Service) Vote(ctx context.Context, id uint) (Post, error) {
	return s.adjustVotes(ctx, id, 1)
}

// Unvote decrements the post's votes and returns the fresh post.
func (s *Service) Unvote(ctx context.Context, id uint) (Post, error) {
	return s.adjustVotes(ctx, id, -1)
}

func (s *Service) adjustVotes(ctx context.Context, id uint, delta int) (Post, error) {
	if err := s.ready(); err != nil {
		return Post{}, err
	}

	var out postModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.first(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&row).UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error; err != nil {
			return s.logError("posts_adjust_votes_failed", err, "id", id, "delta", delta)
		}
		out, err = s.first(tx, id)
		return err
	})
	if err != nil {
		return Post{}, err
	}
	return out.toEntity(), nil
}

// Clear deletes every post and returns how many were removed.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&postModel{})
	if res.Error != nil {
		return 0, s.logError("posts_clear_failed", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) first(tx *gorm.DB, id uint) (postModel, error) {
	if id == 0 {
		return postModel{}, ErrInvalidID
	}
	var row postModel
	if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return postModel{}, ErrNotFound
		}
		return postModel{}, s.logError("posts_get_failed", err, "id", id)
	}
	return row, nil
}

func orderClause(sort string) (string, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return "id ASC", nil
	}
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = sort[1:]
	}
	col, ok := sortColumns[sort]
	if !ok {
		return "", errors.Wrap(ErrBadSort, sort)
	}
	return col + " " + dir, nil
}

func (s *Service) logError(msg string, err error, keyvals ...interface{}) error {
	level.Error(s.logger).Log(append([]interface{}{"msg", msg, "err", err}, keyvals...)...)
	return errors.Wrap(err, strings.ReplaceAll(msg, "_", " "))
}
