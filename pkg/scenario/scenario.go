// Package scenario registers the posts integration check sequence.
//
// The checks share state through closures: CREATE records the new post's
// id and every later check addresses that post. They must run in order.
package scenario

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/vertti/storecheck/pkg/runner"
	"github.com/vertti/storecheck/pkg/store"
	"github.com/vertti/storecheck/pkg/version"
)

// Versioner reports the database engine version.
type Versioner interface {
	ServerVersion(ctx context.Context) (string, error)
}

// Options tunes the scenario.
type Options struct {
	// MinVersion, when set, prepends a VERSION check requiring the engine
	// to be at least this version. Engine must then be set.
	MinVersion string
	Engine     Versioner
	Logger     log.Logger
}

// Posts is the sequence of calls the scenario makes against the store.
type Posts interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, in store.PostInput) (store.Post, error)
	Find(ctx context.Context, params store.FindParams) ([]store.Post, error)
	Get(ctx context.Context, id uint) (store.Post, error)
	Update(ctx context.Context, id uint, update store.PostUpdate) (store.Post, error)
	Remove(ctx context.Context, id uint) (store.Post, error)
	Vote(ctx context.Context, id uint) (store.Post, error)
	Unvote(ctx context.Context, id uint) (store.Post, error)
	Document(p store.Post) store.Document
}

type scenario struct {
	posts  Posts
	logger log.Logger
	id     uint
}

// Register adds the scenario's checks to r in execution order.
func Register(r *runner.Runner, posts Posts, opts Options) error {
	s := &scenario{posts: posts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.NewNopLogger()
	}

	if opts.MinVersion != "" {
		if err := registerVersion(r, opts.Engine, opts.MinVersion, s.logger); err != nil {
			return err
		}
	}

	steps := []func(*runner.Runner) error{
		s.count("COUNT", 0),
		s.create,
		s.find,
		s.get("GET", func(p store.Post) bool { return p.ID == s.id }),
		s.votes("VOTE", posts.Vote, 3),
		s.update,
		s.get("GET", func(p store.Post) bool { return p.ID == s.id && p.Title == "Hello 2" && p.Votes == 3 }),
		s.votes("UNVOTE", posts.Unvote, 2),
		s.count("COUNT", 1),
		s.remove,
		s.count("COUNT", 0),
	}
	for _, register := range steps {
		if err := register(r); err != nil {
			return err
		}
	}
	return nil
}

func registerVersion(r *runner.Runner, engine Versioner, minimum string, logger log.Logger) error {
	if engine == nil {
		return runner.ErrInvalidCheck
	}
	return runner.Register(r, "VERSION",
		func(ctx context.Context) (string, error) { return engine.ServerVersion(ctx) },
		func(v string) bool {
			ok, err := version.AtLeast(v, minimum)
			level.Debug(logger).Log("msg", "engine version", "version", v, "minimum", minimum, "err", err)
			return err == nil && ok
		})
}

func (s *scenario) show(name string, p store.Post) {
	level.Debug(s.logger).Log("msg", "result", "check", name, "doc", fmtDoc(s.posts.Document(p)))
}

func (s *scenario) count(name string, want int64) func(*runner.Runner) error {
	return func(r *runner.Runner) error {
		return runner.Register(r, name, s.posts.Count, func(n int64) bool {
			level.Debug(s.logger).Log("msg", "result", "check", name, "count", n)
			return n == want
		})
	}
}

func (s *scenario) create(r *runner.Runner) error {
	return runner.Register(r, "CREATE",
		func(ctx context.Context) (store.Post, error) {
			return s.posts.Create(ctx, store.PostInput{
				Title:   "Hello",
				Content: "Post content",
				Votes:   2,
				Status:  true,
			})
		},
		func(p store.Post) bool {
			s.id = p.ID
			s.show("CREATE", p)
			return p.ID != 0 && p.Title == "Hello" && p.Content == "Post content" && p.Votes == 2 && p.Status
		})
}

func (s *scenario) find(r *runner.Runner) error {
	return runner.Register(r, "FIND",
		func(ctx context.Context) ([]store.Post, error) {
			return s.posts.Find(ctx, store.FindParams{})
		},
		func(posts []store.Post) bool {
			for _, p := range posts {
				s.show("FIND", p)
			}
			return len(posts) == 1 && posts[0].ID == s.id
		})
}

func (s *scenario) get(name string, predicate func(store.Post) bool) func(*runner.Runner) error {
	return func(r *runner.Runner) error {
		return runner.Register(r, name,
			func(ctx context.Context) (store.Post, error) { return s.posts.Get(ctx, s.id) },
			func(p store.Post) bool {
				s.show(name, p)
				return predicate(p)
			})
	}
}

func (s *scenario) votes(name string, action func(context.Context, uint) (store.Post, error), want int) func(*runner.Runner) error {
	return func(r *runner.Runner) error {
		return runner.Register(r, name,
			func(ctx context.Context) (store.Post, error) { return action(ctx, s.id) },
			func(p store.Post) bool {
				s.show(name, p)
				return p.ID == s.id && p.Votes == want
			})
	}
}

func (s *scenario) update(r *runner.Runner) error {
	title, content := "Hello 2", "Post content 2"
	return runner.Register(r, "UPDATE",
		func(ctx context.Context) (store.Post, error) {
			return s.posts.Update(ctx, s.id, store.PostUpdate{Title: &title, Content: &content})
		},
		func(p store.Post) bool {
			s.show("UPDATE", p)
			return p.ID != 0 && p.Title == title && p.Content == content && p.Votes == 3 && p.Status && !p.UpdatedAt.IsZero()
		})
}

func (s *scenario) remove(r *runner.Runner) error {
	return runner.Register(r, "REMOVE",
		func(ctx context.Context) (store.Post, error) { return s.posts.Remove(ctx, s.id) },
		func(p store.Post) bool {
			s.show("REMOVE", p)
			return p.ID == s.id
		})
}
