// Package database opens the relational database behind the posts store.
// SQLite and PostgreSQL DSNs are supported; the dialect is chosen from the
// DSN's form.
package database

import (
	"context"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	pingTimeout = 5 * time.Second
)

// DB wraps a gorm handle together with the dialect it was opened with.
type DB struct {
	Gorm    *gorm.DB
	dialect string
}

// Open connects to dsn and verifies the connection with a ping.
func Open(ctx context.Context, dsn string, logger log.Logger) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}

	target, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch target.Dialect {
	case DialectSQLite:
		dialector = sqlite.Open(target.Source)
	case DialectPostgres:
		dialector = postgres.Open(target.Source)
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, errors.Wrapf(err, "open gorm %s", target.Dialect)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s sql db handle", target.Dialect)
	}

	// Every connection to ":memory:" gets its own empty database.
	if target.InMemory {
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "ping %s", target.Dialect)
	}
	return &DB{Gorm: gdb, dialect: target.Dialect}, nil
}

// Dialect returns DialectSQLite or DialectPostgres.
func (d *DB) Dialect() string {
	return d.dialect
}

// ServerVersion asks the engine for its version string.
func (d *DB) ServerVersion(ctx context.Context) (string, error) {
	query := "SELECT sqlite_version()"
	if d.dialect == DialectPostgres {
		query = "SHOW server_version"
	}

	var version string
	if err := d.Gorm.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", errors.Wrap(err, "query server version")
	}
	return version, nil
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.Gorm == nil {
		return nil
	}
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
