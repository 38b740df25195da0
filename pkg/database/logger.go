package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's statement log to a go-kit logger.
type gormLogger struct {
	logger log.Logger
	level  gormlogger.LogLevel
}

func newGormLogger(logger log.Logger) *gormLogger {
	return &gormLogger{
		logger: log.With(logger, "component", "gorm"),
		level:  gormlogger.Info,
	}
}

func (l *gormLogger) LogMode(lvl gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = lvl
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		level.Debug(l.logger).Log("msg", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		level.Warn(l.logger).Log("msg", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		level.Error(l.logger).Log("msg", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		level.Error(l.logger).Log("msg", "query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "err", err)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		level.Warn(l.logger).Log("msg", "slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		level.Debug(l.logger).Log("msg", "query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
