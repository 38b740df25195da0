package database

import (
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const defaultPostgresPort = "5432"

// Target is a parsed DSN.
type Target struct {
	Dialect  string
	Source   string // what the gorm driver is opened with
	Address  string // host:port for network dialects
	InMemory bool
}

// ParseDSN works out the dialect and driver source for dsn.
//
//	sqlite://:memory:          in-memory SQLite
//	sqlite:///tmp/posts.db     SQLite file
//	file:posts.db?cache=shared SQLite file URI, passed through
//	posts.db                   SQLite file
//	postgres://u:p@host/db     PostgreSQL URL
//	host=h port=5432 ...       PostgreSQL key/value DSN
func ParseDSN(dsn string) (Target, error) {
	dsn = strings.TrimSpace(dsn)

	switch {
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "sqlite3://"):
		_, source, _ := strings.Cut(dsn, "://")
		if source == "" {
			return Target{}, errors.Errorf("sqlite dsn %q has no path", dsn)
		}
		return Target{Dialect: DialectSQLite, Source: source, InMemory: isMemory(source)}, nil

	case strings.HasPrefix(dsn, "file:"):
		return Target{Dialect: DialectSQLite, Source: dsn, InMemory: isMemory(dsn)}, nil

	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		u, err := url.Parse(dsn)
		if err != nil {
			return Target{}, errors.Wrap(err, "parse postgres dsn")
		}
		host, port := u.Hostname(), u.Port()
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = defaultPostgresPort
		}
		return Target{Dialect: DialectPostgres, Source: dsn, Address: net.JoinHostPort(host, port)}, nil

	case strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname="):
		fields := keyValues(dsn)
		host, port := fields["host"], fields["port"]
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = defaultPostgresPort
		}
		return Target{Dialect: DialectPostgres, Source: dsn, Address: net.JoinHostPort(host, port)}, nil

	case strings.HasSuffix(dsn, ".db") || strings.HasSuffix(dsn, ".sqlite") || dsn == ":memory:":
		return Target{Dialect: DialectSQLite, Source: dsn, InMemory: isMemory(dsn)}, nil
	}

	return Target{}, errors.Errorf("unrecognized dsn %q", dsn)
}

func isMemory(source string) bool {
	return strings.Contains(source, ":memory:") || strings.Contains(source, "mode=memory")
}

func keyValues(dsn string) map[string]string {
	out := make(map[string]string)
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if ok {
			out[k] = strings.Trim(v, "'")
		}
	}
	return out
}
