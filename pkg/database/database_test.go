package database

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(context.Background(), "sqlite://:memory:", log.NewNopLogger())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, DialectSQLite, db.Dialect())

	version, err := db.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^3\.\d+`, version)
}

func TestOpenSharesInMemoryDatabase(t *testing.T) {
	db, err := Open(context.Background(), "sqlite://:memory:", nil)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Gorm.Exec("CREATE TABLE marks (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Gorm.Exec("INSERT INTO marks (id) VALUES (1)").Error)

	var n int64
	require.NoError(t, db.Gorm.Raw("SELECT COUNT(*) FROM marks").Scan(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), "mysql://localhost/posts", nil)
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}

type mockDialer struct {
	dialed string
	err    error
}

func (m *mockDialer) DialContext(_ context.Context, _, address string) (net.Conn, error) {
	m.dialed = address
	if m.err != nil {
		return nil, m.err
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func TestReachable(t *testing.T) {
	t.Run("file dsn needs no dial", func(t *testing.T) {
		d := &mockDialer{}
		require.NoError(t, Reachable(context.Background(), "sqlite://:memory:", d, 0))
		assert.Empty(t, d.dialed)
	})

	t.Run("postgres dials host and port", func(t *testing.T) {
		d := &mockDialer{}
		require.NoError(t, Reachable(context.Background(), "postgres://u@db.internal/posts", d, time.Second))
		assert.Equal(t, "db.internal:5432", d.dialed)
	})

	t.Run("dial failure", func(t *testing.T) {
		d := &mockDialer{err: errors.New("connection refused")}
		err := Reachable(context.Background(), "host=db.internal port=5433", d, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db.internal:5433")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("bad dsn", func(t *testing.T) {
		assert.Error(t, Reachable(context.Background(), "nonsense", &mockDialer{}, 0))
	})
}

func TestGormLoggerLogMode(t *testing.T) {
	l := newGormLogger(log.NewNopLogger())
	silent := l.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Info, l.level, "LogMode must not mutate the receiver")
	assert.Equal(t, gormlogger.Silent, silent.(*gormLogger).level)
}
