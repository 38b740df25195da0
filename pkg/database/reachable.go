package database

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Dialer abstracts network dialing for testability.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Reachable verifies that the server behind a network DSN accepts TCP
// connections. File-backed DSNs are always reachable.
func Reachable(ctx context.Context, dsn string, dialer Dialer, timeout time.Duration) error {
	target, err := ParseDSN(dsn)
	if err != nil {
		return err
	}
	if target.Address == "" {
		return nil
	}

	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", target.Address)
	if err != nil {
		return errors.Wrapf(err, "dial %s", target.Address)
	}
	_ = conn.Close()
	return nil
}
