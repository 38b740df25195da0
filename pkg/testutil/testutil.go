// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vertti/storecheck/pkg/database"
)

// MemoryDB opens an in-memory SQLite database closed when the test ends.
func MemoryDB(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite://:memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Ptr returns a pointer to the value (useful for optional fields in tests).
func Ptr[T any](v T) *T {
	return &v
}

// ContainsDetail checks if any detail string contains the given substring.
func ContainsDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}
