package storecheck_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vertti/storecheck/pkg/check"
	"github.com/vertti/storecheck/pkg/database"
	"github.com/vertti/storecheck/pkg/runner"
	"github.com/vertti/storecheck/pkg/scenario"
	"github.com/vertti/storecheck/pkg/store"
)

// Integration tests run the whole scenario against real database engines.
// Unit tests in each package cover edge cases; these tests verify end-to-end integration.

func runScenario(t *testing.T, dsn string) (check.Summary, []check.Result) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open %s: %v", dsn, err)
	}

	var svc *store.Service
	svc = store.New(db.Gorm, store.Settings{},
		store.WithCloser(db),
		store.WithAfterConnected(func(ctx context.Context) error {
			_, err := svc.Clear(ctx)
			return err
		}),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("failed to start store: %v", err)
	}
	defer func() { _ = svc.Stop() }()

	r := runner.New(runner.WithOutput(nil))
	if err := scenario.Register(r, svc, scenario.Options{MinVersion: "1.0", Engine: db}); err != nil {
		t.Fatalf("failed to register scenario: %v", err)
	}

	summary, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return summary, r.Results()
}

func assertAllPassed(t *testing.T, summary check.Summary, results []check.Result) {
	t.Helper()
	for _, res := range results {
		if !res.OK() {
			t.Errorf("%s failed (details: %v, err: %v)", res.Name, res.Details, res.Err)
		}
	}
	if summary.Total != 12 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 12 passed", summary)
	}
}

func TestIntegration_SQLiteFile(t *testing.T) {
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "posts.db")

	summary, results := runScenario(t, dsn)
	assertAllPassed(t, summary, results)

	// A second run against the same file starts from a cleared table.
	summary, results = runScenario(t, dsn)
	assertAllPassed(t, summary, results)
}

func TestIntegration_Postgres(t *testing.T) {
	dsn := os.Getenv("STORECHECK_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STORECHECK_POSTGRES_DSN not set")
	}

	summary, results := runScenario(t, dsn)
	assertAllPassed(t, summary, results)
}
