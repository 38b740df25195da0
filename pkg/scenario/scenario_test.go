package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertti/storecheck/pkg/check"
	"github.com/vertti/storecheck/pkg/database"
	"github.com/vertti/storecheck/pkg/runner"
	"github.com/vertti/storecheck/pkg/store"
)

var wantNames = []string{"COUNT", "CREATE", "FIND", "GET", "VOTE", "UPDATE", "GET", "UNVOTE", "COUNT", "REMOVE", "COUNT"}

func startStore(t *testing.T) (*store.Service, *database.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, "sqlite://:memory:", nil)
	require.NoError(t, err)

	var svc *store.Service
	svc = store.New(db.Gorm, store.Settings{},
		store.WithCloser(db),
		store.WithAfterConnected(func(ctx context.Context) error {
			_, err := svc.Clear(ctx)
			return err
		}),
	)
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() { _ = svc.Stop() })
	return svc, db
}

func names(results []check.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestScenarioPassesAgainstSQLite(t *testing.T) {
	svc, _ := startStore(t)
	r := runner.New(runner.WithOutput(nil))

	require.NoError(t, Register(r, svc, Options{}))
	assert.Equal(t, len(wantNames), r.Len())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	for _, res := range r.Results() {
		assert.True(t, res.OK(), "%s failed: %v %v", res.Name, res.Details, res.Err)
	}
	assert.Equal(t, check.Summary{Total: 11, Passed: 11}, summary)
	assert.Equal(t, wantNames, names(r.Results()))
}

func TestScenarioVersionGate(t *testing.T) {
	t.Run("engine new enough", func(t *testing.T) {
		svc, db := startStore(t)
		r := runner.New(runner.WithOutput(nil))

		require.NoError(t, Register(r, svc, Options{MinVersion: "3.0", Engine: db}))

		summary, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, check.Summary{Total: 12, Passed: 12}, summary)
		assert.Equal(t, "VERSION", r.Results()[0].Name)
	})

	t.Run("engine too old", func(t *testing.T) {
		svc, db := startStore(t)
		r := runner.New(runner.WithOutput(nil))

		require.NoError(t, Register(r, svc, Options{MinVersion: "99.0", Engine: db}))

		summary, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, check.Summary{Total: 12, Passed: 11, Failed: 1}, summary)
		assert.False(t, r.Results()[0].OK())
	})

	t.Run("engine missing", func(t *testing.T) {
		svc, _ := startStore(t)
		r := runner.New(runner.WithOutput(nil))

		err := Register(r, svc, Options{MinVersion: "3.0"})
		assert.ErrorIs(t, err, runner.ErrInvalidCheck)
	})
}

// brokenVotes wraps a real store but never changes vote counts.
type brokenVotes struct {
	*store.Service
}

func (b brokenVotes) Vote(ctx context.Context, id uint) (store.Post, error) {
	return b.Get(ctx, id)
}

func TestScenarioReportsWrongVoteCount(t *testing.T) {
	svc, _ := startStore(t)
	r := runner.New(runner.WithOutput(nil))

	require.NoError(t, Register(r, brokenVotes{svc}, Options{}))

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	var failed []string
	for _, res := range r.Results() {
		if !res.OK() {
			failed = append(failed, res.Name)
		}
	}
	// Votes stay at 2, so every later votes assertion cascades.
	assert.Equal(t, []string{"VOTE", "UPDATE", "GET", "UNVOTE"}, failed)
	assert.Equal(t, 11, summary.Total)
}

// failingCreate rejects every create.
type failingCreate struct {
	*store.Service
}

func (f failingCreate) Create(context.Context, store.PostInput) (store.Post, error) {
	return store.Post{}, errors.New("disk full")
}

func TestScenarioCreateFailureCascades(t *testing.T) {
	svc, _ := startStore(t)
	r := runner.New(runner.WithOutput(nil))

	require.NoError(t, Register(r, failingCreate{svc}, Options{}))

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	results := r.Results()
	require.Len(t, results, 11)
	assert.True(t, results[0].OK(), "first COUNT")
	assert.False(t, results[1].OK(), "CREATE")
	assert.EqualError(t, results[1].Err, "disk full")
	// Nothing was created, so the COUNT checks expecting zero still pass.
	assert.True(t, results[10].OK(), "last COUNT")
	assert.Equal(t, check.Summary{Total: 11, Passed: 2, Failed: 9}, summary)
}

func TestFmtDoc(t *testing.T) {
	got := fmtDoc(store.Document{"votes": 3, "id": uint(1), "title": "Hello"})
	assert.Equal(t, "id=1 title=Hello votes=3", got)
}
