package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/vertti/storecheck/pkg/check"
	"github.com/vertti/storecheck/pkg/config"
	"github.com/vertti/storecheck/pkg/database"
	"github.com/vertti/storecheck/pkg/output"
	"github.com/vertti/storecheck/pkg/runner"
	"github.com/vertti/storecheck/pkg/scenario"
	"github.com/vertti/storecheck/pkg/store"
)

// ErrCheckFailed is returned when at least one check fails.
// The returned error causes Cobra to exit with code 1.
var ErrCheckFailed = errors.New("check failed")

// execute starts the store, runs the scenario, stops the store and then
// writes the report.
func execute(ctx context.Context, cfg *config.Config, logger log.Logger, stdout, stderr io.Writer) (check.Summary, error) {
	if err := database.Reachable(ctx, cfg.DSN, nil, 0); err != nil {
		return check.Summary{}, fmt.Errorf("database unreachable: %w", err)
	}

	db, err := database.Open(ctx, cfg.DSN, logger)
	if err != nil {
		return check.Summary{}, err
	}

	var svc *store.Service
	svc = store.New(db.Gorm, store.Settings{Fields: cfg.Fields},
		store.WithLogger(logger),
		store.WithCloser(db),
		store.WithAfterConnected(func(ctx context.Context) error {
			_, err := svc.Clear(ctx)
			return err
		}),
	)
	if err := svc.Start(ctx); err != nil {
		_ = db.Close()
		return check.Summary{}, err
	}

	progress := stdout
	if cfg.Format == config.FormatJSON {
		progress = stderr
	}

	r := runner.New(
		runner.WithLogger(logger),
		runner.WithOutput(progress),
		runner.WithTimeout(cfg.Timeout),
		runner.WithStartDelay(cfg.StartDelay),
	)
	if err := scenario.Register(r, svc, scenario.Options{
		MinVersion: cfg.MinVersion,
		Engine:     db,
		Logger:     logger,
	}); err != nil {
		_ = svc.Stop()
		return check.Summary{}, err
	}

	summary, runErr := r.Run(ctx)

	if err := svc.Stop(); err != nil {
		level.Info(logger).Log("msg", "stopping store", "err", err)
	}
	if runErr != nil {
		return summary, runErr
	}

	if cfg.Format == config.FormatJSON {
		return summary, output.WriteJSON(stdout, r.Results())
	}
	output.PrintSummary(stdout, summary)
	return summary, nil
}
