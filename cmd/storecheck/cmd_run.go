package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kolide/kit/logutil"
	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"github.com/vertti/storecheck/pkg/check"
	"github.com/vertti/storecheck/pkg/config"
)

var (
	runConfigFile string
	runDSN        string
	runFields     []string
	runTimeout    time.Duration
	runStartDelay time.Duration
	runMinVersion string
	runFormat     string
	runDebug      bool
)

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run the posts integration checks",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	runCmd.Flags().StringVar(&runConfigFile, "config", "", "path to config file (default: search up for "+config.FileName+")")
	runCmd.Flags().StringVar(&runDSN, "dsn", "", "database DSN (default "+config.DefaultDSN+" or $"+config.DSNEnv+")")
	runCmd.Flags().StringSliceVar(&runFields, "fields", nil, "document fields shown in debug output")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-check timeout (0 waits indefinitely)")
	runCmd.Flags().DurationVar(&runStartDelay, "start-delay", 0, "wait before the first check")
	runCmd.Flags().StringVar(&runMinVersion, "min-version", "", "minimum database engine version")
	runCmd.Flags().StringVar(&runFormat, "format", "", "report format: text or json")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logutil.NewCLILogger(cfg.Debug)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		g       run.Group
		summary check.Summary
	)
	{
		g.Add(func() error {
			var err error
			summary, err = execute(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		}, func(error) {
			cancel()
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		g.Add(func() error {
			select {
			case s := <-sig:
				return fmt.Errorf("received signal %s", s)
			case <-ctx.Done():
				return nil
			}
		}, func(error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		return err
	}
	if !summary.OK() {
		return ErrCheckFailed
	}
	return nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	path, err := config.FindFile(wd, runConfigFile)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dsn") {
		cfg.DSN = runDSN
	}
	if flags.Changed("fields") {
		cfg.Fields = runFields
	}
	if flags.Changed("timeout") {
		cfg.Timeout = runTimeout
	}
	if flags.Changed("start-delay") {
		cfg.StartDelay = runStartDelay
	}
	if flags.Changed("min-version") {
		cfg.MinVersion = runMinVersion
	}
	if flags.Changed("format") {
		cfg.Format = runFormat
	}
	if flags.Changed("debug") {
		cfg.Debug = runDebug
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}
