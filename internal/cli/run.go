package cli

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quarkxr/app"
	"quarkxr/config"
	"quarkxr/hal"
	"quarkxr/internal/buildinfo"
	"quarkxr/telemetry"
)

func newWindowCommand() *cobra.Command {
	var scale int
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Run with a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("scale") {
				cfg.Host.Scale = scale
			}
			return run(cmd.Context(), cfg, func(newApp func(hal.HAL) (func() error, error)) error {
				return hal.RunWindow(newApp, hal.WindowConfig{
					Title: cfg.Host.Title + " (" + buildinfo.Short() + ")",
					Scale: cfg.Host.Scale,
					TPS:   cfg.Host.Hz,
				})
			})
		},
	}
	cmd.Flags().IntVar(&scale, "scale", 2, "window scale")
	return cmd
}

func newHeadlessCommand() *cobra.Command {
	var (
		hz    int
		ticks uint64
	)
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run without a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("hz") {
				cfg.Host.Hz = hz
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Host.Ticks = ticks
			}
			return run(cmd.Context(), cfg, func(newApp func(hal.HAL) (func() error, error)) error {
				err := hal.RunHeadless(cmd.Context(), newApp, hal.HeadlessConfig{Hz: cfg.Host.Hz, Ticks: cfg.Host.Ticks})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().IntVar(&hz, "hz", 60, "tick rate")
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "stop after N ticks (0 = run forever)")
	return cmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if scriptPath != "" {
		cfg.Runtime.Script = scriptPath
	}
	if lockstep {
		cfg.Runtime.Lockstep = true
	}
	return cfg, cfg.Validate()
}

// run wires telemetry around an app runner and tears it down when the runner returns.
func run(ctx context.Context, cfg config.Config, runner func(func(hal.HAL) (func() error, error)) error) error {
	log, closeLog, err := telemetry.NewLogger(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	metrics := telemetry.NewMetrics(cfg.Telemetry.Metrics)
	tracer, err := telemetry.NewTracer(cfg.Telemetry.Tracing, "quarkxr", buildinfo.Short())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return metrics.Serve(gctx, telemetry.Component(log, "metrics")) })

	var a *app.App
	deps := app.Deps{Log: log, Metrics: metrics, Tracer: tracer.Tracer()}
	runErr := runner(app.Factory(gctx, cfg, deps, func(created *app.App) { a = created }))
	if a != nil {
		if err := a.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}

	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown")
	}
	logExit(log, runErr)
	return runErr
}

func logExit(log zerolog.Logger, err error) {
	if err != nil {
		log.Error().Err(err).Msg("stopped")
		return
	}
	log.Info().Msg("stopped")
}
