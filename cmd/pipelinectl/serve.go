package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbukum/graphflow/httpserver"
	"github.com/kbukum/graphflow/observability"
	"github.com/kbukum/graphflow/version"
)

func newServeCommand(base httpserver.Config) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compile/run endpoints over HTTP using the demo component registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := base
			if host != "" {
				cfg.Host = host
			}
			if port != 0 {
				cfg.Port = port
			}
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts, shutdown, err := telemetryOptions(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			srv := httpserver.New(cfg, demoRegistry(), nil, opts...)
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log.Info().Str("addr", srv.Addr()).Msg("shutting down http server")
			return srv.Stop(context.Background())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (empty = all interfaces)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (0 = default)")
	return cmd
}

// telemetryOptions initializes an OTLP tracer and meter when
// cfg.TelemetryEndpoint is set, returning the httpserver.Option wiring the
// resulting Metrics into every /v1/run execution and a shutdown func that
// flushes both providers.
func telemetryOptions(ctx context.Context, cfg httpserver.Config) ([]httpserver.Option, func(context.Context), error) {
	noop := func(context.Context) {}
	if cfg.TelemetryEndpoint == "" {
		return nil, noop, nil
	}

	tracerCfg := observability.DefaultTracerConfig("pipelinectl")
	tracerCfg.ServiceVersion = version.GetShortVersion()
	tracerCfg.Endpoint = cfg.TelemetryEndpoint
	tracerCfg.Insecure = cfg.TelemetryInsecure
	tp, err := observability.InitTracer(ctx, &tracerCfg)
	if err != nil {
		return nil, noop, err
	}

	meterCfg := observability.DefaultMeterConfig("pipelinectl")
	meterCfg.ServiceVersion = version.GetShortVersion()
	meterCfg.Endpoint = cfg.TelemetryEndpoint
	meterCfg.Insecure = cfg.TelemetryInsecure
	mp, err := observability.InitMeter(ctx, &meterCfg)
	if err != nil {
		return nil, noop, err
	}

	metrics, err := observability.NewMetrics(observability.Meter("pipelinectl"))
	if err != nil {
		return nil, noop, err
	}

	shutdown := func(ctx context.Context) {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
	}
	return []httpserver.Option{httpserver.WithMetrics(metrics)}, shutdown, nil
}
