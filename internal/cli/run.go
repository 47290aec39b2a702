package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sunieldevarapu/deployment-scheduler/internal/clock"
	"github.com/sunieldevarapu/deployment-scheduler/internal/config"
	"github.com/sunieldevarapu/deployment-scheduler/internal/engine"
	"github.com/sunieldevarapu/deployment-scheduler/internal/gate"
	"github.com/sunieldevarapu/deployment-scheduler/internal/notify"
	"github.com/sunieldevarapu/deployment-scheduler/internal/octopus"
	"github.com/sunieldevarapu/deployment-scheduler/internal/otel"
	"github.com/sunieldevarapu/deployment-scheduler/internal/snow"
)

func newRunCmd() *cobra.Command {
	var (
		metricsAddr string
		httpTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one reconciliation batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPathFrom(ctx))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := slog.With("run_id", uuid.NewString())

			handler, err := otel.InitMeterProvider(ctx, "deploysched")
			if err != nil {
				return fmt.Errorf("init metrics: %w", err)
			}
			if err := otel.InitMetrics(ctx); err != nil {
				return fmt.Errorf("init metrics: %w", err)
			}
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", handler)
				srv := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Warn("metrics server stopped", "addr", metricsAddr, "err", err)
					}
				}()
				defer func() { _ = srv.Close() }()
			}

			httpClient := &http.Client{
				Timeout:   httpTimeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			}

			var notifier notify.Notifier = notify.Noop{}
			if cfg.NotifyConfigured() {
				notifier = notify.NewWebex(cfg.Webex, httpClient)
			} else {
				log.Warn("notification sink not configured, messages will be dropped")
			}

			norm, err := clock.New(cfg.Timezone, time.Duration(cfg.ExpiryDeltaMinutes)*time.Minute)
			if err != nil {
				return fmt.Errorf("load timezone: %w", err)
			}

			oct := octopus.New(cfg.Octopus, httpClient)
			eng := engine.New(
				snow.New(cfg.ServiceNow, httpClient),
				oct,
				gate.New(oct),
				notifier,
				norm,
				cfg.Octopus.ProductionEnvironmentID,
				log,
			)

			log.Info("PROCESS STARTED", "environment", cfg.Environment)
			start := time.Now()
			runErr := eng.Run(ctx)
			otel.RecordRunDuration(ctx, time.Since(start).Seconds())
			log.Info("PROCESS FINISHED", "duration", time.Since(start).Round(time.Millisecond))

			// A wholesale fetch failure defers everything to the next cycle;
			// the scheduler invoking us should not treat that as fatal.
			if runErr != nil {
				log.Error("run deferred", "err", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address for the duration of the run (e.g. 127.0.0.1:9200)")
	cmd.Flags().DurationVar(&httpTimeout, "http-timeout", 30*time.Second, "Timeout for outbound HTTP calls")

	return cmd
}
