package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/beaver/internal/bootstrap"
	"github.com/fyrsmithlabs/beaver/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type runOptions struct {
	metricsAddr string
	once        bool
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bootstrap configuration and logging, then wait for a signal",
		Long: `Load configuration, install the logging dispatcher and keep it alive
until SIGINT or SIGTERM. Every sink is flushed before the command exits.

Examples:
  # Run with ./etc/config.yaml and serve sink metrics
  beaver run --config-dir ./etc --metrics-addr :9464

  # Check that logging comes up, then exit
  beaver run --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, flags, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve sink metrics on this address, e.g. :9464")
	cmd.Flags().BoolVar(&opts.once, "once", false, "exit right after initialization")
	return cmd
}

// run bootstraps the process and blocks until ctx is cancelled.
// The console appender writes to stdout.
func run(ctx context.Context, flags *rootFlags, opts *runOptions, stdout, stderr io.Writer) (err error) {
	reg := prometheus.NewRegistry()
	b := bootstrap.New(append(flags.bootstrapOptions(),
		bootstrap.WithMetricsRegisterer(reg),
		bootstrap.WithLoggingOptions(logging.WithStdout(stdout)),
	)...)
	if err := b.Initialize(); err != nil {
		return err
	}
	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "failed to flush logs: %v\n", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	logger := logging.L().Named("beaver")
	logger.Info("bootstrap initialized",
		zap.String("version", version),
		zap.String("config", b.Config().File()))

	if opts.once {
		return nil
	}
	if opts.metricsAddr == "" {
		<-ctx.Done()
		logger.Info("shutting down")
		return nil
	}
	return serveMetrics(ctx, opts.metricsAddr, reg, logger)
}

// serveMetrics exposes reg on /metrics until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
