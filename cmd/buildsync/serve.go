package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/buildsync/pkg/adapters/http"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/metrics"
	"github.com/aretw0/buildsync/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts a build session and exposes it over HTTP: every session operation is
a POST to /rpc/{method}, outputs, ticks and build changes stream over /events (SSE) and
Prometheus metrics are served on /metrics.

With --boot (default) the session is booted from the configured engine manifest
before the server starts listening; otherwise clients call /rpc/boot themselves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		autoBoot, _ := cmd.Flags().GetBool("boot")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if cmd.Flags().Changed("port") {
			a.cfg.HTTP.Port = port
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector, err := metrics.New(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}

		streams := httpAdapter.NewStreamManager(a.logger)
		sess, err := a.newSession(session.WithHooks(domain.CombineHooks(collector.Hooks(), streams.Hooks())))
		if err != nil {
			return err
		}
		defer sess.Close()

		srv := httpAdapter.NewServer(sess, httpAdapter.WithLogger(a.logger), httpAdapter.WithStreams(streams))

		if autoBoot {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			err := a.start(ctx, sess, srv.OnOutput, srv.Builds)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to start session: %w", err)
			}
		}

		mux := http.NewServeMux()
		if a.cfg.HTTP.Metrics {
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		}
		mux.Handle("/", srv.Handler())

		httpServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.HTTP.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			a.logger.Info("Starting buildsync server", "address", httpServer.Addr, "lifecycle", sess.Lifecycle().String())
			serverErrors <- httpServer.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			a.logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				a.logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := httpServer.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			a.logger.Info("buildsync server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("boot", true, "Boot the session from the configured manifest before serving")
}
