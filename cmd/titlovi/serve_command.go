package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Belphemur/titlovi/internal/config"
	grpcserver "github.com/Belphemur/titlovi/internal/grpc"
	"github.com/Belphemur/titlovi/internal/metrics"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var healthInterval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC health endpoint and the metrics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return serve(cmd.Context(), a, healthInterval)
			})
		},
	}

	cmd.Flags().DurationVar(&healthInterval, "health-interval", 5*time.Minute, "How often the catalog login is checked")
	return cmd
}

func serve(parent context.Context, a *app, healthInterval time.Duration) error {
	cfg := a.cfg
	logger := config.GetLogger()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter := grpcserver.NewHealthReporter(a.registry, a.tokens)
	grpcServer := grpcserver.NewGRPCServer(reporter)

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	logger.Info().Str("address", address).Msg("Starting gRPC server")

	if healthInterval <= 0 {
		healthInterval = 5 * time.Minute
	}
	go func() {
		reporter.Check(ctx)
		ticker := time.NewTicker(healthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reporter.Check(ctx)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down")
		reporter.Shutdown()
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	logger.Info().Msg("Server stopped gracefully")
	return nil
}
