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

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RynoXLI/allformats/internal/config"
	"github.com/RynoXLI/allformats/internal/events"
	"github.com/RynoXLI/allformats/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper, load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. SIGINT or SIGTERM shuts the server down
gracefully, letting in-flight requests finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "listen host")
	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().Int("rate-limit", ratelimit.DefaultLimit, "requests allowed per client per window")
	cmd.Flags().Duration("rate-window", ratelimit.DefaultWindow, "rate limit window length")
	_ = v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("ratelimit.limit", cmd.Flags().Lookup("rate-limit"))
	_ = v.BindPFlag("ratelimit.window", cmd.Flags().Lookup("rate-window"))

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Setup logger
	logger, err := newLogger(cfg.Logging, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("Starting API server...")

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	logger.Info("Catalog loaded", "formats", cat.Len(), "path", cfg.Catalog.Path)

	limiter := ratelimit.New(ratelimit.WithSweep(cfg.RateLimit.SweepEvery, cfg.RateLimit.SweepInterval))

	// Connect to NATS when configured; denials are still enforced without it
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("allformats"))
		if err != nil {
			return fmt.Errorf("unable to connect to NATS: %w", err)
		}
		defer nc.Close()
		publisher = events.NewPublisher(nc)
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	}

	router := NewRouter(RouterDeps{
		Config:    cfg,
		Catalog:   cat,
		Limiter:   limiter,
		Publisher: publisher,
		Logger:    logger,
	})

	// Wrap with h2c for HTTP/2
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", srv.Addr, "docs", cfg.Server.EnableDocs)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("HTTP server stopped gracefully", "tracked_clients", limiter.Len())
	return nil
}
