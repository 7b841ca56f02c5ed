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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/crypteax/crypteax-be/internal/config"
	"github.com/crypteax/crypteax-be/internal/logger"
	"github.com/crypteax/crypteax-be/internal/nonce"
	"github.com/crypteax/crypteax-be/internal/server"
	"github.com/crypteax/crypteax-be/internal/siwe"
	"github.com/crypteax/crypteax-be/internal/storage"
	postgres "github.com/crypteax/crypteax-be/internal/storage/postgres"
)

const serviceName = "crypteax-be"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Wallet sign-in and profile backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(serveCmd(), migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(*cobra.Command, []string) error {
				url, err := config.LoadDatabaseURL()
				if err != nil {
					return err
				}
				return postgres.MigrateUp(url)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(*cobra.Command, []string) error {
				url, err := config.LoadDatabaseURL()
				if err != nil {
					return err
				}
				return postgres.MigrateDown(url)
			},
		},
	)
	return migrate
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(serviceName, cfg.Debug)
	zlog.Logger = log

	userStore, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer userStore.Close()

	redisClient, err := nonce.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	defer redisClient.Close()
	nonces := nonce.NewStore(redisClient, cfg.Redis.NonceTTL)

	verifier := siwe.NewVerifier(siwe.Config{
		ProjectID: cfg.Wallet.ProjectID,
		RPCURL:    cfg.Wallet.RPCURL,
		Domain:    cfg.Wallet.Domain,
		Timeout:   cfg.Wallet.VerifyTimeout,
	})
	defer verifier.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(cfg, server.Deps{
		Store:    userStore,
		Nonces:   nonces,
		Verifier: verifier,
		Registry: registry,
		Checks: map[string]storage.Pinger{
			"postgres": userStore,
			"redis":    nonces,
		},
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Msg("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
