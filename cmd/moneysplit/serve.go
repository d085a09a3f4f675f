package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/moneysplit/moneysplit/internal/api"
	"github.com/moneysplit/moneysplit/internal/config"
	"github.com/moneysplit/moneysplit/internal/jurisdiction"
	"github.com/moneysplit/moneysplit/internal/store"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			rulesFile, _ := cmd.Flags().GetString("rules")
			return runServer(cmd.Context(), addr, rulesFile)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("rules", "", "jurisdiction rules YAML overriding built-in defaults")
	return cmd
}

func runServer(ctx context.Context, addr, rulesFile string) error {
	// Missing .env is fine; DATABASE_URL may come from the environment.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	startupReg, err := config.LoadRegistry(rulesFile)
	if err != nil {
		return fmt.Errorf("loading rules file %s: %w", rulesFile, err)
	}
	base := func() *jurisdiction.Registry { return startupReg }

	var (
		records  *store.RecordsRepo
		brackets *store.BracketsRepo
	)
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer store.Close()
		if err := store.InitSchema(ctx); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
		records = store.NewRecordsRepo(store.GetPool())
		brackets = store.NewBracketsRepo(store.GetPool())
		if err := brackets.SeedDefaults(ctx, startupReg); err != nil {
			return fmt.Errorf("seeding default brackets: %w", err)
		}
		logger.Info("database connected")
	} else {
		logger.Warn("DATABASE_URL not set; persistence endpoints disabled")
	}

	server := api.NewServer(logger, api.NewMetrics(), records, brackets, base)
	if records != nil {
		server.SetReadinessCheck(store.Ping)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
