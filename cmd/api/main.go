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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"clawfans/cmd/app"
	"clawfans/internal/config"
	"clawfans/internal/database"
	handlers "clawfans/internal/handler"
	"clawfans/internal/logging"
)

const shutdownTimeout = 15 * time.Second

var runMigrations bool

var rootCmd = &cobra.Command{
	Use:   "clawfans",
	Short: "ClawFans subscription content API",
	Long: `ClawFans serves the agent, post, subscription and analytics API over
PostgreSQL, with Stripe for paid subscriptions and MinIO for media.

Running without a subcommand is the same as "clawfans serve".`,
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the bootstrap schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logging.Setup(cfg.Log)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		return db.RunMigrations(ctx)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().BoolVar(&runMigrations, "migrate", true, "apply the bootstrap schema before serving")
	}
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	// setting up config
	cfg := config.LoadConfig()
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, _, services, err := app.App(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if runMigrations {
		if err := db.RunMigrations(ctx); err != nil {
			return err
		}
	}

	handler := handlers.NewHandlers(services, db, cfg)

	cleanupStop := make(chan struct{})
	defer close(cleanupStop)
	handler.Limiter.StartCleanup(10*time.Minute, cleanupStop)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":     server.Addr,
			"database": cfg.DB.DbNAME,
			"app_url":  cfg.AppURL,
		}).Info("server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("exiting")
		os.Exit(1)
	}
}
