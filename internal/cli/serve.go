package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricewatch/pricewatch/internal/server"
	"github.com/pricewatch/pricewatch/pkg/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tracker daemon with scheduled sweeps and the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	serveCmd.Flags().String("interval", "", "Sweep interval (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if interval, _ := cmd.Flags().GetString("interval"); interval != "" {
		cfg.Scheduler.Interval = interval
	}

	logger := newLogger(cfg)

	eng, _, store, err := initEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	scheduler := engine.NewScheduler(eng, store, logger, engine.SchedulerOptions{
		SweepInterval: parseDuration(cfg.Scheduler.Interval, time.Hour),
		RetentionDays: cfg.Scheduler.RetentionDays,
	})
	scheduler.Start(cmd.Context())
	defer scheduler.Stop()

	apiServer := server.NewServer(store, eng, scheduler, logger)

	readTimeout := parseDuration(cfg.Server.ReadTimeout, 30*time.Second)
	writeTimeout := parseDuration(cfg.Server.WriteTimeout, 60*time.Second)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "listen", cfg.Server.Listen)
		fmt.Fprintf(os.Stderr, "pricewatch listening on %s\n", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
