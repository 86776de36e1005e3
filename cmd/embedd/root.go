package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/embedd/internal/api"
	"github.com/hyperengineering/embedd/internal/backend"
	"github.com/hyperengineering/embedd/internal/config"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "embedd",
	Short: "Embedd - local embedding service",
	Long:  "HTTP embedding service with a native and an OpenAI-compatible request shape.",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(embedCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// Signal handling: shutdown runs off this context, never from the
	// goroutine blocked in ListenAndServe.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	initLogger(cfg.Log)
	slog.Info("configuration loaded", "backend", cfg.Backend.Kind, "model", cfg.Backend.Model)

	// Backend construction is blocking: the model must be loaded and pass
	// the dimension guard before the listener binds.
	be, err := backend.New(cfg)
	if err != nil {
		slog.Error("backend initialization failed", "error", err)
		return err
	}
	defer func() {
		if c, ok := be.(io.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Error("backend close error", "error", err)
			}
		}
	}()

	instance := ulid.Make().String()
	handler := api.NewHandler(cfg, be, instance)
	router := api.NewRouter(handler)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	go func() {
		slog.Info("server starting",
			"address", addr,
			"instance", instance,
			"version", Version,
		)
		// ErrServerClosed is the expected error when Shutdown() is called
		// gracefully. Anything else is a real failure.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// Stop accepting and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func initLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
