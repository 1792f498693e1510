package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/debt-payoff/internal/cache"
	"github.com/iwvelando/debt-payoff/internal/events"
	"github.com/iwvelando/debt-payoff/internal/logging"
	"github.com/iwvelando/debt-payoff/internal/server"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	listen := flag.String("listen", "", "listen address override, e.g. :8080")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Address = *listen
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var opts []server.Option
	if cfg.Cache.Address != "" {
		ledgerCache := cache.NewLedgerCache(cache.NewRedisStore(cfg.Cache), cfg.Cache.TTL, logger)
		defer func() {
			_ = ledgerCache.Close()
		}()
		opts = append(opts, server.WithCache(ledgerCache))
	}
	publisher := events.New(cfg.Events, logger)
	defer func() {
		_ = publisher.Close()
	}()
	opts = append(opts, server.WithPublisher(publisher))

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received", zap.String("op", "main"))
	case err := <-errCh:
		logger.Error("server error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
