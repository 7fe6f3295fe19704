// Package main is the entry point for the storefront server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/aura-storefront/internal/cart"
	"github.com/vyrodovalexey/aura-storefront/internal/catalog"
	"github.com/vyrodovalexey/aura-storefront/internal/checkout"
	"github.com/vyrodovalexey/aura-storefront/internal/config"
	"github.com/vyrodovalexey/aura-storefront/internal/contact"
	"github.com/vyrodovalexey/aura-storefront/internal/handler"
	"github.com/vyrodovalexey/aura-storefront/internal/money"
	"github.com/vyrodovalexey/aura-storefront/internal/server"
	"github.com/vyrodovalexey/aura-storefront/internal/store"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// serviceName tags every log line.
const serviceName = "aura-storefront"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("catalog_url", cfg.CatalogURL),
		zap.Bool("contact_enabled", cfg.ContactEndpoint != ""),
	)

	backend, err := openBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to open cart storage", zap.Error(err))
		return 1
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close cart storage", zap.Error(err))
		}
	}()

	srv, err := newServer(cfg, backend, logger)
	if err != nil {
		logger.Error("failed to build server", zap.Error(err))
		return 1
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// openBackend opens the cart persistence backend selected by the config.
func openBackend(cfg *config.Config, logger *zap.Logger) (store.Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory, "":
		logger.Info("cart storage: memory")
		return store.NewMemoryBackend(), nil
	case config.StorageSQLite:
		logger.Info("cart storage: sqlite", zap.String("path", cfg.StoragePath))
		backend, err := store.OpenSQLite(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// newServer assembles the cart, its view and the live channel over backend,
// then the page integrations around them.
func newServer(cfg *config.Config, backend store.Backend, logger *zap.Logger) (*server.Server, error) {
	formatter := money.NewFormatter(cfg.CurrencySymbol, cfg.Locale)

	// The live hub needs the controller and the view needs the hub.
	v, err := view.New(formatter, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("creating view: %w", err)
	}
	ctrl := cart.NewController(
		store.NewCartStore(backend, cfg.CartKey, logger),
		v,
		checkout.NewBuilder(cfg.WhatsAppNumber, cfg.StoreName, formatter),
		logger,
	)
	live := handler.NewLiveHandler(ctrl, logger)
	v.SetPublisher(live)

	featured, err := catalog.LoadFeatured(cfg.FeaturedPath)
	if err != nil {
		return nil, fmt.Errorf("loading featured products: %w", err)
	}

	return server.New(cfg, logger, server.Deps{
		Cart:  ctrl,
		Pages: v,
		Live:  live,
		Storefront: handler.StorefrontOptions{
			StoreName: cfg.StoreName,
			Featured:  featured,
			Catalog:   catalog.NewClient(cfg.CatalogURL, cfg.CatalogLimit, cfg.CatalogTimeout, logger),
			Contact:   contact.NewSubmitter(cfg.ContactEndpoint, cfg.CatalogTimeout, logger),
		},
	}), nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    map[string]any{"service": serviceName},
	}

	return zapConfig.Build()
}
