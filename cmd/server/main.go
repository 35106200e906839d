package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rl1809/stockroom/internal/adapter/handler"
	"github.com/rl1809/stockroom/internal/adapter/storage"
	"github.com/rl1809/stockroom/internal/config"
	"github.com/rl1809/stockroom/internal/core/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	db, closeDB, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	logger.Info("connected to storage", zap.String("driver", cfg.Storage.Driver))

	cache, closeCache, err := storage.OpenCache(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatal("failed to open cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, item locks are process-local")
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	// Initialize services
	authService := service.NewAuthService(db, logger, service.AuthConfig{
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
	})
	itemService := service.NewItemService(db, logger)
	saleService := service.NewSaleService(db, cache, logger, service.SaleConfig{
		LockTTL:     cfg.LockTTL,
		MaxAttempts: cfg.SaleMaxAttempts,
	})
	reportService := service.NewReportService(db)

	// Initialize gRPC server
	grpcHandler := handler.NewGRPCHandler(logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcHandler.Server().Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(authService, itemService, saleService, reportService, logger)
	app := handler.NewApp(httpHandler, handler.HTTPConfig{
		AllowOrigins:   cfg.AllowOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	grpcHandler.SetServing(true)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcHandler.Shutdown()
	logger.Info("gRPC server stopped")

	if err := closeCache(); err != nil {
		logger.Error("failed to close cache", zap.Error(err))
	}
	if err := closeDB(); err != nil {
		logger.Error("failed to close storage", zap.Error(err))
	}
	logger.Info("connections closed")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
