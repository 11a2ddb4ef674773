package main

import (
	"context"
	"fmt"
	"francoggm/mpesa-c2b-relay/internal/app/auth"
	"francoggm/mpesa-c2b-relay/internal/app/healthcheck"
	"francoggm/mpesa-c2b-relay/internal/app/payment"
	"francoggm/mpesa-c2b-relay/internal/app/server"
	paymentclient "francoggm/mpesa-c2b-relay/internal/app/services/payment_client"
	"francoggm/mpesa-c2b-relay/internal/app/storage"
	"francoggm/mpesa-c2b-relay/internal/config"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.NewConfig()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("no .env file found, relying on process environment")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := auth.NewTokenProvider(cfg.Mpesa.BaseURL, cfg.Mpesa.UpstreamTimeout)

	var (
		tokens auth.TokenSource
		pinger healthcheck.Pinger
	)

	switch cfg.TokenCache.Mode {
	case config.TokenCacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.CacheAddr(),
			Password: cfg.Cache.Password,
			DB:       0,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			logger.Fatal("failed to connect to token cache", zap.String("addr", cfg.CacheAddr()), zap.Error(err))
		}

		tokenStore := storage.NewTokenStore(rdb)
		tokens = auth.NewCachedSource(provider, cfg.Credentials(), tokenStore, cfg.TokenCache.RefreshSkew, logger)
		pinger = tokenStore
	case config.TokenCacheMemory:
		tokens = auth.NewCachedSource(provider, cfg.Credentials(), auth.NewMemoryStore(), cfg.TokenCache.RefreshSkew, logger)
	default:
		tokens = auth.NewDirectSource(provider, cfg.Credentials())
	}

	client := paymentclient.NewPaymentClient(cfg.Mpesa.BaseURL, cfg.Mpesa.UpstreamTimeout)
	paymentService := payment.NewPaymentService(cfg, tokens, client, logger)

	healthCheckService := healthcheck.NewHealthCheckService(cfg.TokenCache.Mode, pinger, logger)
	healthCheckService.Start(ctx)

	logger.Info("starting C2B relay",
		zap.String("environment", cfg.Server.Environment),
		zap.String("mpesa_environment", cfg.Mpesa.Environment),
		zap.String("mpesa_base_url", cfg.Mpesa.BaseURL),
		zap.String("short_code", cfg.Mpesa.ShortCode),
		zap.String("token_cache", cfg.TokenCache.Mode),
		zap.String("validation_response_mode", cfg.C2B.ValidationResponseMode),
		zap.Bool("validate_request", cfg.C2B.ValidateRequest))

	srv := server.NewServer(cfg, paymentService, healthCheckService, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
