package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pathakanu/muditam/internal/api"
	"github.com/pathakanu/muditam/internal/config"
	"github.com/pathakanu/muditam/internal/database"
	"github.com/pathakanu/muditam/internal/msg91"
	myopenai "github.com/pathakanu/muditam/internal/openai"
	"github.com/pathakanu/muditam/internal/otp"
	"github.com/pathakanu/muditam/internal/push"
	"github.com/pathakanu/muditam/internal/reminder"
	"github.com/pathakanu/muditam/internal/shopify"
	"github.com/pathakanu/muditam/internal/store"
	"github.com/pathakanu/muditam/internal/twilio"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatalw("invalid configuration", "error", err)
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath, logger)
	if err != nil {
		logger.Fatalw("database init failed", "error", err)
	}
	st := store.New(db)

	gate, err := otp.NewGate(cfg.VerifiedCacheSize, otp.VerifiedTTL, time.Now)
	if err != nil {
		logger.Fatalw("verification gate init failed", "error", err)
	}
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go gate.RunSweeper(sweepCtx)

	otpService := otp.NewService(newOTPProvider(cfg), gate, otp.Options{
		CountryCode: cfg.OTPCountryCode,
		Timeout:     cfg.OTPTimeout,
		TestPhone:   cfg.OTPTestPhone,
		TestCode:    cfg.OTPTestCode,
	}, logger.Named("otp"))

	pushClient := push.NewClient(cfg.ExpoPushURL, cfg.ExpoAccessToken, 10*time.Second)
	scheduler := reminder.New(st, pushClient, cfg.LocalTimezone, logger.Named("reminder"))
	if err := scheduler.Start(); err != nil {
		logger.Fatalw("scheduler start failed", "error", err)
	}

	cache, closeCache := newCatalogCache(cfg, logger)
	defer closeCache()
	shop := shopify.New(shopify.Options{
		StoreDomain:     cfg.ShopifyStoreDomain,
		APIVersion:      cfg.ShopifyAPIVersion,
		AdminToken:      cfg.ShopifyAccessToken,
		StorefrontToken: cfg.ShopifyStorefrontToken,
		Cache:           cache,
	}, logger.Named("shopify"))

	openAIClient := myopenai.New(cfg.OpenAIAPIKey)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(api.Deps{
			Store:      st,
			OTP:        otpService,
			Commerce:   shop,
			Summarizer: openAIClient,
			Logger:     logger,
			TrustProxy: cfg.TrustProxy,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("server starting", "port", cfg.Port, "otpProvider", cfg.OTPProvider, "timezone", cfg.LocalTimezone.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server error", "error", err)
		}
	}()

	waitForShutdown(server, scheduler, stopSweeper, logger)
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Env == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func newOTPProvider(cfg *config.Config) otp.Provider {
	if cfg.OTPProvider == "twilio" {
		return twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioVerifyServiceSID)
	}
	return msg91.New(msg91.Options{
		BaseURL:    cfg.MSG91BaseURL,
		AuthKey:    cfg.MSG91AuthKey,
		TemplateID: cfg.MSG91TemplateID,
		Sender:     cfg.MSG91Sender,
		Timeout:    cfg.OTPTimeout,
	})
}

// newCatalogCache prefers Redis when REDIS_URL is set and reachable.
func newCatalogCache(cfg *config.Config, logger *zap.SugaredLogger) (shopify.Cache, func()) {
	if cfg.RedisURL != "" {
		rc, err := shopify.NewRedisCache(cfg.RedisURL, cfg.CatalogCacheTTL)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err = rc.Ping(ctx)
			cancel()
			if err == nil {
				return rc, func() { _ = rc.Close() }
			}
			_ = rc.Close()
		}
		logger.Warnw("redis unavailable, using in-memory catalog cache", "error", err)
	}
	return shopify.NewMemoryCache(64, cfg.CatalogCacheTTL), func() {}
}

func waitForShutdown(server *http.Server, scheduler *reminder.Scheduler, stopSweeper context.CancelFunc, logger *zap.SugaredLogger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("server shutdown error", "error", err)
	}
	scheduler.Stop()
	stopSweeper()
}
