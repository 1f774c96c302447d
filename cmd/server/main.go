package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ataurwd/vps-backend-server/internal/cache"
	"github.com/ataurwd/vps-backend-server/internal/config"
	"github.com/ataurwd/vps-backend-server/internal/db"
	"github.com/ataurwd/vps-backend-server/internal/events"
	"github.com/ataurwd/vps-backend-server/internal/gateway"
	"github.com/ataurwd/vps-backend-server/internal/http/handlers"
	"github.com/ataurwd/vps-backend-server/internal/http/router"
	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/repository"
	"github.com/ataurwd/vps-backend-server/internal/service"
	"github.com/ataurwd/vps-backend-server/internal/storage"
	"github.com/ataurwd/vps-backend-server/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("config load failed")
	}
	logger.Init(cfg.Env)

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("database connect failed")
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
		logger.Log.WithError(err).Fatal("migrations failed")
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Log.WithError(err).Fatal("redis connect failed")
	}
	defer redisClient.Close()

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	photoDisk, err := storage.NewPhotoStorage(cfg.MediaStoragePath)
	if err != nil {
		logger.Log.WithError(err).Fatal("photo storage init failed")
	}

	// Repositories.
	accountRepo := repository.NewAccountRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	orderRepo := repository.NewOrderRepository(conn, cfg.SellerSharePercent, cfg.PlatformAccountEmail)
	reportRepo := repository.NewReportRepository(conn, orderRepo)
	cartRepo := repository.NewCartRepository(conn)
	notificationRepo := repository.NewNotificationRepository(conn)
	withdrawalRepo := repository.NewWithdrawalRepository(conn)
	paymentRepo := repository.NewPaymentRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)
	chatRepo := repository.NewChatRepository(conn)
	mediaRepo := repository.NewMediaRepository(conn)

	// Services.
	hub := ws.NewHub()
	tokens := service.NewTokenManager(cfg.JWTAccessSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	notificationSvc := service.NewNotificationService(notificationRepo, hub)
	settingsSvc := service.NewSettingsService(settingsRepo, redisClient)
	authSvc := service.NewAuthService(accountRepo, tokens, cfg.ReferralBonus)
	accountSvc := service.NewAccountService(accountRepo, settingsSvc)
	productSvc := service.NewProductService(productRepo, accountRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, notificationSvc, producer,
		cfg.AutoConfirmWindow, cfg.AutoCancelWindow)
	reportSvc := service.NewReportService(reportRepo, orderRepo, notificationSvc, producer)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, notificationSvc)
	referralSvc := service.NewReferralService(accountRepo, cfg.ReferralBonus)
	chatSvc := service.NewChatService(chatRepo, orderRepo, hub)

	providers := []gateway.Provider{
		gateway.NewFlutterwave(cfg.FlutterwaveBaseURL, cfg.FlutterwaveSecretKey, cfg.PaymentRedirectURL),
		gateway.NewKorapay(cfg.KorapayBaseURL, cfg.KorapaySecretKey, cfg.PaymentRedirectURL),
	}
	paymentSvc := service.NewPaymentService(paymentRepo, providers,
		cache.NewDedup(redisClient), notificationSvc, producer)

	// Background sweep.
	sweeper := service.NewSweeper(orderSvc, cfg.SweepInterval)
	go sweeper.Run(ctx)

	engine := router.New(cfg, tokens, router.Handlers{
		Auth:         handlers.NewAuthHandler(authSvc),
		Account:      handlers.NewAccountHandler(accountSvc),
		Product:      handlers.NewProductHandler(productSvc),
		Cart:         handlers.NewCartHandler(cartSvc),
		Order:        handlers.NewOrderHandler(orderSvc),
		Report:       handlers.NewReportHandler(reportSvc),
		Payment:      handlers.NewPaymentHandler(paymentSvc),
		Withdrawal:   handlers.NewWithdrawalHandler(withdrawalSvc),
		Notification: handlers.NewNotificationHandler(notificationSvc),
		Referral:     handlers.NewReferralHandler(referralSvc),
		Settings:     handlers.NewSettingsHandler(settingsSvc),
		Chat:         handlers.NewChatHandler(chatSvc),
		Media:        handlers.NewMediaHandler(mediaRepo, photoDisk),
		WS:           handlers.NewWSHandler(hub),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.HTTPPort).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("shutdown failed")
		os.Exit(1)
	}
}
