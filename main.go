package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"dukan/internal/config"
	"dukan/internal/handlers"
	"dukan/internal/logger"
	"dukan/internal/mailer"
	"dukan/internal/metrics"
	"dukan/internal/notifications"
	"dukan/internal/realtime"
	"dukan/internal/repositories"
	"dukan/internal/services"
	"dukan/internal/storage"
	"dukan/pkg/rabbitmq"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	gormLevel := gormlogger.Warn
	if cfg.AppEnv == "development" {
		gormLevel = gormlogger.Info
	}
	db, err := repositories.Open(cfg.Database, gormLevel)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	store := repositories.NewGORMStore(db)

	m := metrics.New("dukan")

	smtp, err := mailer.NewSMTPSender(cfg.SMTP, log)
	if err != nil {
		log.Fatal("failed to configure mailer", zap.Error(err))
	}

	// --- RabbitMQ ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
			Bindings: []string{"order.#", "withdraw.#"},
		}, log)
		if err != nil {
			log.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient

		notifier := notifications.NewNotifier(store.Users(), smtp, log)
		if err := mqClient.Consume(ctx, notifier.Handle); err != nil {
			log.Fatal("failed to start RabbitMQ consumer", zap.Error(err))
		}
		log.Info("RabbitMQ consumer started", zap.String("queue", cfg.RabbitMQ.Queue))
	}

	// --- Realtime presence ---
	var presence realtime.Presence = realtime.NewMemoryPresence()
	if cfg.Redis.Enabled {
		rdb, err := realtime.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		presence = realtime.NewRedisPresence(rdb)
	}
	hub := realtime.NewHub(presence, m, log)
	go hub.Run(ctx)

	// --- Object storage ---
	var presigner services.Presigner
	if cfg.MinIO.Enabled {
		objects, err := storage.NewMinIOStore(ctx, cfg.MinIO, log)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
		presigner = objects
	}

	// --- Services ---
	tokens := services.NewTokenService(cfg.JWT)
	app := handlers.NewApp(ctx, handlers.Dependencies{
		Tokens:      tokens,
		Auth:        services.NewAuthService(store, tokens, smtp, m, log),
		Users:       services.NewUserService(store, log),
		Sellers:     services.NewSellerService(store, log),
		Products:    services.NewProductService(store, log),
		Events:      services.NewEventService(store, log),
		Coupons:     services.NewCouponService(store, log),
		Orders:      services.NewOrderService(store, publisher, m, log),
		Withdraw:    services.NewWithdrawService(store, smtp, publisher, m, log),
		Chat:        services.NewChatService(store, log),
		Payments:    services.NewPaymentService(cfg.Razorpay),
		Uploads:     services.NewUploadService(presigner, cfg.MinIO.PresignTTL),
		Hub:         hub,
		Metrics:     m,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	})

	// --- Start HTTP Server ---
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server gracefully stopped")
}
