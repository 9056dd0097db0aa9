package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vladbogun1/tg-shop-miniapp/config"
	"github.com/vladbogun1/tg-shop-miniapp/internal/bot"
	"github.com/vladbogun1/tg-shop-miniapp/internal/cache"
	"github.com/vladbogun1/tg-shop-miniapp/internal/database"
	"github.com/vladbogun1/tg-shop-miniapp/internal/logger"
	"github.com/vladbogun1/tg-shop-miniapp/internal/notify"
	"github.com/vladbogun1/tg-shop-miniapp/internal/producer"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"
	"github.com/vladbogun1/tg-shop-miniapp/internal/router"
	"github.com/vladbogun1/tg-shop-miniapp/internal/security"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"
	"github.com/vladbogun1/tg-shop-miniapp/internal/token"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var redisCache *cache.RedisCache
	var invalidator service.CatalogInvalidator
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer rc.Close()
		redisCache = rc
		invalidator = rc
	}

	var events service.EventBus
	if cfg.Kafka.Enabled {
		kp := producer.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer kp.Close()
		events = kp
	}

	tgClient := telegram.NewClient(cfg.Telegram.BotToken, log)
	safe := telegram.NewSafe(tgClient, log)
	notifier := notify.NewService(tgClient, repos, cfg.Telegram.DefaultAdminChatID, log)

	orderService := service.NewOrderService(repos, repos, notifier, events, log)
	catalogService := service.NewCatalogService(repos, repos, invalidator, log)

	state := bot.NewState()
	adminIDs := cfg.Telegram.AdminUserIDs
	decision := bot.NewDecisionHandler(orderService, notifier, state, safe, adminIDs, log)
	bridge := bot.NewBridge(orderService, state, safe, adminIDs, log)
	commands := bot.NewCommandHandler(repos.Settings, safe, adminIDs, cfg.Telegram.WebAppBaseURL, log)
	shopBot := bot.New(decision, bridge, commands, log)

	validator := security.NewInitDataValidator(cfg.Telegram.BotToken, cfg.Security.AllowUnsignedInitData)
	tokens := token.NewHSProvider(cfg.Security.JWTSecret, 24*time.Hour)

	r := router.Router(router.Deps{
		Config:    cfg,
		Orders:    orderService,
		Catalog:   catalogService,
		Cache:     redisCache,
		Tokens:    tokens,
		Validator: validator,
		Log:       log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go shopBot.Run(ctx, tgClient)

	go func() {
		log.Info("Запуск HTTP-сервера", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP-сервер упал", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Остановка сервиса...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	log.Info("Сервис остановлен")
}
