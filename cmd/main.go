package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cityvoice/backend/internal/admission"
	"cityvoice/backend/internal/api/handler"
	"cityvoice/backend/internal/config"
	"cityvoice/backend/internal/hub"
	"cityvoice/backend/internal/localization"
	"cityvoice/backend/internal/metrics"
	"cityvoice/backend/internal/notify"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/telegram"
	"cityvoice/backend/internal/triage"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.WithError(err).Fatal("failed to connect Redis")
	}

	if err := storage.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	log.Info("database and redis connections established, migrations complete")
	return db, rdb
}

// setupNotifiers always publishes to the staff feed; the other channels are enabled by config.
func setupNotifiers(cfg *config.Config, s *storage.Service, loc *localization.Localizer) (*notify.Multi, *tgbotapi.BotAPI, func()) {
	multi := notify.NewMulti(notify.NewRedisNotifier(s))
	cleanup := func() {}

	if cfg.AMQPURL != "" {
		publisher, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.WithError(err).Warn("event bus disabled")
		} else {
			multi.Add(notify.NewAMQPNotifier(publisher))
			cleanup = func() {
				if err := publisher.Close(); err != nil {
					log.WithError(err).Warn("failed to close event bus publisher")
				}
			}
		}
	}

	if cfg.SendGridAPIKey != "" {
		multi.Add(notify.NewEmailNotifier(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail, loc))
	}

	var bot *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		var err error
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.WithError(err).Warn("telegram disabled")
		} else {
			log.WithField("account", bot.Self.UserName).Info("telegram bot authorized")
			multi.Add(notify.NewTelegramNotifier(bot, loc))
		}
	}

	log.WithField("channels", multi.Channels()).Info("notification channels ready")
	return multi, bot, cleanup
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	config.SetupLogging(cfg)
	log.WithField("env", cfg.AppEnv).Info("starting CityVoice intake")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(ctx, cfg)
	s := storage.NewStorageService(db, rdb)
	metrics.Register()

	loc, err := localization.NewLocalizer(cfg.LocalesDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load locales")
	}

	notifier, bot, cleanup := setupNotifiers(cfg, s, loc)
	defer cleanup()

	router := triage.NewRouter(s, notifier)

	feed := hub.NewManagerService(s)
	go feed.Run(ctx)

	if bot != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		botService := telegram.NewBotService(bot, s, router, loc)
		go botService.Run(ctx, bot.GetUpdatesChan(u))
		defer bot.StopReceivingUpdates()
	}

	policy := admission.PolicyFromConfig(cfg)
	if policy == admission.PolicyUnrestricted {
		log.Warn("admission gating disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(router, feed, handler.NewAuthenticator(cfg.JWTSecret, 0), policy, cfg.RequestTimeout)
	h.Health = s.Ping
	engine := h.NewEngine(handler.RouterConfig{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerSec: cfg.RateLimitPerSec,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + 5*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server shutdown failed")
	}
	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis")
	}
}
