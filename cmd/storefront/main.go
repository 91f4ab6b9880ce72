// Storefront — сервис заказов интернет-магазина.
// Оформление заказов, сверка платёжных подтверждений, доставка.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/storefront/internal/events"
	"example.com/storefront/internal/handler"
	"example.com/storefront/internal/middleware"
	"example.com/storefront/internal/payment"
	"example.com/storefront/internal/pricing"
	"example.com/storefront/internal/repository"
	"example.com/storefront/internal/service"
	"example.com/storefront/pkg/circuitbreaker"
	"example.com/storefront/pkg/config"
	"example.com/storefront/pkg/db"
	"example.com/storefront/pkg/healthcheck"
	"example.com/storefront/pkg/jwt"
	"example.com/storefront/pkg/kafka"
	"example.com/storefront/pkg/logger"
	"example.com/storefront/pkg/metrics"
	"example.com/storefront/pkg/tracing"
)

func main() {
	// === Конфигурация ===
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка загрузки конфигурации")
	}

	// === Логирование ===
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
	})

	log := logger.With().Str("service", cfg.App.Name).Logger()
	log.Info().Str("env", cfg.App.Env).Msg("Запуск сервиса заказов")

	// === Tracing ===
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.App.Name,
		JaegerEndpoint: cfg.Jaeger.OTLPEndpoint(),
		Enabled:        cfg.Jaeger.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации tracing")
	}

	// === MySQL ===
	gormDB, err := db.ConnectMySQL(cfg.MySQL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка подключения к MySQL")
	}
	log.Info().Str("host", cfg.MySQL.Host).Str("database", cfg.MySQL.Database).Msg("MySQL подключен")

	// === Redis ===
	redisClient := db.ConnectRedis(cfg.Redis)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("Ошибка подключения к Redis")
		}
		cancel()
	}
	log.Info().Str("addr", cfg.Redis.Addr()).Msg("Redis подключен")

	// === JWT ===
	jwtManager, err := jwt.NewManager(jwt.Config{
		PublicKeyPath: cfg.JWT.PublicKeyPath,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации JWT")
	}
	jwtManager.SetBlacklist(jwt.NewBlacklist(redisClient))

	// === Публикация событий заказов ===
	var publisher events.Publisher
	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer, err = kafka.NewProducer(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Ошибка создания Kafka producer")
		}
		publisher = events.NewKafkaPublisher(kafkaProducer, circuitbreaker.New("kafka-order-events"))
	} else {
		log.Info().Msg("Kafka отключена, события заказов не публикуются")
		publisher = events.NewNoopPublisher()
	}

	// === Ценообразование ===
	taxRate, threshold, fee, err := cfg.Pricing.Decimals()
	if err != nil {
		log.Fatal().Err(err).Msg("Некорректная конфигурация ценообразования")
	}
	pricingEngine := pricing.NewEngine(pricing.Config{
		TaxRate:               taxRate,
		FreeShippingThreshold: threshold,
		ShippingFee:           fee,
	})

	// === Слои приложения ===
	orderRepo := repository.NewOrderRepository(gormDB, cfg.Store.Timeout)
	verifier := payment.NewVerifier(cfg.Pricing.Currency)
	payGuard := service.NewRedisPayGuard(redisClient)
	orderService := service.NewOrderService(orderRepo, pricingEngine, verifier, publisher, payGuard)

	// === Readiness ===
	readiness := healthcheck.Composite(
		func(ctx context.Context) error { return healthcheck.CheckMySQL(ctx, gormDB) },
		func(ctx context.Context) error { return healthcheck.CheckRedis(ctx, redisClient) },
	)

	// === Metrics server ===
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr(), cfg.App.Name,
			metrics.WithReadinessCheck(readiness))
		go func() {
			if err := metricsServer.Start(); err != nil {
				log.Error().Err(err).Msg("Ошибка Metrics Server")
			}
		}()
	}

	// === HTTP роутер ===
	var rateLimitMW *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		rateLimitMW = middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
			Redis:  redisClient,
			Limit:  cfg.RateLimit.RequestsLimit,
			Window: cfg.RateLimit.Window,
		})
	}

	router := handler.NewRouter(handler.RouterConfig{
		Orders:         orderService,
		PayPalClientID: cfg.PayPal.ClientID,
		AuthMW:         middleware.NewAuthMiddleware(jwtManager),
		RateLimitMW:    rateLimitMW,
		TracingMW:      middleware.NewTracingMiddleware(),
		ReadinessCheck: readiness,
		Debug:          cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Ошибка HTTP сервера")
		}
	}()

	// === Graceful shutdown ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Получен сигнал завершения, останавливаем сервис")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Ошибка остановки HTTP сервера")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Ошибка остановки Metrics Server")
		}
	}

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Error().Err(err).Msg("Ошибка закрытия Kafka producer")
		}
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Ошибка завершения tracing")
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = redisClient.Close()

	log.Info().Msg("Сервис остановлен")
}
