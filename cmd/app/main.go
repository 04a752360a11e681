package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	httpin "github.com/suchimauz/clinic-booking-service/internal/adapters/in/http"
	"github.com/suchimauz/clinic-booking-service/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/clinic-booking-service/internal/adapters/out/cache"
	"github.com/suchimauz/clinic-booking-service/internal/adapters/out/logger"
	"github.com/suchimauz/clinic-booking-service/internal/adapters/out/storage"
	"github.com/suchimauz/clinic-booking-service/internal/adapters/out/whatsapp"
	"github.com/suchimauz/clinic-booking-service/internal/config"
	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
	"github.com/suchimauz/clinic-booking-service/internal/core/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storageBackend":  cfg.Storage.Backend,
		"rabbitmqEnabled": cfg.RabbitMq.Enabled,
		"whatsappEnabled": cfg.WhatsApp.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Бэкенд хранения
	var storagePort out.StoragePort
	switch cfg.Storage.Backend {
	case "memory":
		storagePort = storage.NewMemoryStorage()
	default:
		fileStorage, err := storage.NewFileStorage(cfg.Storage.Dir)
		if err != nil {
			log.Error("app.storage.init_failed", out.LogFields{
				"dir":   cfg.Storage.Dir,
				"error": err.Error(),
			})
			os.Exit(1)
		}
		storagePort = fileStorage
	}

	clock := domain.RealClock{}
	location := config.TimeZone
	slotClock := domain.NewSlotClock(clock, location)

	// Хранилище броней с подгрузкой истории
	store := services.NewBookingStore(cfg.Storage.BookingsKey, storagePort, clock, mainLogger)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	store.Load(loadCtx)
	loadCancel()

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		adapter, err := cache.NewCacheAdapter(cfg, mainLogger.WithModule("CacheAdapter"))
		if err != nil {
			log.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = adapter
	}

	var notificationPort out.NotificationPort
	if cfg.WhatsApp.Enabled {
		notificationPort = whatsapp.NewWhatsAppAdapter(cfg, mainLogger.WithModule("WhatsAppAdapter"))
	}

	// Движок бронирования
	bookingService := services.NewBookingService(
		store,
		slotClock,
		clock,
		notificationPort,
		cacheAdapter,
		mainLogger,
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := httpin.NewBookingController(bookingService, cfg)
	controller.RegisterRoutes(router)

	// Слушатель очереди заявок, только если включен
	if cfg.RabbitMq.Enabled {
		listener, err := rabbitmq.NewBookingListener(
			bookingService,
			cfg,
			mainLogger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			log.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				log.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
