package main

import (
	"context"
	"creditbank/config"
	"creditbank/database"
	"creditbank/routes"
	"creditbank/services"
	"creditbank/utils"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// newNotifier собирает настроенные каналы уведомлений менеджеров.
// Возвращает nil, если ни один канал не настроен.
func newNotifier(cfg *config.Config) (services.Notifier, error) {
	var notifiers services.Notifiers

	if cfg.SMTP.Host != "" && cfg.Notify.ManagerEmail != "" {
		notifiers = append(notifiers, services.NewEmailService(cfg))
		log.Printf("Уведомления по email: %s", cfg.Notify.ManagerEmail)
	}

	if cfg.Notify.TelegramToken != "" {
		telegram, err := services.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, telegram)
		log.Printf("Уведомления в Telegram: чат %d", cfg.Notify.TelegramChatID)
	}

	if len(notifiers) == 0 {
		return nil, nil
	}
	return notifiers, nil
}

// newTokenBlacklist возвращает черный список токенов в Redis, если он настроен, иначе в памяти
func newTokenBlacklist(ctx context.Context, cfg *config.Config) (services.TokenBlacklist, func() error, error) {
	if cfg.Redis.Addr == "" {
		return services.NewMemoryTokenBlacklist(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	return services.NewRedisTokenBlacklist(client), client.Close, nil
}

// initDigestScheduler запускает ежедневную сводку заявок
func initDigestScheduler(db *database.Database, notifier services.Notifier, schedule string) (*services.DigestSchedulerService, error) {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, err
	}

	reports := services.NewReportService(sqlx.NewDb(sqlDB, db.SQLDriverName()))
	scheduler := services.NewDigestSchedulerService(reports, notifier)
	if err := scheduler.Start(schedule); err != nil {
		return nil, err
	}
	log.Printf("Планировщик сводки запущен: %s", schedule)
	return scheduler, nil
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Log.Dir != "" {
		if err := utils.InitLogger(cfg.Log.Dir); err != nil {
			log.Fatalf("Ошибка инициализации логгера: %v", err)
		}
	}
	gin.SetMode(cfg.Server.Mode)

	// Инициализируем подключение к базе данных
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	products := services.NewProductService(db.DB)

	// Загружаем каталог продуктов
	if cfg.Catalog.Path != "" {
		n, err := products.ImportCatalog(ctx, cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("Ошибка загрузки каталога продуктов: %v", err)
		}
		log.Printf("Загружено кредитных продуктов: %d", n)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatalf("Ошибка настройки уведомлений: %v", err)
	}

	blacklist, closeBlacklist, err := newTokenBlacklist(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка настройки черного списка токенов: %v", err)
	}
	defer closeBlacklist()

	metrics := utils.GetMetrics()

	if notifier != nil && cfg.Digest.Schedule != "" {
		scheduler, err := initDigestScheduler(db, notifier, cfg.Digest.Schedule)
		if err != nil {
			log.Fatalf("Ошибка запуска планировщика сводки: %v", err)
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	// Создаем роутер
	router, err := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Users:        services.NewUserService(db),
		Products:     products,
		Applications: services.NewCreditApplicationService(db.DB, products, notifier, metrics),
		Blacklist:    blacklist,
		Metrics:      metrics,
	})
	if err != nil {
		log.Fatalf("Ошибка настройки маршрутов: %v", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запускаем сервер
	go func() {
		log.Printf("Сервер запущен на порту %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
}
