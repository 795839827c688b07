package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/services/admin"
	"github.com/rajivgeraev/skillswap-api/internal/services/auth"
	"github.com/rajivgeraev/skillswap-api/internal/services/chat"
	"github.com/rajivgeraev/skillswap-api/internal/services/cloudinary"
	"github.com/rajivgeraev/skillswap-api/internal/services/feedback"
	"github.com/rajivgeraev/skillswap-api/internal/services/notification"
	"github.com/rajivgeraev/skillswap-api/internal/services/profile"
	"github.com/rajivgeraev/skillswap-api/internal/services/swap"
	"github.com/rajivgeraev/skillswap-api/internal/store"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
	"github.com/rajivgeraev/skillswap-api/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Шина изменений: Redis для нескольких экземпляров, иначе в памяти процесса
	var bus store.Bus = store.NewLocalBus()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Ошибка разбора REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		redisBus := store.NewRedisBus(client, logger.Service(log, "redis-bus"))
		g.Go(func() error { return redisBus.Run(ctx) })
		bus = redisBus
	}

	var st store.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("⚠️ Используется хранилище в памяти, данные не сохраняются между запусками")
		st = store.NewMemoryStore()
	default:
		// Инициализируем базу данных
		if err := db.InitDB(cfg, logger.Service(log, "db")); err != nil {
			log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
		}
		defer db.CloseDB()
		st = db.NewDocumentStore(db.Pool, bus, logger.Service(log, "document-store"))
	}

	// Создаём сервисы
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	profileService := profile.NewProfileService(st, logger.Service(log, "profile"))
	notificationService := notification.NewNotificationService(st, logger.Service(log, "notification"))
	chatService := chat.NewChatService(st, profileService, logger.Service(log, "chat"))
	swapService := swap.NewSwapService(st, profileService, notificationService, chatService, logger.Service(log, "swap"))
	feedbackService := feedback.NewFeedbackService(st, notificationService, logger.Service(log, "feedback"))
	adminService := admin.NewAdminService(st, profileService, logger.Service(log, "admin"))
	geolocator := auth.NewGeolocator(cfg.GeolocationURL, logger.Service(log, "geolocation"))
	authService := auth.NewAuthService(st, profileService, jwtService, geolocator, cfg.TelegramBotToken, logger.Service(log, "auth"))
	cloudinaryService := cloudinary.NewCloudinaryService(cfg.CloudinaryConfig, logger.Service(log, "cloudinary"))

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SkillSwap API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	profileService.SetupRoutes(app, authMiddleware)
	swapService.SetupRoutes(app, authMiddleware)
	chatService.SetupRoutes(app, authMiddleware)
	notificationService.SetupRoutes(app, authMiddleware)
	feedbackService.SetupRoutes(app, authMiddleware)
	adminService.SetupRoutes(app, authMiddleware, cfg.IsAdmin)
	cloudinaryService.SetupRoutes(app, authMiddleware)

	// Сервер реального времени
	wsManager := websocket.NewManager(websocket.Feeds{
		Requests:      swapService.Views(),
		Chats:         chatService,
		Notifications: notificationService,
	}, logger.Service(log, "realtime"))
	realtime := &http.Server{
		Addr:              cfg.RealtimeAddr,
		Handler:           websocket.NewRouter(wsManager, jwtService, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("✅ SkillSwap API запущен")
		return app.Listen(cfg.HTTPAddr)
	})
	g.Go(func() error {
		log.WithField("addr", cfg.RealtimeAddr).Info("✅ Сервер реального времени запущен")
		if err := realtime.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdown(app, realtime, wsManager, log)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("❌ Сервер остановлен с ошибкой")
	}
	log.Info("Сервер остановлен")
}

func shutdown(app *fiber.App, realtime *http.Server, wsManager *websocket.Manager, log *logrus.Logger) error {
	log.Info("Завершение работы...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsManager.Shutdown()
	return errors.Join(
		app.ShutdownWithContext(ctx),
		realtime.Shutdown(ctx),
	)
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
