package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/handler"
	"github.com/AkshayTiwari27/LiveDocs/internal/realtime"
	"github.com/AkshayTiwari27/LiveDocs/internal/repository"
	"github.com/AkshayTiwari27/LiveDocs/internal/security"
	"github.com/AkshayTiwari27/LiveDocs/internal/service"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title LiveDocs
// @version 1.0
// @description REST API управления доступом к совместным документам

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	roomRepo := repository.NewRoomRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, time.Duration(cfg.TTL.RoomListCache)*time.Second)

	hub := realtime.NewHub()

	notificationService := service.NewNotificationService(notificationRepo, cacheRepo)
	roomService := service.NewRoomService(roomRepo, accessRepo, cacheRepo, notificationService, hub)

	jwtService := security.NewJWTService(&cfg.JWT)

	roomHandler := handler.NewRoomHandler(roomService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	realtimeHandler := handler.NewRealtimeHandler(roomService, hub)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupRoomRoutes(router, roomHandler, jwtService, cfg)
	setupNotificationRoutes(router, notificationHandler, jwtService, cfg)
	setupRealtimeRoutes(router, realtimeHandler, jwtService, cfg)

	runServer(ctx, srv)
}

func setupRoomRoutes(r chi.Router, h *handler.RoomHandler, jwtService *security.JWTService, cfg *config.AppConfig) {
	r.Route("/api/rooms", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Get("/", h.ListRooms)
		r.Post("/", h.CreateRoom)

		r.Route("/{room_id}", func(r chi.Router) {
			r.Get("/", h.GetRoom)
			r.Put("/title", h.RenameRoom)
			r.Post("/share", h.ShareRoom)
			r.Post("/remove-access", h.RemoveAccess)
			r.Delete("/", h.DeleteRoom)
		})
	})
}

func setupNotificationRoutes(r chi.Router, h *handler.NotificationHandler, jwtService *security.JWTService, cfg *config.AppConfig) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Get("/", h.ListNotifications)
		r.Get("/unread-count", h.UnreadCount)
		r.Post("/read", h.MarkAllRead)
	})
}

func setupRealtimeRoutes(r chi.Router, h *handler.RealtimeHandler, jwtService *security.JWTService, cfg *config.AppConfig) {
	r.Route("/ws/rooms", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtService))
		r.Get("/{room_id}", h.AttachSession)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
