package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/handler"
	"filevault/internal/logger"
	"filevault/internal/repository"
	"filevault/internal/service"
	"filevault/internal/service/s3"
)

func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		logger.Log.Warnw("failed to connect to database",
			"attempt", i+1, "max_attempts", maxAttempts, "error", err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	if err := logger.Init("info"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		logger.Log.Fatalw("failed to load config", "error", err)
	}

	// Подключаемся к базе данных
	db, err := connectWithRetry(appConfig.Database.GetDSN(), 5, time.Second*5)
	if err != nil {
		logger.Log.Fatalw("failed to connect to database after retries", "error", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		logger.Log.Fatalw("failed to run migrations", "error", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Инициализация S3 клиента
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		logger.Log.Fatalw("failed to load S3 config", "error", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		logger.Log.Fatalw("failed to create S3 client", "error", err)
	}

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	fileRepo := repository.NewFileRepository(db)
	shareRepo := repository.NewShareRepository(db)

	// Инициализация сервисов
	sessionTTL := time.Duration(appConfig.Session.TTLHours) * time.Hour
	authService := service.NewAuthService(userRepo, sessionRepo, sessionTTL)
	folderService := service.NewFolderService(folderRepo, fileRepo)
	fileService := service.NewFileService(fileRepo, folderRepo, s3Client, s3Config.UploadFolder)
	shareService := service.NewShareService(shareRepo, fileRepo, folderRepo)

	sessionAuth := auth.New(sessionRepo, appConfig.Session.CookieName, []byte(appConfig.Session.Secret))

	// Инициализация хендлеров
	authHandler := handler.NewAuthHandler(authService, sessionAuth)
	folderHandler := handler.NewFolderHandler(folderService, sessionAuth)
	fileHandler := handler.NewFileHandler(fileService, sessionAuth)
	shareHandler := handler.NewShareHandler(shareService, sessionAuth, appConfig.Server.BaseURL)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// HTTP маршруты
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/files", fileHandler.ListFiles)
		r.Post("/files", fileHandler.UploadFile)
		r.Route("/files/{uuid}", func(r chi.Router) {
			r.Get("/", fileHandler.GetFile)
			r.Get("/download", fileHandler.DownloadFile)
			r.Put("/rename", fileHandler.RenameFile)
			r.Delete("/", fileHandler.DeleteFile)
		})

		r.Get("/folders", folderHandler.GetFolderContent)
		r.Post("/folders", folderHandler.CreateFolder)
		r.Route("/folders/{id}", func(r chi.Router) {
			r.Get("/", folderHandler.GetFolderContent)
			r.Put("/rename", folderHandler.RenameFolder)
			r.Delete("/", folderHandler.DeleteFolder)
		})

		r.Post("/shares", shareHandler.CreateShare)
	})

	// Публичные маршруты по токену
	r.Get("/s/{token}", shareHandler.GetShared)
	r.Get("/s/{token}/download", shareHandler.DownloadShared)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		logger.Log.Infow("starting HTTP server", "port", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalw("failed to start HTTP server", "error", err)
		}
	}()

	// Чистка просроченных сессий. Просроченные share-ссылки намеренно
	// не трогаем: срок проверяется при каждом обращении.
	stopCleanup := make(chan struct{})
	cleanupTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-cleanupTicker.C:
				removed, err := sessionRepo.DeleteExpired(context.Background())
				if err != nil {
					logger.Log.Errorw("failed to cleanup expired sessions", "error", err)
					continue
				}
				if removed > 0 {
					logger.Log.Infow("removed expired sessions", "count", removed)
				}
			case <-stopCleanup:
				cleanupTicker.Stop()
				return
			}
		}
	}()

	// Ожидаем сигнал завершения
	<-quit
	close(stopCleanup)
	logger.Log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Log.Errorw("HTTP server forced to shutdown", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Log.Errorw("error closing database connection", "error", err)
	}

	logger.Log.Info("server exited properly")
}
