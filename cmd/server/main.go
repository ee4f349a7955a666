package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/Task-Tracker/internal/api/controller"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/api/service"
	"ctchen222/Task-Tracker/internal/config"
	"ctchen222/Task-Tracker/internal/db"
	"ctchen222/Task-Tracker/internal/logger"
	"ctchen222/Task-Tracker/internal/server"
	"ctchen222/Task-Tracker/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(cfg.OTLPAddr)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init()

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}

	// Initialize SQLite DB
	pool, err := db.Connect(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.InitializeSchema(pool); err != nil {
		log.Fatalf("failed to initialize sqlite schema: %v", err)
	}

	// Create repositories
	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	tokenCache := repository.NewTokenCache(rdb)

	// Create services
	userService := service.NewUserService(userRepo)
	tokenService := service.NewTokenService(userRepo, tokenCache, cfg.TokenTTL, cfg.TokenRefreshMargin)
	taskService := service.NewTaskService(taskRepo, userRepo)

	// Create controllers
	userController := controller.NewUserController(userService, tokenService)
	taskController := controller.NewTaskController(taskService)

	// Create the Gin-based server
	srv := server.NewServer(userController, taskController, userService, tokenService)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("http server started on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
