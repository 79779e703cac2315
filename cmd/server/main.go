package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/encore/internal/config"
	"github.com/example/encore/internal/database"
	"github.com/example/encore/internal/logging"
	"github.com/example/encore/internal/routes"
	"github.com/example/encore/internal/task"
)

func main() {
	cfg := config.Load()

	zl, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db := database.Connect(cfg.DatabaseURL, zl)

	app := fiber.New(fiber.Config{
		AppName: "Encore Storefront",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	svc := routes.NewServices(db, cfg, zl)
	routes.Register(app, db, cfg, zl, svc)

	cleanup := task.NewCartCleanupTask(svc.Carts, svc.Telegram, zl, cfg.CartCleanupSpec)
	if err := cleanup.Start(); err != nil {
		zl.Fatal("failed to start cart cleanup", zap.Error(err))
	}

	go func() {
		zl.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			zl.Fatal("fiber.Listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	cleanup.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("server shutdown error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		svc.Newsletter.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		zl.Warn("pending subscriber notifications dropped")
	}
}
