package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"todo_api/internal/config"
	httpServer "todo_api/internal/http"
	"todo_api/internal/http/middleware"
	"todo_api/internal/logger"
	"todo_api/internal/repository"
	"todo_api/internal/service"
	"todo_api/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	todos := service.NewTodoService(repository.NewTodoRepository(), hub, cfg.OverdueDays)
	if cfg.SeedSampleTodos {
		if err := todos.SeedSamples(ctx); err != nil {
			logger.Fatal("failed to seed sample todos", "error", err)
		}
	}

	rdb := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	r := httpServer.NewEngine(cfg)
	httpServer.RegisterRoutes(r, cfg, todos, hub, rdb)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "env", cfg.Env, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// stop the feed first so websocket clients are closed
	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exited")
}
