package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"directory/internal/api"
	"directory/internal/app"
	"directory/internal/config"
	"directory/internal/websocket"
	"directory/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := app.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("failed to initialize directory", utils.Err(err))
	}
	defer deps.Close()

	// WebSocket hub для потока новых записей
	hub := websocket.NewHub(websocket.NewOriginChecker(cfg.Server.WSOrigins))
	go hub.Run()
	deps.EntryService.SetNotifier(hub)

	router := api.SetupRoutes(&api.Dependencies{
		DirectoryService: deps.EntryService,
		Hub:              hub,
		EnableWrites:     cfg.Server.EnableWrites,
		WriteTokenHash:   cfg.Server.WriteTokenHash,
		CORSOrigins:      cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server",
			utils.String("addr", server.Addr),
			utils.String("store", cfg.Store.Name),
			utils.Bool("writes", cfg.Server.EnableWrites),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", utils.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", utils.Err(err))
	}
	logger.Info("stopping entry stream",
		utils.Int("clients", hub.ClientCount()),
		utils.Int64("dropped_messages", hub.DroppedMessages()),
	)
	hub.Stop()

	logger.Info("server exited")
}
