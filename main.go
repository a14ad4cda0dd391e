package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/internal/jobs"
	"meridian-sms/internal/routes"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	config.ConnectDB(cfg.DBURL)
	config.ConnectRedis(cfg.RedisAddr)
	if err := config.InitGoogleServices(cfg.GeminiAPIKey); err != nil {
		slog.Error("Failed to initialize Google services", "error", err)
		os.Exit(1)
	}

	scheduler := jobs.NewScheduler(config.DB, cfg)
	if err := scheduler.Start(); err != nil {
		slog.Error("Failed to start the background scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	routes.SetupRoutes(r)

	slog.Info("Starting server", "addr", cfg.ListenAddr, "env", cfg.Environment)
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
