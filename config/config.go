package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// App holds everything read from the environment at startup.
type App struct {
	DBURL        string
	RedisAddr    string
	GeminiAPIKey string
	ListenAddr   string
	Environment  string

	MonthlyCron string
	LateFeeCron string
	OverdueCron string
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// Load reads the .env file (when present) and assembles the app config.
func Load() App {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on the environment")
	}

	return App{
		DBURL:        os.Getenv("DB_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		ListenAddr:   envOr("LISTEN_ADDR", ":8080"),
		Environment:  envOr("APP_ENV", "development"),
		MonthlyCron:  envOr("MONTHLY_FEES_CRON", "0 6 1 * *"),
		LateFeeCron:  envOr("LATE_FEES_CRON", "0 5 * * *"),
		OverdueCron:  envOr("OVERDUE_LOANS_CRON", "30 5 * * *"),
	}
}
