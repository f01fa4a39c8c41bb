package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// MEXC credentials
	MEXCAPIKey    string
	MEXCAPISecret string

	// Trading parameters
	Symbol            string
	Interval          string
	RiskPct           float64
	ATRWindow         int
	MAWindow          int
	HysteresisK       float64
	MinBarsInPosition int
	MinVolPct         float64
	QuoteAsset        string

	// Dry run: simulate orders instead of hitting the exchange
	DryRun       bool
	PaperBalance float64

	// Infrastructure
	RedisAddr     string // empty disables Redis publishing
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	WebhookURL    string // empty falls back to log-only alerts
}

// Load reads configuration from environment variables with sensible defaults.
// Missing exchange credentials are a terminal misconfiguration.
func Load() *Config {
	return &Config{
		MEXCAPIKey:    mustEnv("MEXC_API_KEY"),
		MEXCAPISecret: mustEnv("MEXC_API_SECRET"),

		Symbol:            getEnv("SYMBOL", "BTCUSDT"),
		Interval:          getEnv("INTERVAL", "1m"),
		RiskPct:           getEnvFloat("RISK_PCT", 0.01),
		ATRWindow:         getEnvInt("ATR_WINDOW", 14),
		MAWindow:          getEnvInt("MA_WINDOW", 20),
		HysteresisK:       getEnvFloat("HYSTERESIS_K", 0.2),
		MinBarsInPosition: getEnvInt("MIN_BARS_IN_POSITION", 3),
		MinVolPct:         getEnvFloat("MIN_VOL_PCT", 0.0003),
		QuoteAsset:        getEnv("QUOTE_ASSET", "USDT"),

		DryRun:       getEnv("DRY_RUN", "") == "true",
		PaperBalance: getEnvFloat("PAPER_BALANCE", 10000),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/trades.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
