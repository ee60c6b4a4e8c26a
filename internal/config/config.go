package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string

	RateLimitPerMin int
	SessionTTL      time.Duration

	TaxRate             decimal.Decimal // fraction of subtotal, 0.15 = 15%
	CheckoutMaxAttempts int
	CheckoutBackoff     time.Duration

	RedisAddr     string
	TraceExporter string // "", "stdout" or "otlp"
}

func Load() Config {
	cfg := Config{
		Port:                env("PORT", "5000"),
		DBDSN:               env("DB_DSN", "storelaunch.db"),
		LogFile:             env("LOG_FILE", ""),
		LogLevel:            env("LOG_LEVEL", "info"),
		RateLimitPerMin:     envInt("RATE_LIMIT_PER_MIN", 300),
		SessionTTL:          envDuration("SESSION_TTL", 7*24*time.Hour),
		TaxRate:             envDecimal("TAX_RATE", decimal.Zero),
		CheckoutMaxAttempts: envInt("CHECKOUT_MAX_ATTEMPTS", 3),
		CheckoutBackoff:     envDuration("CHECKOUT_BACKOFF", 50*time.Millisecond),
		RedisAddr:           env("REDIS_ADDR", ""),
		TraceExporter:       env("TRACE_EXPORTER", ""),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s RATE_LIMIT_PER_MIN=%d TAX_RATE=%s CHECKOUT_MAX_ATTEMPTS=%d CHECKOUT_BACKOFF=%s REDIS_ADDR=%s TRACE_EXPORTER=%s SESSION_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.RateLimitPerMin, cfg.TaxRate, cfg.CheckoutMaxAttempts, cfg.CheckoutBackoff, cfg.RedisAddr, cfg.TraceExporter, cfg.SessionTTL)
	return cfg
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring %s=%q", key, v)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] ignoring %s=%q", key, v)
		return def
	}
	return d
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		log.Printf("[config] ignoring %s=%q", key, v)
		return def
	}
	return d
}
