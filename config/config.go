package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	JWTSecret    []byte
	TokenTTL     time.Duration
	CookieSecure bool

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string

	RedisAddr     string
	RedisPassword string

	ReceiptSecret []byte

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := &Config{
		Port:                normalizePort(getEnv("PORT", ":5000")),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "homedish"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PaymentCurrency:     strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)
	cfg.ReceiptSecret = []byte(getEnv("RECEIPT_SECRET", secret))

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL: must be positive")
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "true")); err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}
	// Browsers drop credentialed responses carrying a wildcard origin.
	if cfg.CookieSecure && slices.Contains(cfg.CORSOrigins, "*") {
		return nil, fmt.Errorf("CORS_ORIGINS must list explicit origins when COOKIE_SECURE is set")
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func normalizePort(port string) string {
	if port != "" && port[0] != ':' {
		return ":" + port
	}
	return port
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
