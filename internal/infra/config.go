package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	PublicBaseURL string
	DatabaseURL   string

	ClientID       string
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	Currency       string
	JacksonCents   int64
	PlatformFee    int64
	StripeTimeout  time.Duration
	StripeRetries  int

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	DefaultLocale string
	GeoIPDBPath   string

	NotifyFromEmail string
	AWSRegion       string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ChargeRatePerMin int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Every value the jar cannot run without is checked here so a bad deploy fails at boot.
func LoadConfig() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           appEnv,
		Port:             port,
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ClientID:         strings.TrimSpace(os.Getenv("CLIENT_ID")),
		SecretKey:        strings.TrimSpace(os.Getenv("SECRET_KEY")),
		PublishableKey:   strings.TrimSpace(os.Getenv("PUBLISHABLE_KEY")),
		WebhookSecret:    strings.TrimSpace(os.Getenv("WEBHOOK_SECRET")),
		Currency:         strings.ToLower(getEnv("CURRENCY", "usd")),
		StripeTimeout:    time.Second * time.Duration(getEnvInt("STRIPE_TIMEOUT_SECONDS", 30)),
		StripeRetries:    getEnvInt("STRIPE_MAX_RETRIES", 2),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SessionTTL:       time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)),
		CookieSecure:     getEnvBool("COOKIE_SECURE", appEnv != "development"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		NotifyFromEmail:  strings.TrimSpace(os.Getenv("NOTIFY_FROM_EMAIL")),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ChargeRatePerMin: getEnvInt("CHARGE_RATE_LIMIT_PER_MINUTE", 10),
	}

	required := []struct {
		key   string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"CLIENT_ID", cfg.ClientID},
		{"SECRET_KEY", cfg.SecretKey},
		{"PUBLISHABLE_KEY", cfg.PublishableKey},
		{"WEBHOOK_SECRET", cfg.WebhookSecret},
		{"SESSION_SECRET", cfg.SessionSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%s is required", r.key)
		}
	}

	var err error
	if cfg.JacksonCents, err = requireInt64("JACKSON_CENTS"); err != nil {
		return nil, err
	}
	if cfg.PlatformFee, err = requireInt64("PLATFORM_FEE_CENTS"); err != nil {
		return nil, err
	}
	if cfg.JacksonCents <= 0 {
		return nil, fmt.Errorf("JACKSON_CENTS must be positive")
	}
	if cfg.PlatformFee < 0 || cfg.PlatformFee >= cfg.JacksonCents {
		return nil, fmt.Errorf("PLATFORM_FEE_CENTS must be between 0 and JACKSON_CENTS")
	}
	if len(cfg.Currency) != 3 {
		return nil, fmt.Errorf("CURRENCY must be a 3-letter ISO code")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func requireInt64(key string) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
