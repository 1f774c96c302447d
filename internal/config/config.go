package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application settings read from the environment.
type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL    string
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	JWTAccessSecret string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	FlutterwaveSecretKey string
	FlutterwaveBaseURL   string
	KorapaySecretKey     string
	KorapayBaseURL       string
	PaymentRedirectURL   string

	PlatformAccountEmail string
	ReferralBonus        int64
	SellerSharePercent   int64

	AutoConfirmWindow time.Duration
	AutoCancelWindow  time.Duration
	SweepInterval     time.Duration

	MediaStoragePath string

	CORSAllowedOrigins []string
	RateLimit          string
}

// Load reads configuration from the environment. A .env file is loaded
// first when present so local development does not need exported vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaTopic: getEnv("KAFKA_TOPIC", "order-events"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		FlutterwaveSecretKey: os.Getenv("FLW_SECRET_KEY"),
		FlutterwaveBaseURL:   getEnv("FLW_BASE_URL", "https://api.flutterwave.com/v3"),
		KorapaySecretKey:     os.Getenv("KORAPAY_SECRET_KEY"),
		KorapayBaseURL:       getEnv("KORAPAY_BASE_URL", "https://api.korapay.com/merchant/api/v1"),
		PaymentRedirectURL:   getEnv("PAYMENT_REDIRECT_URL", "http://localhost:3000/payment/callback"),

		PlatformAccountEmail: getEnv("PLATFORM_ACCOUNT_EMAIL", "platform@marketplace.local"),

		MediaStoragePath: getEnv("MEDIA_STORAGE_PATH", "uploads"),

		RateLimit: getEnv("RATE_LIMIT", "100-M"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = assembleDatabaseURL()
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("config: JWT_ACCESS_SECRET is required")
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	brokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	cfg.KafkaBrokers = splitAndTrim(brokers)

	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	cfg.CORSAllowedOrigins = splitAndTrim(origins)

	if cfg.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AutoConfirmWindow, err = getEnvDuration("AUTO_CONFIRM_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	// Zero disables auto-cancel.
	if cfg.AutoCancelWindow, err = getEnvDuration("AUTO_CANCEL_WINDOW", 0); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getEnvDuration("SWEEP_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReferralBonus, err = getEnvInt64("REFERRAL_BONUS", 500); err != nil {
		return nil, err
	}
	if cfg.SellerSharePercent, err = getEnvInt64("SELLER_SHARE_PERCENT", 80); err != nil {
		return nil, err
	}
	if cfg.SellerSharePercent < 0 || cfg.SellerSharePercent > 100 {
		return nil, fmt.Errorf("config: SELLER_SHARE_PERCENT must be between 0 and 100")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func assembleDatabaseURL() string {
	host := os.Getenv("POSTGRESQL_HOST")
	if host == "" {
		return ""
	}
	port := getEnv("POSTGRESQL_PORT", "5432")
	user := getEnv("POSTGRESQL_USER", "postgres")
	password := os.Getenv("POSTGRESQL_PASSWORD")
	dbname := getEnv("POSTGRESQL_DBNAME", "marketplace")
	sslmode := getEnv("POSTGRESQL_SSLMODE", "disable")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
