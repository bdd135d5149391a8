package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "a-very-secret-key-should-be-longer-and-random"
	defaultRefreshSecret = "default_insecure_refresh_secret_please_change_this_!@#$"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenSecret         string

	// Uploads
	UploadsDir    string
	MaxUploadSize int64
	BaseURL       string // Prefix for attachment URLs

	CORSAllowedOrigins []string
	LoginRateLimit     string // ulule/limiter formatted rate, e.g. "5-M"
	MigrationsPath     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "expense-manager")
	v.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	v.SetDefault("REFRESH_TOKEN_SECRET", defaultRefreshSecret)
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_SIZE_BYTES", 8<<20)
	v.SetDefault("BASE_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	// Actual environment variables override .env values and defaults.
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		UploadsDir:         v.GetString("UPLOADS_DIR"),
		MaxUploadSize:      v.GetInt64("MAX_UPLOAD_SIZE_BYTES"),
		BaseURL:            strings.TrimRight(v.GetString("BASE_URL"), "/"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LoginRateLimit:     v.GetString("LOGIN_RATE_LIMIT"),
		MigrationsPath:     v.GetString("MIGRATIONS_PATH"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	// Load JWT Expiry Duration (e.g., "60m", "1h")
	if cfg.JWTExpiryDuration, err = time.ParseDuration(v.GetString("JWT_EXPIRY_DURATION")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_DURATION: %w", err)
	}
	// Load Refresh Token Expiry Duration (e.g., "168h" for 7 days)
	if cfg.RefreshTokenExpiryDuration, err = time.ParseDuration(v.GetString("REFRESH_TOKEN_EXPIRY_DURATION")); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_EXPIRY_DURATION: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE_BYTES must be positive, got %d", cfg.MaxUploadSize)
	}

	if cfg.JWTSecret == defaultJWTSecret || cfg.RefreshTokenSecret == defaultRefreshSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET and REFRESH_TOKEN_SECRET must be set in production")
		}
		log.Println("Warning: using default insecure token secrets. THIS IS NOT FOR PRODUCTION.")
	}
	if cfg.JWTSecret == cfg.RefreshTokenSecret {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
