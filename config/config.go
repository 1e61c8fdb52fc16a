package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type CascadePolicy string

const (
	// CascadeAbort keeps the user when the product service cannot drop the
	// user's products.
	CascadeAbort CascadePolicy = "abort"
	// CascadeProceed deletes the user anyway and only logs the failure.
	CascadeProceed CascadePolicy = "proceed"
)

type Config struct {
	HTTPHost string
	HTTPPort string

	DBDriver       string
	DSN            string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTSecret         string
	JWTIssuer         string
	JWTAudience       string
	JWTAccessTokenTTL time.Duration
	RefreshTokenTTL   time.Duration
	ResetTokenTTL     time.Duration

	RequireEmailConfirmation bool

	ProductServiceURL     string
	ProductServiceTimeout time.Duration
	CascadeFailurePolicy  CascadePolicy

	PublicBaseURL string
	MailFrom      string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	dsn := getEnv("DB_DSN", os.Getenv("MYSQL_DSN"))
	if dsn == "" {
		return nil, errors.New("DB_DSN environment variable is required")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	if driver != "mysql" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	policy := CascadePolicy(strings.ToLower(getEnv("CASCADE_FAILURE_POLICY", string(CascadeAbort))))
	if policy != CascadeAbort && policy != CascadeProceed {
		return nil, fmt.Errorf("unsupported CASCADE_FAILURE_POLICY %q", policy)
	}

	return &Config{
		HTTPHost:                 getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		DBDriver:                 driver,
		DSN:                      dsn,
		DBMaxOpenConns:           getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:           getIntEnv("DB_MAX_IDLE_CONNS", 5),
		JWTSecret:                jwtSecret,
		JWTIssuer:                getEnv("JWT_ISSUER", "shop-users"),
		JWTAudience:              getEnv("JWT_AUDIENCE", "shop"),
		JWTAccessTokenTTL:        time.Duration(getIntEnv("JWT_ACCESS_TOKEN_TTL_HOURS", 1)) * time.Hour,
		RefreshTokenTTL:          getDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:            getDurationEnv("RESET_TOKEN_TTL", 1*time.Hour),
		RequireEmailConfirmation: getBoolEnv("AUTH_REQUIRE_EMAIL_CONFIRMATION", true),
		ProductServiceURL:        getEnv("PRODUCT_SERVICE_URL", "http://localhost:8081"),
		ProductServiceTimeout:    getDurationEnv("PRODUCT_SERVICE_TIMEOUT", 5*time.Second),
		CascadeFailurePolicy:     policy,
		PublicBaseURL:            strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		MailFrom:                 getEnv("MAIL_FROM", "no-reply@shop.local"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
	}, nil
}

func (c *Config) HTTPAddress() string {
	return c.HTTPHost + ":" + c.HTTPPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv accepts a Go duration string ("90s", "2h") or a plain number
// of minutes.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
