package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	JWTSecret  string
	JWTTTL     time.Duration
	HMACSecret string

	CBRURL         string
	CBRMargin      float64
	CBRRefreshSpec string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	DecimalPrecision   int32
	TotalGraceInterest string
	IRRTolerance       float64
	IRRMaxIterations   int
	CalcRateLimit      float64
}

// NewConfig loads configuration from a .env file, if present, and environment variables
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		DBConn:   getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=bonds sslmode=disable"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		HMACSecret: getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),

		CBRURL:         getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		CBRRefreshSpec: getEnv("CBR_REFRESH_SPEC", "@every 1h"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "bonds@finecorp.local"),

		TotalGraceInterest: getEnv("TOTAL_GRACE_INTEREST", "waive"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.CBRMargin, err = strconv.ParseFloat(getEnv("CBR_MARGIN", "5.0"), 64); err != nil {
		return nil, fmt.Errorf("invalid CBR_MARGIN: %w", err)
	}
	precision, err := strconv.ParseInt(getEnv("DECIMAL_PRECISION", "16"), 10, 32)
	if err != nil || precision <= 0 {
		return nil, fmt.Errorf("invalid DECIMAL_PRECISION: %q", os.Getenv("DECIMAL_PRECISION"))
	}
	cfg.DecimalPrecision = int32(precision)
	if cfg.IRRTolerance, err = strconv.ParseFloat(getEnv("IRR_TOLERANCE", "1e-7"), 64); err != nil {
		return nil, fmt.Errorf("invalid IRR_TOLERANCE: %w", err)
	}
	if cfg.IRRMaxIterations, err = strconv.Atoi(getEnv("IRR_MAX_ITERATIONS", "100")); err != nil {
		return nil, fmt.Errorf("invalid IRR_MAX_ITERATIONS: %w", err)
	}
	if cfg.CalcRateLimit, err = strconv.ParseFloat(getEnv("CALC_RATE_LIMIT", "10"), 64); err != nil {
		return nil, fmt.Errorf("invalid CALC_RATE_LIMIT: %w", err)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	switch cfg.TotalGraceInterest {
	case "waive", "capitalize":
	default:
		return nil, fmt.Errorf("TOTAL_GRACE_INTEREST must be waive or capitalize, got %q", cfg.TotalGraceInterest)
	}

	return cfg, nil
}

// NewLogger builds the JSON logger used by every component
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
