package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type LeaveConfig struct {
	RejectCrossYear            bool
	RejectBackdated            bool
	ApprovalExcludesOwnPending bool
	DefaultInitialBalance      int
}

type Config struct {
	AppEnv             string
	Port               string
	DB                 DBConfig
	RedisAddr          string
	KafkaBroker        string
	JWTSecret          string
	Leave              LeaveConfig
	TxMaxRetries       int
	OutboxPollInterval time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	ConnectRetries     int
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Leave: LeaveConfig{
			RejectCrossYear:            getEnvBool("LEAVE_REJECT_CROSS_YEAR", true),
			RejectBackdated:            getEnvBool("LEAVE_REJECT_BACKDATED", true),
			ApprovalExcludesOwnPending: getEnvBool("LEAVE_APPROVAL_EXCLUDES_OWN_PENDING", false),
			DefaultInitialBalance:      getEnvInt("LEAVE_DEFAULT_INITIAL_BALANCE", 20),
		},
		TxMaxRetries:       getEnvInt("TX_MAX_RETRIES", 3),
		OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		ConnectRetries:     getEnvInt("CONNECT_RETRIES", 5),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	missing := []string{}
	if c.DB.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DB.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing required env: " + strings.Join(missing, ", "))
	}

	if c.Leave.DefaultInitialBalance < 0 {
		return errors.New("LEAVE_DEFAULT_INITIAL_BALANCE must not be negative")
	}
	if c.TxMaxRetries < 0 {
		return errors.New("TX_MAX_RETRIES must not be negative")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	parsed, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}
