package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - настройки сервиса справочника.
type Config struct {
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	ServerPort   string
	RateLimitRPS float64
}

// SyncConfig - настройки клиента синхронизации.
type SyncConfig struct {
	DirectoryURL     string
	DirectoryTimeout time.Duration
	DBPath           string
	AccountsFile     string
	AccountType      string
	GroupTitle       string
	Schedule         string
	RetryBase        time.Duration
	MaxRetries       uint64
	LogFile          string
	LogLevel         string
}

func LoadConfig() (Config, error) {

	err := godotenv.Load()

	return Config{
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "password"),
		DBName:       getEnv("DB_NAME", "contacts"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		RateLimitRPS: getEnvFloat("RATE_LIMIT_RPS", 20),
	}, err
}

func LoadSyncConfig() (SyncConfig, error) {

	err := godotenv.Load()

	return SyncConfig{
		DirectoryURL:     getEnv("DIRECTORY_URL", "http://localhost:8080"),
		DirectoryTimeout: getEnvDuration("DIRECTORY_TIMEOUT", 30*time.Second),
		DBPath:           getEnv("SYNC_DB_PATH", "./data/contacts.db"),
		AccountsFile:     getEnv("SYNC_ACCOUNTS_FILE", "./data/accounts.yaml"),
		AccountType:      getEnv("SYNC_ACCOUNT_TYPE", "contacts.sync"),
		GroupTitle:       getEnv("SYNC_GROUP_TITLE", "Coworkers"),
		Schedule:         getEnv("SYNC_SCHEDULE", "@every 1h"),
		RetryBase:        getEnvDuration("SYNC_RETRY_BASE", 30*time.Second),
		MaxRetries:       uint64(getEnvInt("SYNC_MAX_RETRIES", 3)),
		LogFile:          getEnv("SYNC_LOG_FILE", ""),
		LogLevel:         getEnv("SYNC_LOG_LEVEL", "info"),
	}, err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value >= 0 {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
