package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration.
type Config struct {
	ServerURL   string
	PlayerName  string
	LogLevel    string
	DialTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and the
// environment, falling back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerURL:   getEnv("NUMDROP_SERVER_URL", "ws://localhost:8080/ws"),
		PlayerName:  getEnv("NUMDROP_PLAYER_NAME", ""),
		LogLevel:    getEnv("NUMDROP_LOG_LEVEL", "info"),
		DialTimeout: time.Duration(getEnvInt("NUMDROP_DIAL_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
