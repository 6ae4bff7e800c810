package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the console server.
type Config struct {
	Host         string
	Port         string
	DBPath       string
	PollInterval time.Duration
	APIBaseURL   string
	NATSURL      string
	LogLevel     string
	LogFormat    string
	OIDFile      string
}

// getEnv fetches environment variable or returns fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present. Bad numeric values keep the
// default and are reported through the returned error, which is not fatal.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Host:         getEnv("WEB_HOST", "0.0.0.0"),
		Port:         getEnv("WEB_PORT", "8080"),
		DBPath:       getEnv("DB_PATH", "/tmp/vibermm.db"),
		PollInterval: 600 * time.Second,
		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:3000/api"),
		NATSURL:      getEnv("NATS_URL", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		OIDFile:      getEnv("OID_FILE", ""),
	}

	var err error
	if raw := os.Getenv("POLL_INTERVAL"); raw != "" {
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil || secs <= 0 {
			err = fmt.Errorf("invalid POLL_INTERVAL %q, using %s", raw, cfg.PollInterval)
		} else {
			cfg.PollInterval = time.Duration(secs) * time.Second
		}
	}

	return cfg, err
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}
