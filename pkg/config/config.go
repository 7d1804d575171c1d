package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds runtime configuration for the showbill web server.
type ServerConfig struct {
	Environment      string
	Addr             string
	DatabaseURL      string
	MigrationsDir    string
	SessionSecret    string
	SessionTTL       time.Duration
	CookieName       string
	CookieSecure     bool
	SessionRedisAddr string
	SessionRedisPass string
	SessionRedisDB   int
	EventsAPIURL     string
	EventsAPIKey     string
	EventsKeyword    string
	EventsPageSize   int
}

// LoadServerConfig constructs a ServerConfig from environment variables.
func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Environment:      GetString("APP_ENV", "development"),
		Addr:             GetString("HTTP_ADDR", ":3000"),
		DatabaseURL:      GetString("DATABASE_URL", "postgres://showbill:showbill@db:5432/showbill?sslmode=disable"),
		MigrationsDir:    GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		SessionSecret:    GetString("SESSION_SECRET", ""),
		SessionTTL:       time.Duration(GetInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieName:       GetString("SESSION_COOKIE_NAME", "showbill_session"),
		CookieSecure:     GetBool("SESSION_COOKIE_SECURE", false),
		SessionRedisAddr: GetString("SESSION_REDIS_ADDR", ""),
		SessionRedisPass: GetString("SESSION_REDIS_PASSWORD", ""),
		SessionRedisDB:   GetInt("SESSION_REDIS_DB", 0),
		EventsAPIURL:     GetString("EVENTS_API_URL", "https://app.ticketmaster.com/discovery/v2"),
		EventsAPIKey:     GetString("EVENTS_API_KEY", ""),
		EventsKeyword:    GetString("EVENTS_KEYWORD", "concert"),
		EventsPageSize:   GetInt("EVENTS_PAGE_SIZE", 30),
	}
}

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}
