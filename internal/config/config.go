// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the triplog daemon.
type Config struct {
	Server Server
	Store  Store
	Redis  Redis
	Auth   Auth
	Maps   Maps
	Blob   Blob

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string
}

// Server holds HTTP listener settings.
type Server struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string
}

// Store holds the document backend connection settings.
type Store struct {
	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string
}

// Redis holds the route-cache connection settings. An empty Addr disables
// the cache entirely.
type Redis struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Auth holds the authentication provider settings.
type Auth struct {
	// JWTSecret verifies provider-issued identity tokens. Required.
	JWTSecret string
}

// Maps holds the directions/places provider settings.
type Maps struct {
	DirectionsBaseURL string
	PlacesBaseURL     string
	APIKey            string
}

// Blob holds the photo object-store settings.
type Blob struct {
	BaseURL string
}

// Load reads configuration from the environment (and .env when present)
// and returns a Config. Returns an error listing any required variables
// that are not set.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ROUTE_CACHE_TTL", "1h")
	v.SetDefault("DIRECTIONS_BASE_URL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("MAPS_API_KEY", "")
	v.SetDefault("BLOB_BASE_URL", "")

	// Missing .env is fine; plain environment variables are used instead.
	_ = v.ReadInConfig()

	cfg := Config{
		Server: Server{
			Addr:         v.GetString("SERVER_ADDR"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
			CORSOrigins:  splitCSV(v.GetString("CORS_ORIGINS")),
		},
		Store: Store{DatabaseURL: v.GetString("DATABASE_URL")},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("ROUTE_CACHE_TTL"),
		},
		Auth: Auth{JWTSecret: v.GetString("JWT_SECRET")},
		Maps: Maps{
			DirectionsBaseURL: v.GetString("DIRECTIONS_BASE_URL"),
			PlacesBaseURL:     v.GetString("PLACES_BASE_URL"),
			APIKey:            v.GetString("MAPS_API_KEY"),
		},
		Blob:     Blob{BaseURL: v.GetString("BLOB_BASE_URL")},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	var missing []string
	if cfg.Store.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
