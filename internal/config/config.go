// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port               string
	DatabaseURL        string
	AppEnv             string
	JWTSecret          string
	LogLevel           string
	SeedPath           string
	RulesPath          string
	ORSAPIKey          string
	RedisURL           string
	AssignmentStrategy string
	AdminEmail         string
	AdminPassword      string
	AllowedOrigins     []string
}

// Load reads .env when present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found (using environment variables)")
	}

	return Config{
		Port:               Get("PORT", "8080"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AppEnv:             Get("APP_ENV", "production"),
		JWTSecret:          os.Getenv("APP_JWT_SECRET"),
		LogLevel:           Get("LOG_LEVEL", "info"),
		SeedPath:           Get("SEED_PATH", "data/seeds/dispatch.json"),
		RulesPath:          os.Getenv("RULES_PATH"),
		ORSAPIKey:          strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		AssignmentStrategy: os.Getenv("ASSIGNMENT_STRATEGY"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AllowedOrigins:     splitList(Get("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Development reports whether detailed error messages may be exposed to clients.
func (c Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// RequireServer checks the settings the HTTP server cannot start without.
func (c Config) RequireServer() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("APP_JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
