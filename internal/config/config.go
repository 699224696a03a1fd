package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"
	"time"
)

// Config holds the core runtime configuration.  Each field corresponds to
// an environment variable.  Concern-specific settings (generator, queue,
// cache, rate limit, logging) have their own Load* functions.
type Config struct {
	Env           string        // application environment (dev, prod)
	Port          string        // HTTP port to listen on
	StorageDriver string        // "mysql" or "memory"
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret used to sign JWTs
	TokenTTL      time.Duration // lifetime of issued tokens
	BcryptCost    int           // bcrypt cost for password hashing

	GoogleTokenInfoURL string // endpoint that verifies Google ID tokens
	GoogleClientID     string // expected aud of Google ID tokens (optional)

	// Optional bootstrap admin, created at startup when absent.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration values from environment variables.  Required
// variables are enforced by must(); the DB_* variables are only required
// when the mysql storage driver is selected.
func Load() Config {
	cfg := Config{
		Env:                getenv("APP_ENV", "dev"),
		Port:               getenv("APP_PORT", "8001"),
		StorageDriver:      strings.ToLower(getenv("STORAGE_DRIVER", "mysql")),
		JWTSecret:          must("JWT_SECRET"),
		TokenTTL:           envDur("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:         envInt("BCRYPT_COST", 10),
		GoogleTokenInfoURL: getenv("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		AdminUsername:      os.Getenv("ADMIN_USERNAME"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.StorageDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = getenv("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
