package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config carries every setting the service needs. It is loaded once in main
// and never mutated afterwards.
type Config struct {
	Port string

	MongoURI     string
	DatabaseName string

	AccessSecret  string
	RefreshSecret string
	Pepper        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int

	AllowedOrigins []string

	AdminEmail    string
	AdminPassword string
}

// Load reads the environment and validates it. Every auth-critical setting is
// mandatory; the returned error names all missing or invalid variables so the
// process can refuse to start before binding its listener.
func Load() (*Config, error) {
	var bad []string

	need := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			bad = append(bad, key)
		}
		return v
	}
	needInt := func(key string) int {
		v := need(key)
		if v == "" {
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			bad = append(bad, key+" (invalid)")
			return 0
		}
		return n
	}

	cfg := &Config{
		AccessSecret:  need("JWT_SECRET"),
		RefreshSecret: need("JWT_REFRESH_SECRET"),
		Pepper:        need("PEPPER_SECRET"),

		Port:         envDefault("PORT", "8080"),
		MongoURI:     envDefault("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName: envDefault("DATABASE_NAME", "authdb"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	cfg.AccessTTL = time.Duration(needInt("ACCESS_TOKEN_TTL_MINUTES")) * time.Minute
	cfg.RefreshTTL = time.Duration(needInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour

	cfg.BcryptCost = needInt("SALT_ROUNDS")
	if cfg.BcryptCost != 0 && (cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost) {
		bad = append(bad, "SALT_ROUNDS (out of range)")
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if len(bad) > 0 {
		return nil, fmt.Errorf("environment not set properly: %s", strings.Join(bad, ", "))
	}
	return cfg, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
