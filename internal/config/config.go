package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/motoshop/auth-service/internal/auth"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Token secrets are required and must differ; the
// TTLs and bcrypt cost fall back to sane defaults when unset.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret signing access tokens
	JWTRefreshSecret string // secret signing refresh tokens
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	BcryptCost       int    // bcrypt cost for password hashing
}

// Load reads configuration from the environment.  Required variables are
// enforced by must(); there are deliberately no literal fallbacks for the
// signing secrets.
func Load() Config {
	cfg := Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		JWTRefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTLMin:     intDefault("ACCESS_TOKEN_TTL_MIN", 24*60),
		RefreshTTLDays:   intDefault("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:       intDefault("BCRYPT_COST", 10),
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		log.Fatal("JWT_SECRET and JWT_REFRESH_SECRET must be distinct")
	}
	return cfg
}

// Auth translates the flat env values into the auth service configuration.
func (c Config) Auth() auth.Config {
	return auth.Config{
		AccessSecret:  c.JWTSecret,
		RefreshSecret: c.JWTRefreshSecret,
		AccessTTL:     time.Duration(c.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(c.RefreshTTLDays) * 24 * time.Hour,
		BcryptCost:    c.BcryptCost,
	}
}

// must retrieves a required environment variable.  If the variable is unset
// or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intDefault reads an integer variable, returning def when unset.  A value
// that is set but unparsable is a configuration mistake and fatal.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
