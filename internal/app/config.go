package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/logger"
)

// Storage backends for the key store and peer key cache.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// DefaultTimeout bounds every relay request.
const DefaultTimeout = 10 * time.Second

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string // config directory, e.g. $HOME/.lawmate
	RelayURL   string // relay base URL, e.g. http://127.0.0.1:8080
	Token      string // bearer token for the relay
	User       domain.UserID
	Passphrase string // seals the private key at rest when set
	Store      string // file, memory or redis
	RedisAddr  string
	RedisPass  string
	RedisDB    int
	Timeout    time.Duration
	Log        logger.Config
	HTTP       *http.Client // optional; defaults to a client with Timeout
}

// LoadConfig reads configuration from the environment. A .env file in the
// home directory is loaded first; variables already set win over it.
func LoadConfig() (Config, error) {
	home := os.Getenv("LAWMATE_HOME")
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("locate home directory: %w", err)
		}
		home = filepath.Join(dir, ".lawmate")
	}
	if err := godotenv.Load(filepath.Join(home, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Home:       home,
		RelayURL:   getString("LAWMATE_RELAY_URL", "http://127.0.0.1:8080"),
		Token:      os.Getenv("LAWMATE_TOKEN"),
		User:       domain.UserID(os.Getenv("LAWMATE_USER")),
		Passphrase: os.Getenv("LAWMATE_PASSPHRASE"),
		Store:      getString("LAWMATE_STORE", StoreFile),
		RedisAddr:  getString("LAWMATE_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:  os.Getenv("LAWMATE_REDIS_PASSWORD"),
		Timeout:    DefaultTimeout,
		Log: logger.Config{
			Level:  getString("LOG_LEVEL", "warn"),
			Format: getString("LOG_FORMAT", "console"),
		},
	}
	if v := os.Getenv("LAWMATE_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("LAWMATE_REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}
	if v := os.Getenv("LAWMATE_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("LAWMATE_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Validate reports configuration that cannot produce a working Wire.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("home directory is required")
	}
	if c.User == "" {
		return errors.New("user id is required (LAWMATE_USER or --user)")
	}
	if strings.ContainsAny(c.User.String(), " /") {
		return fmt.Errorf("invalid user id %q", c.User)
	}
	switch c.Store {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want file, memory or redis)", c.Store)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("redis db must not be negative, got %d", c.RedisDB)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDuration accepts Go durations ("15s") and bare seconds ("15").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
