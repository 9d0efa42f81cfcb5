package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionSQLite = "sqlite"
	SessionRedis  = "redis"
)

var (
	ErrMissingAPIURL    = errors.New("GYM_API_URL is required")
	ErrInvalidCSRFKey   = errors.New("GYM_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrCSRFKeyRequired  = errors.New("GYM_CSRF_KEY is required in production")
	ErrUnknownSessionDB = errors.New("GYM_SESSION_BACKEND must be memory, sqlite or redis")
)

// Config is the process configuration, read once at startup.
type Config struct {
	Addr           string
	Env            string
	APIURL         string
	APITimeout     time.Duration
	APILoginPath   string
	PublicURL      string
	CSRFKey        []byte
	SessionBackend string
	SessionDB      string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ResendKey      string
	ResendFrom     string
	SlowRequestMs  int
	RateLimit      int
	LogLevel       slog.Level
}

// Production reports whether the app runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment, seeded by an optional .env file.
// PRE: none
// POST: Returns a validated Config or the first configuration error
func Load() (Config, error) {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Tests pass a map-backed getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:           get("GYM_ADDR", ":8080"),
		Env:            get("GYM_ENV", "development"),
		APIURL:         strings.TrimRight(get("GYM_API_URL", "http://localhost:8000/api"), "/"),
		APILoginPath:   get("GYM_API_LOGIN_PATH", "/token/"),
		PublicURL:      strings.TrimRight(get("GYM_PUBLIC_URL", "http://localhost:8080"), "/"),
		SessionBackend: get("GYM_SESSION_BACKEND", SessionMemory),
		SessionDB:      get("GYM_SESSION_DB", "sessions.db"),
		RedisAddr:      get("GYM_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("GYM_REDIS_PASSWORD"),
		ResendKey:      getenv("GYM_RESEND_KEY"),
		ResendFrom:     get("GYM_RESEND_FROM", "Gimnasio <noreply@example.com>"),
	}

	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMissingAPIURL, err)
	}

	timeout, err := time.ParseDuration(get("GYM_API_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid GYM_API_TIMEOUT: %q", getenv("GYM_API_TIMEOUT"))
	}
	cfg.APITimeout = timeout

	cfg.SlowRequestMs = positiveInt(getenv("GYM_SLOW_REQUEST_MS"), 200)
	cfg.RateLimit = positiveInt(getenv("GYM_RATE_LIMIT"), 20)
	cfg.RedisDB, _ = strconv.Atoi(getenv("GYM_REDIS_DB"))

	switch cfg.SessionBackend {
	case SessionMemory, SessionSQLite, SessionRedis:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownSessionDB, cfg.SessionBackend)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("GYM_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid GYM_LOG_LEVEL: %w", err)
	}

	key, err := csrfKey(getenv("GYM_CSRF_KEY"), cfg.Production())
	if err != nil {
		return Config{}, err
	}
	cfg.CSRFKey = key

	return cfg, nil
}

// csrfKey decodes the hex CSRF secret. In development a random key is generated per startup.
func csrfKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrInvalidCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "set GYM_CSRF_KEY so forms survive restarts")
	return key, nil
}

func positiveInt(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return fallback
}
