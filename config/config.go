package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv reads a .env file when present. Missing files are fine; the process
// environment always wins over values in the file.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file, using process environment")
	}
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s SMTP) Enabled() bool { return s.Host != "" && (s.Username != "" || s.From != "") }

// Config is read from environment variables.
type Config struct {
	Env      string
	Port     string
	LogLevel string
	AppName  string

	DatabaseURL string
	RedisAddr   string
	RedisPwd    string
	RedisDB     int

	WebOrigins []string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
	ResetTTL  time.Duration

	// EchoResetToken returns reset tokens in the forgot-password response.
	// Never honoured in production.
	EchoResetToken bool

	UploadDir      string
	MaxPhotoBytes  int64
	RabbitURL      string
	BorrowQueue    string
	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	SMTP SMTP
}

func (c Config) Production() bool { return c.Env == "production" }

// local environments may run with the built-in JWT secret.
func (c Config) local() bool { return c.Env == "development" || c.Env == "test" }

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getenv(k, "")); err == nil && d > 0 {
		return d
	}
	return def
}

func getInt(k string, def int) int {
	var n int
	if _, err := fmt.Sscanf(getenv(k, ""), "%d", &n); err == nil && n > 0 {
		return n
	}
	return def
}

func getBool(k string) bool {
	b, err := strconv.ParseBool(getenv(k, ""))
	return err == nil && b
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// postgresDSN prefers DATABASE_URL and falls back to the discrete DB_* keys.
func postgresDSN() string {
	if url := getenv("DATABASE_URL", ""); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getenv("DB_HOST", "127.0.0.1"),
		getenv("DB_USER", "postgres"),
		getenv("DB_PASSWORD", "postgres"),
		getenv("DB_NAME", "library"),
		getenv("DB_PORT", "5432"),
		getenv("DB_SSLMODE", "disable"),
	)
}

// Load builds a Config. APP_ENV defaults to production; only development and
// test fall back to a built-in JWT secret.
func Load() (Config, error) {
	cfg := Config{
		Env:      getenv("APP_ENV", "production"),
		Port:     getenv("PORT", "3000"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		AppName:  getenv("APP_NAME", "Library API"),

		DatabaseURL: postgresDSN(),
		RedisAddr:   getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:     getInt("REDIS_DB", 0),

		WebOrigins: splitCSV(getenv("WEB_ORIGIN", "http://localhost:5173")),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getenv("JWT_ISSUER", "library-api"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),
		ResetTTL:  getDuration("RESET_TOKEN_TTL", time.Hour),

		EchoResetToken: getBool("RESET_TOKEN_ECHO"),

		UploadDir:      getenv("UPLOAD_DIR", "public/uploads"),
		MaxPhotoBytes:  int64(getInt("MAX_PHOTO_BYTES", 5<<20)),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		BorrowQueue:    getenv("BORROW_EVENTS_QUEUE", "library.borrow.events"),
		APIRateLimit:   getInt("API_RATE_LIMIT", 100),
		APIRateWindow:  getDuration("API_RATE_WINDOW", 15*time.Minute),
		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getDuration("AUTH_RATE_WINDOW", time.Hour),

		SMTP: SMTP{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getenv("SMTP_PORT", "587"),
			Username: getenv("SMTP_USERNAME", ""),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", ""),
		},
	}
	if cfg.Production() {
		cfg.EchoResetToken = false
	}
	if cfg.JWTSecret == "" {
		if !cfg.local() {
			return cfg, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.Env)
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}
