package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string
	LogLevel    string

	UploadDir     string
	PublicBaseURL string
	CookieSecure  bool
	CSRFEnabled   bool
	CSRFKey       string

	SMTP SMTPConfig

	Google GoogleConfig

	TelegramBotToken    string
	TelegramAdminChatID int64

	Admin AdminBootstrap
}

// SMTPConfig configures outbound mail. An empty Host means mail is only logged.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP relay is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// GoogleConfig enables member sign-in with Google.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether OAuth client credentials are set.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// AdminBootstrap describes the first administrator created at startup.
type AdminBootstrap struct {
	Username string
	Email    string
	Password string
}

// Enabled reports whether enough is set to create the admin.
func (a AdminBootstrap) Enabled() bool {
	return a.Username != "" && a.Password != ""
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "mess-manager"),
		CORSOrigins:   parseCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), "info"),
		UploadDir:     fallback(os.Getenv("UPLOAD_DIR"), "media"),
		PublicBaseURL: strings.TrimRight(fallback(os.Getenv("PUBLIC_BASE_URL"), "http://localhost:8080"), "/"),
		CookieSecure:  parseBool(os.Getenv("COOKIE_SECURE"), false),
		CSRFEnabled:   parseBool(os.Getenv("CSRF_ENABLED"), true),
		CSRFKey:       strings.TrimSpace(os.Getenv("CSRF_KEY")),
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     parseInt(os.Getenv("SMTP_PORT"), 587),
			Username: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     fallback(os.Getenv("MAIL_FROM"), "Mess Management <noreply@localhost>"),
		},
		Google: GoogleConfig{
			ClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
			RedirectURL:  strings.TrimSpace(os.Getenv("GOOGLE_REDIRECT_URL")),
		},
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		Admin: AdminBootstrap{
			Username: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
			Email:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if cfg.Google.RedirectURL == "" {
		cfg.Google.RedirectURL = cfg.PublicBaseURL + "/accounts/google/callback"
	}
	cfg.JWTTTL = time.Duration(parseInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_ADMIN_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
		cfg.TelegramAdminChatID = id
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.CSRFEnabled && len(cfg.CSRFKey) < 32 {
		return Config{}, errors.New("CSRF_KEY must be at least 32 bytes when CSRF_ENABLED is on")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// TelegramEnabled reports whether admin alerts can be delivered.
func (c Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramAdminChatID != 0
}

// DatabaseDriver returns "postgres" or "sqlite" and the DSN or path to open.
func (c Config) DatabaseDriver() (string, string, error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres", c.DatabaseURL, nil
	case strings.HasPrefix(c.DatabaseURL, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(c.DatabaseURL, "sqlite:"), "//")
		if path == "" {
			return "", "", errors.New("sqlite DATABASE_URL needs a file path")
		}
		return "sqlite", path, nil
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", c.DatabaseURL)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseBool(value string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return b
}
