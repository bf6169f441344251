package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:/tmp/mess.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CSRF_KEY", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setBase(t)
	for _, k := range []string{"PORT", "JWT_TTL_MINUTES", "CORS_ALLOWED_ORIGINS", "SMTP_HOST", "SMTP_PORT", "TELEGRAM_ADMIN_CHAT_ID", "CSRF_ENABLED", "UPLOAD_DIR", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Empty(t, cfg.CORSOrigins, "cross-origin access is opt-in")
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.TelegramEnabled())
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, "media", cfg.UploadDir)
	assert.False(t, cfg.Google.Enabled())

	driver, path, err := cfg.DatabaseDriver()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "/tmp/mess.db", path)
}

func TestLoadOverrides(t *testing.T) {
	setBase(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/mess")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "Admin1234")
	t.Setenv("GOOGLE_CLIENT_ID", "client")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "")
	t.Setenv("PUBLIC_BASE_URL", "https://mess.example/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(-100123), cfg.TelegramAdminChatID)
	assert.True(t, cfg.Admin.Enabled())
	assert.True(t, cfg.Google.Enabled())
	assert.Equal(t, "https://mess.example/accounts/google/callback", cfg.Google.RedirectURL)

	driver, dsn, err := cfg.DatabaseDriver()
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://u:p@localhost/mess", dsn)
}

func TestLoadRequiresSecrets(t *testing.T) {
	setBase(t)
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	setBase(t)
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.Error(t, err)

	setBase(t)
	t.Setenv("CSRF_KEY", "short")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CSRF_ENABLED", "false")
	_, err = Load()
	assert.NoError(t, err)
}

func TestDatabaseDriverRejectsUnknownScheme(t *testing.T) {
	_, _, err := Config{DatabaseURL: "mysql://x"}.DatabaseDriver()
	assert.Error(t, err)
	_, _, err = Config{DatabaseURL: "sqlite:"}.DatabaseDriver()
	assert.Error(t, err)
}
