package config

import (
	"testing"
	"time"

	"onboarder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"DISCORD_TOKEN":    "test_token",
		"DISCORD_GUILD_ID": "813676488876228630",
		"DB_PASSWORD":      "test_db_password",
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoadFrom_WithDefaults(t *testing.T) {
	cfg, err := LoadFrom(requiredEnv())

	require.NoError(t, err)
	assert.Equal(t, "test_token", cfg.Discord.Token)
	assert.Equal(t, "files", cfg.Discord.AttachmentsDir)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "onboarder", cfg.Database.Name)
	assert.Equal(t, "onboarder", cfg.Database.User)
	assert.Equal(t, "file://migrations", cfg.MigrationsURL)
	assert.Equal(t, "yikes", cfg.RejoinKeyword)
	assert.Equal(t, 5*time.Minute, cfg.RegistrationCacheTTL)
	assert.Equal(t, uint(5), cfg.Delivery.MaxTries)
	assert.Equal(t, 500*time.Millisecond, cfg.Delivery.InitialInterval)
	assert.Equal(t, "828216337158766633", cfg.Roles.GraduateCohort)
	assert.Empty(t, cfg.Roles.ProgrammingCourse)
	assert.Equal(t, 30*24*time.Hour, cfg.Audit.MaxAge)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telegram.Enabled())
	assert.Empty(t, cfg.ProductRoleIDs())
}

func TestLoadFrom_Overrides(t *testing.T) {
	environ := requiredEnv()
	environ["DB_HOST"] = "db"
	environ["REJOIN_KEYWORD"] = "again"
	environ["PRODUCT_ROLES"] = "BACHELOR:813676488876228640,WORKSHOP:813676488876228641"
	environ["ROLE_GENERAL"] = "813676488876228650"
	environ["DELIVERY_MAX_TRIES"] = "3"
	environ["TELEGRAM_TOKEN"] = "tg"
	environ["TELEGRAM_CHAT_ID"] = "-100123"
	environ["LOG_DEV"] = "true"

	cfg, err := LoadFrom(environ)

	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "again", cfg.RejoinKeyword)
	assert.Equal(t, uint(3), cfg.Delivery.MaxTries)
	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
	assert.True(t, cfg.Log.Dev)
	assert.Equal(t, map[domain.Product]domain.RoleID{
		"BACHELOR": "813676488876228640",
		"WORKSHOP": "813676488876228641",
	}, cfg.ProductRoleIDs())
	assert.Equal(t, domain.RoleID("813676488876228650"), cfg.ProgramRoles()[domain.ProgramGeneral])
	assert.Len(t, cfg.ProgramRoles(), len(domain.Programs))
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		change      func(map[string]string)
		expectedErr string
	}{
		{
			name:        "missing discord token",
			change:      func(e map[string]string) { delete(e, "DISCORD_TOKEN") },
			expectedErr: "DISCORD_TOKEN",
		},
		{
			name:        "missing db password",
			change:      func(e map[string]string) { delete(e, "DB_PASSWORD") },
			expectedErr: "DB_PASSWORD",
		},
		{
			name:        "missing guild",
			change:      func(e map[string]string) { delete(e, "DISCORD_GUILD_ID") },
			expectedErr: "DISCORD_GUILD_ID",
		},
		{
			name:        "malformed role id",
			change:      func(e map[string]string) { e["ROLE_IT_SECURITY"] = "security" },
			expectedErr: "ROLE_IT_SECURITY",
		},
		{
			name:        "malformed product role",
			change:      func(e map[string]string) { e["PRODUCT_ROLES"] = "BACHELOR:abc" },
			expectedErr: "PRODUCT_ROLES[BACHELOR]",
		},
		{
			name:        "telegram without chat",
			change:      func(e map[string]string) { e["TELEGRAM_TOKEN"] = "tg" },
			expectedErr: "TELEGRAM_CHAT_ID",
		},
		{
			name:        "no delivery attempts",
			change:      func(e map[string]string) { e["DELIVERY_MAX_TRIES"] = "0" },
			expectedErr: "DELIVERY_MAX_TRIES",
		},
		{
			name:        "unparsable duration",
			change:      func(e map[string]string) { e["REGISTRATION_CACHE_TTL"] = "soon" },
			expectedErr: "parse env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := requiredEnv()
			tt.change(environ)

			cfg, err := LoadFrom(environ)

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	for k, v := range requiredEnv() {
		t.Setenv(k, v)
	}
	t.Setenv("DB_NAME", "from_env")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Database.Name)
}
