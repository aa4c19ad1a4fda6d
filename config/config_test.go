package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("PEPPER_SECRET", "pepper")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("SALT_ROUNDS", "10")
	t.Setenv("PORT", "")
}

func TestLoad(t *testing.T) {
	setValidEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "access-secret", cfg.AccessSecret)
	assert.Equal(t, "refresh-secret", cfg.RefreshSecret)
	assert.Equal(t, "pepper", cfg.Pepper)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_MissingSecretsAreFatal(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PEPPER_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "PEPPER_SECRET")
}

func TestLoad_EveryAuthSettingIsMandatory(t *testing.T) {
	for _, key := range []string{
		"JWT_SECRET",
		"JWT_REFRESH_SECRET",
		"PEPPER_SECRET",
		"ACCESS_TOKEN_TTL_MINUTES",
		"REFRESH_TOKEN_TTL_DAYS",
		"SALT_ROUNDS",
	} {
		t.Run(key, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidNumbers(t *testing.T) {
	setValidEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "soon")
	t.Setenv("SALT_ROUNDS", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL_MINUTES")
	assert.Contains(t, err.Error(), "SALT_ROUNDS")
}

func TestLoad_CostOutOfRange(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SALT_ROUNDS", "99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SALT_ROUNDS")
}
