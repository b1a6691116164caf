package config_test

import (
	"testing"
	"time"

	"cityvoice/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.DisableAdmissionGating)
	assert.Contains(t, cfg.PostgresDSN(), "dbname=cityvoicedb")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_AdmissionBypass(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		want   bool
	}{
		{name: "honoured in staging", appEnv: "staging", want: true},
		{name: "ignored in production", appEnv: "production", want: false},
		{name: "ignored in production regardless of case", appEnv: "Production", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv("APP_ENV", tt.appEnv)
			t.Setenv("DISABLE_ADMISSION_GATING", "true")

			cfg, err := config.Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.DisableAdmissionGating)
		})
	}
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://city.example, https://staff.city.example ,")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://city.example", "https://staff.city.example"}, cfg.AllowedOrigins)
}
