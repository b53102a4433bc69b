package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.TrialDuration())
	assert.Equal(t, "IN", cfg.DefaultPhoneRegion)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRIAL_HOURS", "48")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BUSINESS_TIMEZONE", "UTC")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASSWORD", "pw")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.TrialDuration())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "mailer", cfg.SMTPUser)
	assert.Equal(t, "pw", cfg.SMTPPassword)
	assert.Equal(t, "ops@example.com", cfg.AdminEmail)
}

// Every Config field must be reachable from the environment alone.
func TestLoad_EveryKeyReadsEnv(t *testing.T) {
	typ := reflect.TypeOf(Config{})
	for i := 0; i < typ.NumField(); i++ {
		key := typ.Field(i).Tag.Get("mapstructure")
		v := viper.New()
		setDefaults(v)
		assert.True(t, v.IsSet(key), "%s has no registered default", key)
	}
}

func TestLocation_UnknownZoneFallsBackToUTC(t *testing.T) {
	cfg := &Config{BusinessTimezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
