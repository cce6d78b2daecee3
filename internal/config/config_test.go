package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMetaEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INSTANCE_CONNECTION_NAME", "")
	t.Setenv("TRANSPORT", "meta")
	t.Setenv("META_TOKEN", "token")
	t.Setenv("META_PHONE_NUMBER_ID", "12345")
}

func TestLoad_Defaults(t *testing.T) {
	setMetaEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("SESSION_IDLE_TIMEOUT", "")
	t.Setenv("DEDUP_WINDOW", "")
	t.Setenv("SINK_TIMEOUT", "")
	t.Setenv("BUSINESS_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, TransportMeta, cfg.Transport)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.DedupWindow)
	assert.Equal(t, 10*time.Second, cfg.SinkTimeout)
	assert.Equal(t, "America/Bogota", cfg.BusinessTimezone)
	assert.Equal(t, "v18.0", cfg.Meta.APIVersion)
}

func TestLoad_Overrides(t *testing.T) {
	setMetaEnv(t)
	t.Setenv("SESSION_IDLE_TIMEOUT", "90s")
	t.Setenv("DEDUP_WINDOW", "30s")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("ADMIN_TOKEN", "admin-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.SessionIdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.DedupWindow)
	assert.True(t, cfg.UseMemoryStore)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "admin-secret", cfg.AdminToken)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setMetaEnv(t)
	t.Setenv("DEDUP_WINDOW", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEDUP_WINDOW")
}

func TestValidate_TransportCredentials(t *testing.T) {
	cfg := &Config{
		Transport:          TransportTwilio,
		SinkTimeout:        time.Second,
		SessionIdleTimeout: time.Minute,
		DedupWindow:        time.Second,
	}
	require.Error(t, cfg.Validate())

	cfg.Twilio = TwilioConfig{AccountSID: "AC1", AuthToken: "tok", WhatsAppFrom: "whatsapp:+1"}
	require.NoError(t, cfg.Validate())

	cfg.Transport = "carrier-pigeon"
	require.Error(t, cfg.Validate())
}
