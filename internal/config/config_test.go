package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("CONSUMER_KEY", "key")
	t.Setenv("CONSUMER_SECRET", "secret")
	t.Setenv("SHORT_CODE", "600999")

	cfg := NewConfig()

	require.Equal(t, "10000", cfg.Server.Port)
	require.Equal(t, SandboxBaseURL, cfg.Mpesa.BaseURL)
	require.Equal(t, "Completed", cfg.C2B.ResponseType)
	require.Equal(t, "CustomerPayBillOnline", cfg.C2B.CommandID)
	require.True(t, cfg.C2B.ValidateRequest)
	require.Equal(t, ValidationModeCanonical, cfg.C2B.ValidationResponseMode)
	require.Equal(t, TokenCacheMemory, cfg.TokenCache.Mode)
	require.Equal(t, 10*time.Second, cfg.Mpesa.UpstreamTimeout)
	require.NoError(t, cfg.Validate())

	creds := cfg.Credentials()
	require.Equal(t, "key", creds.Key)
	require.Equal(t, "secret", creds.Secret)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("MPESA_ENVIRONMENT", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("UPSTREAM_TIMEOUT", "3")
	t.Setenv("TOKEN_REFRESH_SKEW", "90s")
	t.Setenv("C2B_VALIDATE_REQUEST", "false")
	t.Setenv("VALIDATION_RESPONSE_MODE", ValidationModeMessage)

	cfg := NewConfig()

	require.Equal(t, ProductionBaseURL, cfg.Mpesa.BaseURL)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 3*time.Second, cfg.Mpesa.UpstreamTimeout)
	require.Equal(t, 90*time.Second, cfg.TokenCache.RefreshSkew)
	require.False(t, cfg.C2B.ValidateRequest)
	require.Equal(t, ValidationModeMessage, cfg.C2B.ValidationResponseMode)
}

func TestNewConfig_BaseURLTrimmed(t *testing.T) {
	t.Setenv("MPESA_BASE_URL", "http://localhost:9000/")

	require.Equal(t, "http://localhost:9000", NewConfig().Mpesa.BaseURL)
}

func TestValidate(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Mpesa.ConsumerKey = ""
		cfg.Mpesa.ConsumerSecret = ""
		cfg.Mpesa.ShortCode = ""

		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "CONSUMER_KEY")
		require.Contains(t, err.Error(), "CONSUMER_SECRET")
		require.Contains(t, err.Error(), "SHORT_CODE")
	})

	t.Run("unknown modes", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Mpesa.ConsumerKey = "key"
		cfg.Mpesa.ConsumerSecret = "secret"
		cfg.Mpesa.ShortCode = "600999"
		cfg.TokenCache.Mode = "disk"
		cfg.C2B.ValidationResponseMode = "loose"

		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "TOKEN_CACHE")
		require.Contains(t, err.Error(), "VALIDATION_RESPONSE_MODE")
	})
}
