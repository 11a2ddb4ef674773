package server

import (
	"francoggm/mpesa-c2b-relay/internal/app/auth"
	"francoggm/mpesa-c2b-relay/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpstreamBudget(t *testing.T) {
	cfg := &config.Config{
		Mpesa:      config.Mpesa{UpstreamTimeout: 10 * time.Second},
		TokenCache: config.TokenCache{Mode: config.TokenCacheMemory},
	}
	require.Equal(t, 21*time.Second, upstreamBudget(cfg))

	cfg.TokenCache.Mode = config.TokenCacheRedis
	require.Equal(t, 21*time.Second+auth.MaxRefreshWait, upstreamBudget(cfg))
	require.Equal(t, 2*time.Second, auth.MaxRefreshWait)
}
