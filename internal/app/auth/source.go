package auth

import (
	"context"
	"francoggm/mpesa-c2b-relay/internal/models"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenSource hands out bearer tokens for Daraja calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type tokenAcquirer interface {
	AcquireAccessToken(ctx context.Context, creds models.Credentials) (*models.AccessToken, error)
}

type DirectSource struct {
	provider tokenAcquirer
	creds    models.Credentials
}

func NewDirectSource(provider tokenAcquirer, creds models.Credentials) *DirectSource {
	return &DirectSource{
		provider: provider,
		creds:    creds,
	}
}

func (s *DirectSource) Token(ctx context.Context) (string, error) {
	token, err := s.provider.AcquireAccessToken(ctx, s.creds)
	if err != nil {
		return "", err
	}

	return token.Value, nil
}

// TokenStore keeps the current token. Load returns nil, nil on a miss.
type TokenStore interface {
	Load(ctx context.Context) (*models.AccessToken, error)
	Save(ctx context.Context, token *models.AccessToken) error
}

// Locker is implemented by stores shared between instances, so that only one
// of them refreshes an expired token at a time.
type Locker interface {
	TryLock(ctx context.Context, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context) error
}

const (
	refreshLockTTL      = 10 * time.Second
	refreshPollInterval = 100 * time.Millisecond
	refreshPollAttempts = 20
)

// MaxRefreshWait is the longest a caller waits on another instance's refresh
// before fetching a token itself.
const MaxRefreshWait = refreshPollAttempts * refreshPollInterval

type CachedSource struct {
	provider tokenAcquirer
	creds    models.Credentials
	store    TokenStore
	skew     time.Duration
	logger   *zap.Logger
	now      func() time.Time

	refreshMu sync.Mutex
}

func NewCachedSource(provider tokenAcquirer, creds models.Credentials, store TokenStore, skew time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		provider: provider,
		creds:    creds,
		store:    store,
		skew:     skew,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *CachedSource) Token(ctx context.Context) (string, error) {
	if token := s.load(ctx); token != nil {
		return token.Value, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	if token := s.load(ctx); token != nil {
		return token.Value, nil
	}

	if locker, ok := s.store.(Locker); ok {
		return s.refreshShared(ctx, locker)
	}

	return s.refresh(ctx)
}

func (s *CachedSource) refreshShared(ctx context.Context, locker Locker) (string, error) {
	acquired, err := locker.TryLock(ctx, refreshLockTTL)
	if err != nil {
		s.logger.Warn("failed to take token refresh lock, refreshing anyway", zap.Error(err))
		return s.refresh(ctx)
	}

	if acquired {
		defer func() {
			if err := locker.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release token refresh lock", zap.Error(err))
			}
		}()
		return s.refresh(ctx)
	}

	ticker := time.NewTicker(refreshPollInterval)
	defer ticker.Stop()

	for range refreshPollAttempts {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		if token := s.load(ctx); token != nil {
			return token.Value, nil
		}
	}

	s.logger.Warn("token refresh by another instance timed out, refreshing locally")
	return s.refresh(ctx)
}

func (s *CachedSource) refresh(ctx context.Context) (string, error) {
	token, err := s.provider.AcquireAccessToken(ctx, s.creds)
	if err != nil {
		return "", err
	}

	if err := s.store.Save(ctx, token); err != nil {
		s.logger.Warn("failed to store access token", zap.Error(err))
	}

	s.logger.Debug("access token refreshed", zap.Time("expires_at", token.ExpiresAt()))
	return token.Value, nil
}

func (s *CachedSource) load(ctx context.Context) *models.AccessToken {
	token, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load cached access token", zap.Error(err))
		return nil
	}

	if !token.ValidAt(s.now(), s.skew) {
		return nil
	}

	return token
}
