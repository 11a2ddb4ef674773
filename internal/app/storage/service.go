package storage

import (
	"context"
	"errors"
	"francoggm/mpesa-c2b-relay/internal/models"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenKey  = "mpesa_access_token"
	refreshLockKey  = "mpesa_access_token_refresh_lock"
	minimumTokenTTL = time.Second
)

// unlockScript deletes the lock only while this instance still owns it.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TokenStore shares the Daraja access token between relay instances.
type TokenStore struct {
	cache      *redis.Client
	instanceID string
	now        func() time.Time
}

func NewTokenStore(cache *redis.Client) *TokenStore {
	return &TokenStore{
		cache:      cache,
		instanceID: uuid.New().String(),
		now:        time.Now,
	}
}

func (s *TokenStore) Load(ctx context.Context) (*models.AccessToken, error) {
	payload, err := s.cache.Get(ctx, accessTokenKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var token models.AccessToken
	if err := sonic.ConfigFastest.Unmarshal(payload, &token); err != nil {
		return nil, err
	}

	return &token, nil
}

func (s *TokenStore) Save(ctx context.Context, token *models.AccessToken) error {
	ttl := token.ExpiresAt().Sub(s.now())
	if ttl < minimumTokenTTL {
		return nil
	}

	payload, err := sonic.ConfigFastest.Marshal(token)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, accessTokenKey, payload, ttl).Err()
}

func (s *TokenStore) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return s.cache.SetNX(ctx, refreshLockKey, s.instanceID, ttl).Result()
}

func (s *TokenStore) Unlock(ctx context.Context) error {
	return unlockScript.Run(ctx, s.cache, []string{refreshLockKey}, s.instanceID).Err()
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx).Err()
}
