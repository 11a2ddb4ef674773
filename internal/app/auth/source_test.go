package auth

import (
	"context"
	"errors"
	"francoggm/mpesa-c2b-relay/internal/models"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcquirer struct {
	calls atomic.Int32
	now   func() time.Time
	err   error
}

func (f *fakeAcquirer) AcquireAccessToken(ctx context.Context, creds models.Credentials) (*models.AccessToken, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}

	return &models.AccessToken{
		Value:     "token-" + string(rune('0'+n)),
		ExpiresIn: time.Hour,
		IssuedAt:  f.now(),
	}, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestDirectSource_FetchesEveryCall(t *testing.T) {
	acquirer := &fakeAcquirer{now: time.Now}
	source := NewDirectSource(acquirer, models.Credentials{Key: "k", Secret: "s"})

	for range 3 {
		_, err := source.Token(context.Background())
		require.NoError(t, err)
	}

	require.Equal(t, int32(3), acquirer.calls.Load())
}

func TestCachedSource_ReusesUntilExpiry(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	acquirer := &fakeAcquirer{now: clk.Now}

	source := NewCachedSource(acquirer, models.Credentials{Key: "k", Secret: "s"}, NewMemoryStore(), time.Minute, zap.NewNop())
	source.now = clk.Now

	for range 5 {
		token, err := source.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "token-1", token)
	}
	require.Equal(t, int32(1), acquirer.calls.Load())

	// inside the skew window the token is treated as expired
	clk.Advance(59*time.Minute + 30*time.Second)

	token, err := source.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-2", token)
	require.Equal(t, int32(2), acquirer.calls.Load())
}

func TestCachedSource_ConcurrentCallersShareRefresh(t *testing.T) {
	acquirer := &fakeAcquirer{now: time.Now}
	source := NewCachedSource(acquirer, models.Credentials{Key: "k", Secret: "s"}, NewMemoryStore(), time.Minute, zap.NewNop())

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := source.Token(context.Background())
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), acquirer.calls.Load())
}

func TestCachedSource_PropagatesError(t *testing.T) {
	acquirer := &fakeAcquirer{now: time.Now, err: ErrUpstreamAuth}
	source := NewCachedSource(acquirer, models.Credentials{Key: "k", Secret: "s"}, NewMemoryStore(), time.Minute, zap.NewNop())

	_, err := source.Token(context.Background())
	require.ErrorIs(t, err, ErrUpstreamAuth)
}

type lockingStore struct {
	*MemoryStore
	lockErr  error
	held     bool
	unlocked atomic.Int32
}

func (s *lockingStore) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	if s.lockErr != nil {
		return false, s.lockErr
	}
	return !s.held, nil
}

func (s *lockingStore) Unlock(ctx context.Context) error {
	s.unlocked.Add(1)
	return nil
}

func TestCachedSource_SharedLock(t *testing.T) {
	t.Run("lock acquired", func(t *testing.T) {
		store := &lockingStore{MemoryStore: NewMemoryStore()}
		acquirer := &fakeAcquirer{now: time.Now}
		source := NewCachedSource(acquirer, models.Credentials{}, store, time.Minute, zap.NewNop())

		token, err := source.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "token-1", token)
		require.Equal(t, int32(1), store.unlocked.Load())
	})

	t.Run("other instance refreshes", func(t *testing.T) {
		store := &lockingStore{MemoryStore: NewMemoryStore(), held: true}
		acquirer := &fakeAcquirer{now: time.Now}
		source := NewCachedSource(acquirer, models.Credentials{}, store, time.Minute, zap.NewNop())

		go func() {
			time.Sleep(2 * refreshPollInterval)
			store.Save(context.Background(), &models.AccessToken{Value: "remote", ExpiresIn: time.Hour, IssuedAt: time.Now()})
		}()

		token, err := source.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "remote", token)
		require.Zero(t, acquirer.calls.Load())
	})

	t.Run("lock error falls back to local refresh", func(t *testing.T) {
		store := &lockingStore{MemoryStore: NewMemoryStore(), lockErr: errors.New("connection refused")}
		acquirer := &fakeAcquirer{now: time.Now}
		source := NewCachedSource(acquirer, models.Credentials{}, store, time.Minute, zap.NewNop())

		token, err := source.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "token-1", token)
		require.Zero(t, store.unlocked.Load())
	})
}
