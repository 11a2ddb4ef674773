package healthcheck

import (
	"context"
	"francoggm/mpesa-c2b-relay/internal/models"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	routineInterval = 5 * time.Second
	pingTimeout     = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckService probes the shared token cache in the background so the
// health endpoint never waits on redis. Without a cache it always reports ok.
type HealthCheckService struct {
	cacheMode string
	cache     Pinger
	logger    *zap.Logger

	healthMutex sync.RWMutex
	health      models.HealthCheck
}

func NewHealthCheckService(cacheMode string, cache Pinger, logger *zap.Logger) *HealthCheckService {
	return &HealthCheckService{
		cacheMode: cacheMode,
		cache:     cache,
		logger:    logger,
		health: models.HealthCheck{
			Status:     StatusOK,
			TokenCache: cacheMode,
		},
	}
}

func (s *HealthCheckService) Start(ctx context.Context) {
	if s.cache == nil {
		return
	}

	s.performCheck(ctx)
	go s.backgroundRoutine(ctx)
}

func (s *HealthCheckService) Health() models.HealthCheck {
	s.healthMutex.RLock()
	defer s.healthMutex.RUnlock()

	return s.health
}

func (s *HealthCheckService) backgroundRoutine(ctx context.Context) {
	ticker := time.NewTicker(routineInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.performCheck(ctx)
		}
	}
}

func (s *HealthCheckService) performCheck(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	health := models.HealthCheck{
		Status:     StatusOK,
		TokenCache: s.cacheMode,
	}

	if err := s.cache.Ping(pingCtx); err != nil {
		s.logger.Warn("token cache unreachable", zap.Error(err))
		health.Status = StatusDegraded
		health.Error = "token cache unreachable"
	}

	s.healthMutex.Lock()
	previous := s.health.Status
	s.health = health
	s.healthMutex.Unlock()

	if previous != health.Status {
		s.logger.Info("health status changed",
			zap.String("from", previous),
			zap.String("to", health.Status))
	}
}
