package handlers

import (
	"context"
	"francoggm/mpesa-c2b-relay/internal/config"
	"francoggm/mpesa-c2b-relay/internal/models"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type PaymentService interface {
	RegisterURL(ctx context.Context) (*models.UpstreamResponse, error)
	SimulateC2B(ctx context.Context, req *models.PaymentRequest) (*models.UpstreamResponse, error)
}

type HealthChecker interface {
	Health() models.HealthCheck
}

type Handlers struct {
	cfg            *config.Config
	paymentService PaymentService
	health         HealthChecker
	logger         *zap.Logger
}

func NewHandlers(cfg *config.Config, paymentService PaymentService, health HealthChecker, logger *zap.Logger) *Handlers {
	return &Handlers{
		cfg:            cfg,
		paymentService: paymentService,
		health:         health,
		logger:         logger,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, models.ErrorResponse{Error: message})
}

// forward writes an upstream body back unchanged.
func (h *Handlers) forward(w http.ResponseWriter, resp *models.UpstreamResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp.Body)
}
