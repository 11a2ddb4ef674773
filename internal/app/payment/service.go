package payment

import (
	"context"
	"fmt"
	"francoggm/mpesa-c2b-relay/internal/app/auth"
	"francoggm/mpesa-c2b-relay/internal/config"
	"francoggm/mpesa-c2b-relay/internal/models"

	"go.uber.org/zap"
)

type Client interface {
	RegisterURL(ctx context.Context, token string, payload *models.RegisterURLPayload) (*models.UpstreamResponse, error)
	SimulateC2B(ctx context.Context, token string, payload *models.SimulateC2BPayload) (*models.UpstreamResponse, error)
}

type PaymentService struct {
	shortCode string
	c2b       config.C2B
	tokens    auth.TokenSource
	client    Client
	logger    *zap.Logger
}

func NewPaymentService(cfg *config.Config, tokens auth.TokenSource, client Client, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		shortCode: cfg.Mpesa.ShortCode,
		c2b:       cfg.C2B,
		tokens:    tokens,
		client:    client,
		logger:    logger,
	}
}

// RegisterURL points the short code's C2B confirmation and validation
// callbacks at the configured URLs.
func (p *PaymentService) RegisterURL(ctx context.Context) (*models.UpstreamResponse, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	payload := &models.RegisterURLPayload{
		ShortCode:       p.shortCode,
		ResponseType:    p.c2b.ResponseType,
		ConfirmationURL: p.c2b.ConfirmationURL,
		ValidationURL:   p.c2b.ValidationURL,
	}

	p.logger.Info("registering C2B urls",
		zap.String("short_code", payload.ShortCode),
		zap.String("response_type", payload.ResponseType),
		zap.String("confirmation_url", payload.ConfirmationURL),
		zap.String("validation_url", payload.ValidationURL))

	return p.client.RegisterURL(ctx, token, payload)
}

// SimulateC2B triggers a sandbox customer payment. With request validation
// on, an incomplete request fails before any upstream call.
func (p *PaymentService) SimulateC2B(ctx context.Context, req *models.PaymentRequest) (*models.UpstreamResponse, error) {
	if p.c2b.ValidateRequest {
		if err := req.Validate(); err != nil {
			return nil, err
		}
	}

	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	payload := &models.SimulateC2BPayload{
		ShortCode:     p.shortCode,
		CommandID:     p.c2b.CommandID,
		Amount:        float64(req.Amount),
		Msisdn:        req.PhoneNumber,
		BillRefNumber: req.Reference,
	}

	p.logger.Info("simulating C2B payment",
		zap.String("short_code", payload.ShortCode),
		zap.String("command_id", payload.CommandID),
		zap.Float64("amount", payload.Amount),
		zap.String("bill_ref_number", payload.BillRefNumber))

	return p.client.SimulateC2B(ctx, token, payload)
}
