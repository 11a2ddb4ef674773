package handlers

import (
	"errors"
	"francoggm/mpesa-c2b-relay/internal/models"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	c2bPaymentFailed    = "Failed to simulate C2B payment"
	missingPaymentField = "Missing required fields: amount, phoneNumber, reference"
	invalidRequestBody  = "Invalid request body"
)

func (h *Handlers) SimulateC2BPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read payment request", zap.String("request_id", reqID), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, invalidRequestBody)
		return
	}

	var payment models.PaymentRequest
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, &payment); err != nil {
			h.logger.Warn("invalid payment request body", zap.String("request_id", reqID), zap.Error(err))
			h.writeError(w, http.StatusBadRequest, invalidRequestBody)
			return
		}
	}

	resp, err := h.paymentService.SimulateC2B(ctx, &payment)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			h.logger.Warn("invalid payment request",
				zap.String("request_id", reqID),
				zap.String("reference", payment.Reference),
				zap.Error(err))
			h.writeError(w, http.StatusBadRequest, missingPaymentField)
			return
		}

		h.logger.Error("error simulating C2B payment",
			zap.String("request_id", reqID),
			zap.String("reference", payment.Reference),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, c2bPaymentFailed)
		return
	}

	h.forward(w, resp)
}
