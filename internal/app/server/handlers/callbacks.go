package handlers

import (
	"francoggm/mpesa-c2b-relay/internal/config"
	"francoggm/mpesa-c2b-relay/internal/models"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Daraja retries callbacks that are not answered with 200, so both receivers
// acknowledge whatever they are sent.

func (h *Handlers) Confirmation(w http.ResponseWriter, r *http.Request) {
	h.logCallback(r, "confirmation")
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Confirmation received successfully"})
}

func (h *Handlers) Validation(w http.ResponseWriter, r *http.Request) {
	h.logCallback(r, "validation")

	if h.cfg.C2B.ValidationResponseMode == config.ValidationModeMessage {
		h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Validation successful"})
		return
	}

	h.writeJSON(w, http.StatusOK, models.ValidationAck{ResultCode: 0, ResultDesc: "Success"})
}

func (h *Handlers) logCallback(r *http.Request, kind string) {
	fields := []zap.Field{
		zap.String("callback", kind),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read callback body", append(fields, zap.Error(err))...)
		return
	}

	var callback models.C2BCallback
	if err := sonic.Unmarshal(body, &callback); err != nil {
		h.logger.Warn("callback body is not a C2B payload",
			append(fields, zap.ByteString("raw_body", body), zap.Error(err))...)
		return
	}

	h.logger.Info("callback received", append(fields,
		zap.String("trans_id", callback.TransID),
		zap.String("transaction_type", callback.TransactionType),
		zap.String("trans_amount", callback.TransAmount),
		zap.String("business_short_code", callback.BusinessShortCode),
		zap.String("bill_ref_number", callback.BillRefNumber),
		zap.String("trans_time", callback.TransTime))...)

	h.logger.Debug("callback payload", append(fields, zap.ByteString("raw_body", body))...)
}
