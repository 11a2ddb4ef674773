package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const registerURLFailed = "Failed to register URL"

func (h *Handlers) RegisterURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.paymentService.RegisterURL(ctx)
	if err != nil {
		h.logger.Error("error registering URL",
			zap.String("request_id", middleware.GetReqID(ctx)),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, registerURLFailed)
		return
	}

	h.forward(w, resp)
}
