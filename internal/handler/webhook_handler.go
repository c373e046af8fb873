package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbrown/retell-widget/internal/dto"
)

// PostCallReconciler consumes one post-call analysis delivery.
type PostCallReconciler interface {
	Process(ctx context.Context, hook dto.PostCallWebhook) error
}

// WebhookHandler receives the voice provider's post-call events.
type WebhookHandler struct {
	service PostCallReconciler
}

// NewWebhookHandler wires the handler.
func NewWebhookHandler(service PostCallReconciler) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Receive handles POST /retell-post-call. The response is always a 200
// so the provider never re-delivers; failures are logged, not surfaced.
func (h *WebhookHandler) Receive(c echo.Context) error {
	var hook dto.PostCallWebhook
	if err := c.Bind(&hook); err != nil {
		log.Printf("webhook: undecodable payload: %v", err)
		return Success(c, http.StatusOK, "acknowledged", nil)
	}

	if err := h.service.Process(c.Request().Context(), hook); err != nil {
		log.Printf("webhook: %v", err)
	}
	return Success(c, http.StatusOK, "acknowledged", nil)
}
