package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/minbrown/retell-widget/internal/dto"
	"github.com/minbrown/retell-widget/internal/retell"
)

// WebCallStarter orchestrates contact upsert, enrichment, and call creation.
type WebCallStarter interface {
	Start(ctx context.Context, lead dto.Lead) (*retell.WebCall, error)
}

// WebCallHandler serves the widget's call-creation endpoint.
type WebCallHandler struct {
	service WebCallStarter
}

// NewWebCallHandler wires the handler.
func NewWebCallHandler(service WebCallStarter) *WebCallHandler {
	return &WebCallHandler{service: service}
}

// Create handles POST /create-web-call. The response body is the contract
// the browser widget depends on: the access token at the top level.
func (h *WebCallHandler) Create(c echo.Context) error {
	var lead dto.Lead
	if err := c.Bind(&lead); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	lead.Email = strings.TrimSpace(lead.Email)
	lead.Phone = strings.TrimSpace(lead.Phone)
	if lead.Email == "" && lead.Phone == "" {
		return Error(c, http.StatusBadRequest, "email or phone is required")
	}

	call, err := h.service.Start(c.Request().Context(), lead)
	if err != nil {
		log.Printf("webcall: call creation failed: %v", err)
		return Error(c, http.StatusBadGateway, "failed to start call")
	}

	return c.JSON(http.StatusOK, dto.WebCallResponse{
		AccessToken: call.AccessToken,
		CallID:      call.CallID,
	})
}
