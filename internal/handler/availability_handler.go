package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbrown/retell-widget/internal/dto"
	"github.com/minbrown/retell-widget/internal/ghl"
)

// SlotReader lists upcoming free calendar slots.
type SlotReader interface {
	NextSlots(ctx context.Context) ([]string, string, error)
}

// AvailabilityHandler serves the agent's availability tool call.
type AvailabilityHandler struct {
	service SlotReader
}

// NewAvailabilityHandler wires the handler.
func NewAvailabilityHandler(service SlotReader) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Check handles POST /check-availability. Calendar rejections are a
// diagnostic surface: the provider's status code and body pass through so
// a misconfigured calendar is visible from the outside.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	slots, message, err := h.service.NextSlots(c.Request().Context())
	if err != nil {
		var apiErr *ghl.APIError
		if errors.As(err, &apiErr) {
			log.Printf("availability: calendar query rejected: %v", apiErr)
			details := any(apiErr.Body)
			if json.Valid([]byte(apiErr.Body)) {
				details = json.RawMessage(apiErr.Body)
			}
			return c.JSON(apiErr.StatusCode, map[string]any{
				"error":   "calendar sync error",
				"details": details,
			})
		}
		log.Printf("availability: calendar query failed: %v", err)
		return Error(c, http.StatusInternalServerError, "failed to fetch availability")
	}

	return c.JSON(http.StatusOK, dto.AvailabilityResponse{
		AvailableSlots: slots,
		Message:        message,
	})
}
