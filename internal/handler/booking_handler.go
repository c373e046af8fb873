package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbrown/retell-widget/internal/dto"
	"github.com/minbrown/retell-widget/internal/service"
)

// AppointmentBooker creates a calendar event from tool-call arguments.
type AppointmentBooker interface {
	Book(ctx context.Context, args map[string]any) (string, error)
}

// BookingHandler serves the agent's booking tool call.
type BookingHandler struct {
	service AppointmentBooker
}

// NewBookingHandler wires the handler.
func NewBookingHandler(service AppointmentBooker) *BookingHandler {
	return &BookingHandler{service: service}
}

// Book handles POST /book-appointment. Error messages on the 4xx paths are
// written to be read back verbally by the agent.
func (h *BookingHandler) Book(c echo.Context) error {
	var req dto.BookingRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	confirmation, err := h.service.Book(c.Request().Context(), req.Args)
	if err != nil {
		var validationErr service.ValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Message)
		}
		var rejectionErr service.RejectionError
		if errors.As(err, &rejectionErr) {
			return Error(c, http.StatusBadRequest, rejectionErr.Message)
		}
		if errors.Is(err, service.ErrContactUnresolved) {
			return Error(c, http.StatusBadRequest, service.ErrContactUnresolved.Error())
		}
		log.Printf("booking: %v", err)
		return Error(c, http.StatusInternalServerError, "internal server error")
	}

	return Success(c, http.StatusOK, confirmation, nil)
}
