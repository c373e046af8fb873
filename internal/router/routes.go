package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbrown/retell-widget/internal/config"
	"github.com/minbrown/retell-widget/internal/handler"
	middlewarepkg "github.com/minbrown/retell-widget/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	WebCall      *handler.WebCallHandler
	Availability *handler.AvailabilityHandler
	Booking      *handler.BookingHandler
	Webhook      *handler.WebhookHandler
}

// Register wires all HTTP routes for the service.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/create-web-call", handlers.WebCall.Create, middlewarepkg.CallRateLimiter(cfg.RateLimitCall))
	e.POST("/check-availability", handlers.Availability.Check)
	e.POST("/book-appointment", handlers.Booking.Book)
	e.POST("/retell-post-call", handlers.Webhook.Receive)

	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}
}
