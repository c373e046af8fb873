package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/minbrown/retell-widget/internal/config"
	"github.com/minbrown/retell-widget/internal/firecrawl"
	"github.com/minbrown/retell-widget/internal/ghl"
	"github.com/minbrown/retell-widget/internal/handler"
	middlewarepkg "github.com/minbrown/retell-widget/internal/middleware"
	"github.com/minbrown/retell-widget/internal/retell"
	"github.com/minbrown/retell-widget/internal/router"
	"github.com/minbrown/retell-widget/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	crm := ghl.NewClient(cfg.GHL.APIKey, cfg.GHL.LocationID,
		ghl.WithHTTPClient(httpClient),
		ghl.WithRetry(cfg.GHL.RetryAttempts, cfg.GHL.RetryBackoff),
	)
	voice := retell.NewClient(cfg.Retell.APIKey, retell.WithHTTPClient(httpClient))
	extractor := firecrawl.NewClient(cfg.Firecrawl.APIKey, firecrawl.WithHTTPClient(httpClient))

	reconciler := service.NewContactReconciler(crm, cfg.DefaultPhoneRegion)
	enricher := service.NewEnricher(extractor, cfg.EnrichTimeout)
	webCallService := service.NewWebCallService(reconciler, enricher, voice, cfg.Retell.AgentID, cfg.DefaultPhoneRegion)
	availabilityService := service.NewAvailabilityService(crm, cfg.GHL.CalendarID, cfg.LookaheadDays, cfg.SlotCap)
	bookingService := service.NewBookingService(crm, cfg.GHL.CalendarID, cfg.GHL.AssignedUserID, cfg.AppointmentDuration, cfg.SkipSlotValidation)
	postCallService := service.NewPostCallProcessor(crm, cfg.DefaultPhoneRegion)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	router.Register(e, cfg, router.Handlers{
		WebCall:      handler.NewWebCallHandler(webCallService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Booking:      handler.NewBookingHandler(bookingService),
		Webhook:      handler.NewWebhookHandler(postCallService),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
