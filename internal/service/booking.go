package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/minbrown/retell-widget/internal/ghl"
)

// TagBookingOnly marks contacts created inline during a booking, as opposed
// to leads that came through the web-call widget.
const TagBookingOnly = "Universal Agent Booking-Only"

// Argument aliases the voice agent's function-calling layer is known to
// emit for the booking tool.
var (
	startTimeAliases = []string{"date_time", "dateTime", "selectedSlot"}
	emailAliasesArgs = []string{"email"}
	nameAliasesArgs  = []string{"first_name", "firstName", "name"}
)

// startTimeLayouts are the timestamp shapes accepted from the agent.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// BookingCRM is the slice of the CRM the booker needs.
type BookingCRM interface {
	SearchContactByEmail(ctx context.Context, email string) (*ghl.Contact, error)
	CreateContact(ctx context.Context, fields ghl.ContactUpsert) (*ghl.Contact, error)
	CreateAppointment(ctx context.Context, appt ghl.Appointment) (string, error)
}

// BookingService creates calendar appointments on behalf of the voice
// agent: validate, resolve the contact by email, create the event.
type BookingService struct {
	crm                BookingCRM
	calendarID         string
	assignedUserID     string
	duration           time.Duration
	skipSlotValidation bool
}

// NewBookingService wires the booker for one calendar.
func NewBookingService(crm BookingCRM, calendarID, assignedUserID string, duration time.Duration, skipSlotValidation bool) *BookingService {
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	return &BookingService{
		crm:                crm,
		calendarID:         calendarID,
		assignedUserID:     assignedUserID,
		duration:           duration,
		skipSlotValidation: skipSlotValidation,
	}
}

// Book validates the tool-call arguments and creates the appointment.
// Validation failures return ValidationError before any CRM call is made;
// provider rejections come back as RejectionError with a speakable message.
// The booking itself is never retried: a retry of a possibly-applied
// booking risks a duplicate event.
func (s *BookingService) Book(ctx context.Context, args map[string]any) (string, error) {
	scopes := []map[string]any{args}
	rawStart := probeString(scopes, startTimeAliases...)
	email := NormalizeEmail(probeString(scopes, emailAliasesArgs...))
	name := strings.TrimSpace(probeString(scopes, nameAliasesArgs...))

	if email == "" || rawStart == "" {
		return "", ValidationError{Message: "missing required info: email and time"}
	}
	start, err := parseStartTime(rawStart)
	if err != nil {
		return "", ValidationError{Message: fmt.Sprintf("invalid date format: %q", rawStart)}
	}

	contactID, err := s.resolveContact(ctx, email, name)
	if err != nil {
		return "", err
	}

	title := "AI Appointment"
	if name != "" {
		title = "AI Appointment: " + name
	}

	_, err = s.crm.CreateAppointment(ctx, ghl.Appointment{
		CalendarID:               s.calendarID,
		ContactID:                contactID,
		StartTime:                start.Format(time.RFC3339),
		EndTime:                  start.Add(s.duration).Format(time.RFC3339),
		Title:                    title,
		AppointmentStatus:        "confirmed",
		AssignedUserID:           s.assignedUserID,
		IgnoreFreeSlotValidation: s.skipSlotValidation,
	})
	if err != nil {
		var apiErr *ghl.APIError
		if errors.As(err, &apiErr) {
			log.Printf("booking: calendar rejected appointment: %v", apiErr)
			message := apiErr.Message
			if message == "" {
				message = "That time is no longer available. Please pick another slot."
			}
			return "", RejectionError{Message: message}
		}
		return "", fmt.Errorf("booking: create appointment: %w", err)
	}

	return "Your appointment is confirmed!", nil
}

// resolveContact finds the contact by email, creating a minimal record when
// absent. Booking against an unresolved contact is not allowed; the event
// must land on a real CRM record.
func (s *BookingService) resolveContact(ctx context.Context, email, name string) (string, error) {
	existing, err := s.crm.SearchContactByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("booking: contact search: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := s.crm.CreateContact(ctx, ghl.ContactUpsert{
		FirstName: name,
		Email:     email,
		Tags:      []string{TagBookingOnly},
	})
	if err != nil {
		return "", fmt.Errorf("booking: contact create: %w", err)
	}
	if created == nil || created.ID == "" {
		return "", ErrContactUnresolved
	}
	return created.ID, nil
}

func parseStartTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
