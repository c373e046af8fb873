package ghl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DaySlots is the list of free slot start times for one calendar day.
type DaySlots struct {
	Slots []string `json:"slots"`
}

// Appointment describes one calendar event to create.
type Appointment struct {
	CalendarID               string `json:"calendarId"`
	LocationID               string `json:"locationId"`
	ContactID                string `json:"contactId"`
	StartTime                string `json:"startTime"`
	EndTime                  string `json:"endTime"`
	Title                    string `json:"title"`
	AppointmentStatus        string `json:"appointmentStatus"`
	AssignedUserID           string `json:"assignedUserId,omitempty"`
	IgnoreFreeSlotValidation bool   `json:"ignoreFreeSlotValidation"`
}

// FreeSlots fetches the free slots for a calendar over [start, end).
// The response maps day strings to per-day slot lists; keys that are not
// day objects (the API mixes in bookkeeping fields) are skipped.
func (c *Client) FreeSlots(ctx context.Context, calendarID string, start, end time.Time) (map[string]DaySlots, error) {
	query := url.Values{
		"startDate": {strconv.FormatInt(start.UnixMilli(), 10)},
		"endDate":   {strconv.FormatInt(end.UnixMilli(), 10)},
	}

	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/calendars/"+calendarID+"/free-slots", versionContacts, query, nil, &raw); err != nil {
		return nil, err
	}

	days := make(map[string]DaySlots, len(raw))
	for key, value := range raw {
		var day DaySlots
		if err := json.Unmarshal(value, &day); err != nil {
			continue
		}
		if day.Slots != nil {
			days[key] = day
		}
	}
	return days, nil
}

// CreateAppointment books one event on the calendar. Rejections come back
// as *APIError with the provider's message intact.
func (c *Client) CreateAppointment(ctx context.Context, appt Appointment) (string, error) {
	appt.LocationID = c.locationID

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/calendars/events/appointments", versionCalendars, nil, appt, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}
