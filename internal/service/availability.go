package service

import (
	"context"
	"sort"
	"time"

	"github.com/minbrown/retell-widget/internal/ghl"
)

// MessageSlotsFound and MessageNoSlots distinguish an empty calendar from a
// failed request: zero slots usually means staff availability is not
// configured on the calendar, and the agent should say so.
const (
	MessageSlotsFound = "Success"
	MessageNoSlots    = "No slots found. Check staff availability in the calendar."
)

// SlotSource is the slice of the CRM calendar API the reader needs.
type SlotSource interface {
	FreeSlots(ctx context.Context, calendarID string, start, end time.Time) (map[string]ghl.DaySlots, error)
}

// AvailabilityService reads free calendar slots over a bounded lookahead
// window and flattens them for verbal enumeration by the agent.
type AvailabilityService struct {
	calendar      SlotSource
	calendarID    string
	lookaheadDays int
	slotCap       int
	now           func() time.Time
}

// NewAvailabilityService wires the reader for one calendar.
func NewAvailabilityService(calendar SlotSource, calendarID string, lookaheadDays, slotCap int) *AvailabilityService {
	if lookaheadDays <= 0 {
		lookaheadDays = 14
	}
	if slotCap <= 0 {
		slotCap = 12
	}
	return &AvailabilityService{
		calendar:      calendar,
		calendarID:    calendarID,
		lookaheadDays: lookaheadDays,
		slotCap:       slotCap,
		now:           time.Now,
	}
}

// NextSlots returns the flattened, capped slot list plus a human-readable
// status message. Provider rejections propagate unchanged so the caller can
// surface the diagnostic.
func (s *AvailabilityService) NextSlots(ctx context.Context) ([]string, string, error) {
	start := s.now()
	end := start.AddDate(0, 0, s.lookaheadDays)

	days, err := s.calendar.FreeSlots(ctx, s.calendarID, start, end)
	if err != nil {
		return nil, "", err
	}

	slots := flattenSlots(days, s.slotCap)
	if len(slots) == 0 {
		return []string{}, MessageNoSlots, nil
	}
	return slots, MessageSlotsFound, nil
}

// flattenSlots orders days ascending by key, keeps intra-day order as
// delivered, and truncates to cap.
func flattenSlots(days map[string]ghl.DaySlots, limit int) []string {
	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var slots []string
	for _, key := range keys {
		for _, slot := range days[key].Slots {
			if len(slots) >= limit {
				return slots
			}
			slots = append(slots, slot)
		}
	}
	return slots
}
