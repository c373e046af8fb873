package service

import (
	"context"
	"time"

	"github.com/minbrown/retell-widget/internal/ghl"
)

// crmStub satisfies every CRM-facing interface in this package and records
// the calls it receives.
type crmStub struct {
	contactsByEmail map[string]*ghl.Contact
	contactsByPhone map[string]*ghl.Contact

	searchEmailCalls []string
	searchPhoneCalls []string
	createCalls      []ghl.ContactUpsert
	updateCalls      []struct {
		ID     string
		Fields ghl.ContactUpsert
	}
	noteCalls []struct {
		ID   string
		Body string
	}
	tagCalls []struct {
		ID   string
		Tags []string
	}
	appointmentCalls []ghl.Appointment

	searchErr      error
	createErr      error
	updateErr      error
	noteErr        error
	tagErr         error
	appointmentErr error

	createdID     string
	appointmentID string

	freeSlots    map[string]ghl.DaySlots
	freeSlotsErr error
}

func newCRMStub() *crmStub {
	return &crmStub{
		contactsByEmail: map[string]*ghl.Contact{},
		contactsByPhone: map[string]*ghl.Contact{},
		createdID:       "created-1",
		appointmentID:   "appt-1",
	}
}

func (s *crmStub) SearchContactByEmail(ctx context.Context, email string) (*ghl.Contact, error) {
	s.searchEmailCalls = append(s.searchEmailCalls, email)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.contactsByEmail[email], nil
}

func (s *crmStub) SearchContactByPhone(ctx context.Context, phone string) (*ghl.Contact, error) {
	s.searchPhoneCalls = append(s.searchPhoneCalls, phone)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.contactsByPhone[phone], nil
}

func (s *crmStub) CreateContact(ctx context.Context, fields ghl.ContactUpsert) (*ghl.Contact, error) {
	s.createCalls = append(s.createCalls, fields)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &ghl.Contact{
		ID:        s.createdID,
		FirstName: fields.FirstName,
		Email:     fields.Email,
		Phone:     fields.Phone,
	}, nil
}

func (s *crmStub) UpdateContact(ctx context.Context, contactID string, fields ghl.ContactUpsert) (*ghl.Contact, error) {
	s.updateCalls = append(s.updateCalls, struct {
		ID     string
		Fields ghl.ContactUpsert
	}{contactID, fields})
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &ghl.Contact{ID: contactID}, nil
}

func (s *crmStub) CreateNote(ctx context.Context, contactID, body string) error {
	s.noteCalls = append(s.noteCalls, struct {
		ID   string
		Body string
	}{contactID, body})
	return s.noteErr
}

func (s *crmStub) AddTags(ctx context.Context, contactID string, tags []string) error {
	s.tagCalls = append(s.tagCalls, struct {
		ID   string
		Tags []string
	}{contactID, tags})
	return s.tagErr
}

func (s *crmStub) CreateAppointment(ctx context.Context, appt ghl.Appointment) (string, error) {
	s.appointmentCalls = append(s.appointmentCalls, appt)
	if s.appointmentErr != nil {
		return "", s.appointmentErr
	}
	return s.appointmentID, nil
}

func (s *crmStub) FreeSlots(ctx context.Context, calendarID string, start, end time.Time) (map[string]ghl.DaySlots, error) {
	if s.freeSlotsErr != nil {
		return nil, s.freeSlotsErr
	}
	return s.freeSlots, nil
}

func (s *crmStub) totalCalls() int {
	return len(s.searchEmailCalls) + len(s.searchPhoneCalls) + len(s.createCalls) +
		len(s.updateCalls) + len(s.noteCalls) + len(s.tagCalls) + len(s.appointmentCalls)
}
