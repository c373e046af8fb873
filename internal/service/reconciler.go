package service

import (
	"context"
	"log"
	"strings"

	"github.com/minbrown/retell-widget/internal/dto"
	"github.com/minbrown/retell-widget/internal/ghl"
)

// TagLead marks contacts acquired through the web-call widget.
const TagLead = "Universal Agent Lead"

// ContactDirectory is the slice of the CRM the reconciler needs.
type ContactDirectory interface {
	SearchContactByEmail(ctx context.Context, email string) (*ghl.Contact, error)
	SearchContactByPhone(ctx context.Context, phone string) (*ghl.Contact, error)
	CreateContact(ctx context.Context, fields ghl.ContactUpsert) (*ghl.Contact, error)
	UpdateContact(ctx context.Context, contactID string, fields ghl.ContactUpsert) (*ghl.Contact, error)
}

// ContactReconciler idempotently maps a lead identity onto one CRM contact:
// find by email or normalized phone, then update changed fields or create.
type ContactReconciler struct {
	crm    ContactDirectory
	region string
}

// NewContactReconciler wires a reconciler for the given default phone region.
func NewContactReconciler(crm ContactDirectory, region string) *ContactReconciler {
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactReconciler{crm: crm, region: region}
}

// Resolve returns the CRM contact ID for the lead, creating or updating the
// record as needed. CRM failures are logged and yield an empty ID: losing
// the CRM link must never block starting the call.
func (r *ContactReconciler) Resolve(ctx context.Context, lead dto.Lead) string {
	email := NormalizeEmail(lead.Email)
	phone := NormalizePhone(lead.Phone, r.region)
	if email == "" && phone == "" {
		log.Printf("reconciler: lead has no usable identity key, skipping CRM link")
		return ""
	}

	// Email and phone search are mutually exclusive: one identity key per
	// lookup, email preferred when both are present.
	var existing *ghl.Contact
	var err error
	if email != "" {
		existing, err = r.crm.SearchContactByEmail(ctx, email)
	} else {
		existing, err = r.crm.SearchContactByPhone(ctx, phone)
	}
	if err != nil {
		log.Printf("reconciler: contact search failed: %v", err)
		return ""
	}

	if existing != nil {
		diff, changed := diffContact(existing, lead, email, phone)
		if changed {
			if _, err := r.crm.UpdateContact(ctx, existing.ID, diff); err != nil {
				log.Printf("reconciler: contact update failed for %s: %v", existing.ID, err)
			}
		}
		return existing.ID
	}

	created, err := r.crm.CreateContact(ctx, ghl.ContactUpsert{
		FirstName:   strings.TrimSpace(lead.FirstName),
		LastName:    strings.TrimSpace(lead.LastName),
		Email:       email,
		Phone:       phone,
		CompanyName: strings.TrimSpace(lead.BusinessName),
		Website:     strings.TrimSpace(lead.Website),
		Tags:        []string{TagLead},
	})
	if err != nil || created == nil || created.ID == "" {
		log.Printf("reconciler: contact create failed: %v", err)
		return ""
	}
	return created.ID
}

// diffContact builds a partial update containing only fields the lead
// supplies that differ from the stored record. Empty incoming values never
// overwrite existing data.
func diffContact(existing *ghl.Contact, lead dto.Lead, email, phone string) (ghl.ContactUpsert, bool) {
	var diff ghl.ContactUpsert
	if v := strings.TrimSpace(lead.FirstName); v != "" && v != existing.FirstName {
		diff.FirstName = v
	}
	if v := strings.TrimSpace(lead.LastName); v != "" && v != existing.LastName {
		diff.LastName = v
	}
	if email != "" && !strings.EqualFold(email, existing.Email) {
		diff.Email = email
	}
	if phone != "" && phone != existing.Phone {
		diff.Phone = phone
	}
	if v := strings.TrimSpace(lead.BusinessName); v != "" && v != existing.CompanyName {
		diff.CompanyName = v
	}
	if v := strings.TrimSpace(lead.Website); v != "" && v != existing.Website {
		diff.Website = v
	}
	changed := diff.FirstName != "" || diff.LastName != "" || diff.Email != "" ||
		diff.Phone != "" || diff.CompanyName != "" || diff.Website != ""
	return diff, changed
}
