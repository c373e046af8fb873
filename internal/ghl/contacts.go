package ghl

import (
	"context"
	"net/http"
	"net/url"
)

// Contact is the CRM's view of a person.
type Contact struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	Website     string `json:"website"`
}

// CustomField is one named field value attached to a contact.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"field_value"`
}

// ContactUpsert carries the writable contact fields. Empty strings are
// omitted from the wire payload so partial updates never blank a field.
type ContactUpsert struct {
	FirstName    string        `json:"firstName,omitempty"`
	LastName     string        `json:"lastName,omitempty"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	CompanyName  string        `json:"companyName,omitempty"`
	Website      string        `json:"website,omitempty"`
	LocationID   string        `json:"locationId,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	CustomFields []CustomField `json:"customFields,omitempty"`
}

type contactEnvelope struct {
	Contact *Contact `json:"contact"`
}

// SearchContactByEmail looks up a contact by email. A nil contact with a
// nil error means no match.
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*Contact, error) {
	return c.searchDuplicate(ctx, url.Values{"email": {email}})
}

// SearchContactByPhone looks up a contact by E.164 phone number. A nil
// contact with a nil error means no match.
func (c *Client) SearchContactByPhone(ctx context.Context, phone string) (*Contact, error) {
	return c.searchDuplicate(ctx, url.Values{"number": {phone}})
}

func (c *Client) searchDuplicate(ctx context.Context, query url.Values) (*Contact, error) {
	query.Set("locationId", c.locationID)

	var envelope contactEnvelope
	if err := c.do(ctx, http.MethodGet, "/contacts/search/duplicate", versionContacts, query, nil, &envelope); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if envelope.Contact == nil || envelope.Contact.ID == "" {
		return nil, nil
	}
	return envelope.Contact, nil
}

// CreateContact registers a new contact in the configured location.
func (c *Client) CreateContact(ctx context.Context, fields ContactUpsert) (*Contact, error) {
	fields.LocationID = c.locationID

	var envelope contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/contacts/", versionContacts, nil, fields, &envelope); err != nil {
		return nil, err
	}
	return envelope.Contact, nil
}

// UpdateContact applies a partial update to an existing contact. Only the
// non-empty fields of the upsert are sent.
func (c *Client) UpdateContact(ctx context.Context, contactID string, fields ContactUpsert) (*Contact, error) {
	var envelope contactEnvelope
	if err := c.do(ctx, http.MethodPut, "/contacts/"+contactID, versionContacts, nil, fields, &envelope); err != nil {
		return nil, err
	}
	return envelope.Contact, nil
}

// CreateNote appends a free-text note to a contact's timeline.
func (c *Client) CreateNote(ctx context.Context, contactID, body string) error {
	payload := map[string]string{"body": body}
	return c.do(ctx, http.MethodPost, "/contacts/"+contactID+"/notes", versionContacts, nil, payload, nil)
}

// AddTags attaches tags to a contact. Existing tags are preserved.
func (c *Client) AddTags(ctx context.Context, contactID string, tags []string) error {
	payload := map[string][]string{"tags": tags}
	return c.do(ctx, http.MethodPost, "/contacts/"+contactID+"/tags", versionContacts, nil, payload, nil)
}
