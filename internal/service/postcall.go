package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/minbrown/retell-widget/internal/dto"
	"github.com/minbrown/retell-widget/internal/ghl"
)

// EventCallAnalyzed is the only webhook event this system acts on. Every
// other event type is acknowledged untouched so the provider never retries
// events we intentionally skip.
const EventCallAnalyzed = "call_analyzed"

// Tags written back after a completed call.
const (
	TagCallCompleted     = "AI Call Completed"
	TagFollowUpPromised  = "Follow Up Promised"
	followUpMarkerDashed = "follow-up"
	followUpMarkerSpaced = "follow up"
)

// Alias lists per logical analysis field, probed in order across the
// custom-analysis, analysis, and top-level call scopes. Payload versions
// disagree on naming; first present non-null wins.
var (
	summaryAliases   = []string{"call_summary", "summary"}
	sentimentAliases = []string{"user_sentiment", "sentiment"}
	outcomeAliases   = []string{"call_outcome", "outcome", "call_completion"}
	successAliases   = []string{"call_successful", "success"}
	recordingAliases = []string{"recording_url", "recording"}
	firstNameAliases = []string{"customer_first_name", "customer_name", "first_name"}
	emailAliases     = []string{"customer_email", "email"}
)

// Custom-field keys updated on the contact after each analyzed call.
const (
	FieldLastCallSummary   = "last_call_summary"
	FieldLastCallSentiment = "last_call_sentiment"
	FieldLastCallOutcome   = "last_call_outcome"
	FieldLastCallRecording = "last_call_recording"
	FieldLastCallSuccess   = "last_call_successful"
)

// PostCallCRM is the slice of the CRM the reconciler needs.
type PostCallCRM interface {
	SearchContactByPhone(ctx context.Context, phone string) (*ghl.Contact, error)
	UpdateContact(ctx context.Context, contactID string, fields ghl.ContactUpsert) (*ghl.Contact, error)
	CreateNote(ctx context.Context, contactID, body string) error
	AddTags(ctx context.Context, contactID string, tags []string) error
}

// CallAnalysis is the normalized view of one analyzed call.
type CallAnalysis struct {
	CallID       string
	Summary      string
	Sentiment    string
	Outcome      string
	Successful   bool
	HasSuccess   bool
	RecordingURL string
	FirstName    string
	Email        string
}

// PostCallProcessor reconciles the provider's post-call analysis back into
// the CRM as a note, custom-field update, and tags.
type PostCallProcessor struct {
	crm    PostCallCRM
	region string
}

// NewPostCallProcessor wires the reconciler.
func NewPostCallProcessor(crm PostCallCRM, region string) *PostCallProcessor {
	if region == "" {
		region = defaultPhoneRegion
	}
	return &PostCallProcessor{crm: crm, region: region}
}

// Process handles one webhook delivery. Non-analysis events are a no-op.
// Each CRM side effect is attempted independently; the combined error is
// returned for logging only, the webhook is acknowledged regardless.
func (p *PostCallProcessor) Process(ctx context.Context, hook dto.PostCallWebhook) error {
	if hook.Event != EventCallAnalyzed || hook.Call == nil {
		return nil
	}

	analysis := ExtractAnalysis(hook.Call)

	contactID, err := p.resolveContact(ctx, hook.Call)
	if err != nil {
		return fmt.Errorf("postcall: resolve contact for call %s: %w", analysis.CallID, err)
	}
	if contactID == "" {
		return fmt.Errorf("postcall: no contact linkage for call %s", analysis.CallID)
	}

	var errs []error
	if err := p.writeNote(ctx, contactID, analysis); err != nil {
		errs = append(errs, fmt.Errorf("note: %w", err))
	}
	if err := p.updateFields(ctx, contactID, analysis); err != nil {
		errs = append(errs, fmt.Errorf("custom fields: %w", err))
	}
	if err := p.writeTags(ctx, contactID, analysis); err != nil {
		errs = append(errs, fmt.Errorf("tags: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("postcall: contact %s: %w", contactID, errors.Join(errs...))
	}

	log.Printf("postcall: reconciled call %s into contact %s", analysis.CallID, contactID)
	return nil
}

// ExtractAnalysis pulls the analysis fields out of the raw call object,
// tolerating the known naming variants.
func ExtractAnalysis(call map[string]any) CallAnalysis {
	callAnalysis := nestedMap(call, "call_analysis")
	custom := nestedMap(callAnalysis, "custom_analysis_data")
	scopes := []map[string]any{custom, callAnalysis, call}

	successful, hasSuccess := probeBool(scopes, successAliases...)
	return CallAnalysis{
		CallID:       probeString([]map[string]any{call}, "call_id"),
		Summary:      probeString(scopes, summaryAliases...),
		Sentiment:    probeString(scopes, sentimentAliases...),
		Outcome:      probeString(scopes, outcomeAliases...),
		Successful:   successful,
		HasSuccess:   hasSuccess,
		RecordingURL: probeString(scopes, recordingAliases...),
		FirstName:    probeString(scopes, firstNameAliases...),
		Email:        NormalizeEmail(probeString(scopes, emailAliases...)),
	}
}

// resolveContact prefers the metadata round-tripped at session creation and
// falls back to an identity search by phone. The webhook may arrive before
// the creation request finishes, so nothing here depends on in-memory state.
func (p *PostCallProcessor) resolveContact(ctx context.Context, call map[string]any) (string, error) {
	metadata := nestedMap(call, "metadata")
	if id := probeString([]map[string]any{metadata}, "ghl_contact_id", "contact_id"); id != "" {
		return id, nil
	}

	phone := probeString([]map[string]any{metadata, call}, "phone", "from_number")
	if normalized := NormalizePhone(phone, p.region); normalized != "" {
		phone = normalized
	}
	if phone == "" {
		return "", nil
	}

	contact, err := p.crm.SearchContactByPhone(ctx, phone)
	if err != nil {
		return "", err
	}
	if contact == nil {
		return "", nil
	}
	return contact.ID, nil
}

func (p *PostCallProcessor) writeNote(ctx context.Context, contactID string, analysis CallAnalysis) error {
	lines := []string{"Call Summary: " + valueOrUnknown(analysis.Summary)}
	if analysis.Sentiment != "" {
		lines = append(lines, "Sentiment: "+analysis.Sentiment)
	}
	if analysis.Outcome != "" {
		lines = append(lines, "Outcome: "+analysis.Outcome)
	}
	if analysis.RecordingURL != "" {
		lines = append(lines, "Recording: "+analysis.RecordingURL)
	}
	return p.crm.CreateNote(ctx, contactID, strings.Join(lines, "\n"))
}

func (p *PostCallProcessor) updateFields(ctx context.Context, contactID string, analysis CallAnalysis) error {
	var fields []ghl.CustomField
	if analysis.Summary != "" {
		fields = append(fields, ghl.CustomField{Key: FieldLastCallSummary, Value: analysis.Summary})
	}
	if analysis.Sentiment != "" {
		fields = append(fields, ghl.CustomField{Key: FieldLastCallSentiment, Value: analysis.Sentiment})
	}
	if analysis.Outcome != "" {
		fields = append(fields, ghl.CustomField{Key: FieldLastCallOutcome, Value: analysis.Outcome})
	}
	if analysis.RecordingURL != "" {
		fields = append(fields, ghl.CustomField{Key: FieldLastCallRecording, Value: analysis.RecordingURL})
	}
	if analysis.HasSuccess {
		fields = append(fields, ghl.CustomField{Key: FieldLastCallSuccess, Value: fmt.Sprintf("%t", analysis.Successful)})
	}

	// Identity corrections the analysis discovered mid-conversation ride
	// along with the custom-field update.
	if len(fields) == 0 && analysis.FirstName == "" && analysis.Email == "" {
		return nil
	}

	_, err := p.crm.UpdateContact(ctx, contactID, ghl.ContactUpsert{
		FirstName:    analysis.FirstName,
		Email:        analysis.Email,
		CustomFields: fields,
	})
	return err
}

func (p *PostCallProcessor) writeTags(ctx context.Context, contactID string, analysis CallAnalysis) error {
	tags := []string{TagCallCompleted}
	summary := strings.ToLower(analysis.Summary)
	if strings.Contains(summary, followUpMarkerDashed) || strings.Contains(summary, followUpMarkerSpaced) {
		tags = append(tags, TagFollowUpPromised)
	}
	return p.crm.AddTags(ctx, contactID, tags)
}

func valueOrUnknown(value string) string {
	if value == "" {
		return "(not captured)"
	}
	return value
}
