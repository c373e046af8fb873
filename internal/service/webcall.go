package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/minbrown/retell-widget/internal/dto"
	"github.com/minbrown/retell-widget/internal/retell"
)

// ContactResolver resolves a lead to a CRM contact ID ("" when unlinked).
type ContactResolver interface {
	Resolve(ctx context.Context, lead dto.Lead) string
}

// ContextEnricher produces the agent's business-context string.
type ContextEnricher interface {
	Enrich(ctx context.Context, website string) string
}

// CallCreator starts a voice session with the provider.
type CallCreator interface {
	CreateWebCall(ctx context.Context, req retell.WebCallRequest) (*retell.WebCall, error)
}

// WebCallService orchestrates one call-creation request: CRM upsert and
// website enrichment run concurrently, then the voice session is created
// with both results baked into its metadata and prompt variables.
type WebCallService struct {
	reconciler ContactResolver
	enricher   ContextEnricher
	voice      CallCreator
	agentID    string
	region     string
}

// NewWebCallService wires the web-call orchestration.
func NewWebCallService(reconciler ContactResolver, enricher ContextEnricher, voice CallCreator, agentID, region string) *WebCallService {
	return &WebCallService{
		reconciler: reconciler,
		enricher:   enricher,
		voice:      voice,
		agentID:    agentID,
		region:     region,
	}
}

// Start creates the voice session for the lead and returns the provider's
// session handle. Reconciliation and enrichment are both best-effort; only
// the voice provider call itself can fail the request. The metadata bag is
// the sole channel linking the post-call webhook back to the contact.
func (s *WebCallService) Start(ctx context.Context, lead dto.Lead) (*retell.WebCall, error) {
	var contactID, businessContext string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contactID = s.reconciler.Resolve(gctx, lead)
		return nil
	})
	g.Go(func() error {
		businessContext = s.enricher.Enrich(gctx, lead.Website)
		return nil
	})
	// Neither branch returns an error; Wait only joins the goroutines.
	_ = g.Wait()

	phone := NormalizePhone(lead.Phone, s.region)
	if phone == "" {
		phone = lead.Phone
	}

	return s.voice.CreateWebCall(ctx, retell.WebCallRequest{
		AgentID: s.agentID,
		Metadata: map[string]any{
			"ghl_contact_id": contactID,
			"phone":          phone,
			"website":        lead.Website,
		},
		DynamicVariables: map[string]string{
			"contact.first_name":       lead.FirstName,
			"contact.company_name":     lead.BusinessName,
			"contact.business_context": businessContext,
		},
	})
}
