package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minbrown/retell-widget/internal/firecrawl"
)

type extractorStub struct {
	mu sync.Mutex

	links   []string
	mapErr  error
	pages   map[string]*firecrawl.PageFields
	scraped []string

	scrapeDelay time.Duration
	scrapeErr   error
}

func (s *extractorStub) Map(ctx context.Context, siteURL, search string, limit int) ([]string, error) {
	if s.mapErr != nil {
		return nil, s.mapErr
	}
	return s.links, nil
}

func (s *extractorStub) Scrape(ctx context.Context, pageURL string) (*firecrawl.PageFields, error) {
	if s.scrapeDelay > 0 {
		select {
		case <-time.After(s.scrapeDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	s.scraped = append(s.scraped, pageURL)
	s.mu.Unlock()
	if s.scrapeErr != nil {
		return nil, s.scrapeErr
	}
	if fields, ok := s.pages[pageURL]; ok {
		return fields, nil
	}
	return nil, errors.New("no content")
}

func TestEnricherNoWebsite(t *testing.T) {
	enricher := NewEnricher(&extractorStub{}, time.Second)
	if got := enricher.Enrich(context.Background(), "  "); got != FallbackContext {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestEnricherMergesAcrossPages(t *testing.T) {
	stub := &extractorStub{
		links: []string{"https://x.example/services", "https://x.example/pricing"},
		pages: map[string]*firecrawl.PageFields{
			"https://x.example":          {About: "Family plumbing business."},
			"https://x.example/services": {Services: "Drain cleaning, repiping"},
			"https://x.example/pricing":  {Pricing: "$99 service call"},
		},
	}
	enricher := NewEnricher(stub, time.Second)

	got := enricher.Enrich(context.Background(), "https://x.example")
	if !strings.Contains(got, "About: Family plumbing business.") {
		t.Fatalf("missing about section: %q", got)
	}
	if !strings.Contains(got, "Services: Drain cleaning, repiping") {
		t.Fatalf("missing services section: %q", got)
	}
	if !strings.Contains(got, "Pricing: $99 service call") {
		t.Fatalf("missing pricing section: %q", got)
	}
	if strings.Contains(got, "Hours:") {
		t.Fatalf("absent fields must be omitted entirely: %q", got)
	}
}

func TestEnricherFieldOrderAndConcatenation(t *testing.T) {
	stub := &extractorStub{
		links: []string{"https://x.example/about"},
		pages: map[string]*firecrawl.PageFields{
			"https://x.example":       {Services: "Plumbing", Hours: "Mon-Fri 9-5"},
			"https://x.example/about": {Services: "Emergency callouts"},
		},
	}
	enricher := NewEnricher(stub, time.Second)

	got := enricher.Enrich(context.Background(), "https://x.example")
	services := "Services: Plumbing\nEmergency callouts"
	if !strings.Contains(got, services) {
		t.Fatalf("expected newline-concatenated services, got %q", got)
	}
	if strings.Index(got, "Services:") > strings.Index(got, "Hours:") {
		t.Fatalf("expected stable section order, got %q", got)
	}
}

func TestEnricherCandidateCapAndDedupe(t *testing.T) {
	stub := &extractorStub{
		links: []string{
			"https://x.example/",         // dup of root
			"https://x.example/services", // kept
			"https://x.example/services", // dup
			"https://x.example/pricing",  // kept
			"https://x.example/about",    // over cap
		},
		pages: map[string]*firecrawl.PageFields{},
	}
	enricher := NewEnricher(stub, time.Second)

	_ = enricher.Enrich(context.Background(), "https://x.example")
	if len(stub.scraped) != 3 {
		t.Fatalf("expected 3 scrapes (root + 2 discovered), got %v", stub.scraped)
	}
	for _, page := range stub.scraped {
		if page == "https://x.example/about" {
			t.Fatalf("candidate cap exceeded: %v", stub.scraped)
		}
	}
}

func TestEnricherAllScrapesFail(t *testing.T) {
	stub := &extractorStub{
		links:     []string{"https://x.example/services"},
		scrapeErr: errors.New("blocked"),
	}
	enricher := NewEnricher(stub, time.Second)

	if got := enricher.Enrich(context.Background(), "https://x.example"); got != FallbackContext {
		t.Fatalf("expected fallback when every scrape fails, got %q", got)
	}
}

func TestEnricherMapFailureDegradesToRoot(t *testing.T) {
	stub := &extractorStub{
		mapErr: errors.New("map unavailable"),
		pages: map[string]*firecrawl.PageFields{
			"https://x.example": {About: "Still scraped."},
		},
	}
	enricher := NewEnricher(stub, time.Second)

	got := enricher.Enrich(context.Background(), "https://x.example")
	if !strings.Contains(got, "Still scraped.") {
		t.Fatalf("expected root scrape despite map failure, got %q", got)
	}
}

func TestEnricherDeadlineDiscardsPartials(t *testing.T) {
	stub := &extractorStub{
		scrapeDelay: 200 * time.Millisecond,
		pages: map[string]*firecrawl.PageFields{
			"https://x.example": {About: "Too late."},
		},
	}
	enricher := NewEnricher(stub, 20*time.Millisecond)

	start := time.Now()
	got := enricher.Enrich(context.Background(), "https://x.example")
	if got != FallbackContext {
		t.Fatalf("expected fallback on deadline, got %q", got)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("enrichment did not respect its deadline")
	}
}
