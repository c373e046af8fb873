package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/minbrown/retell-widget/internal/firecrawl"
)

// FallbackContext is handed to the agent whenever enrichment cannot
// produce anything better. The enricher never returns an empty string.
const FallbackContext = "General professional assistance."

const (
	maxCandidatePages = 3
	discoverySearch   = "services pricing about"
)

// Extractor is the slice of the content-extraction API the enricher needs.
type Extractor interface {
	Map(ctx context.Context, siteURL, search string, limit int) ([]string, error)
	Scrape(ctx context.Context, pageURL string) (*firecrawl.PageFields, error)
}

// Enricher derives a short business-context string from a lead's website.
// The whole operation runs under one hard deadline; on expiry partial
// results are discarded so the agent never sees a half-merged fragment.
type Enricher struct {
	extractor Extractor
	timeout   time.Duration
}

// NewEnricher wires an enricher with the given wall-clock budget.
func NewEnricher(extractor Extractor, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Enricher{extractor: extractor, timeout: timeout}
}

// Enrich returns a multi-line context string for the website, or the
// generic fallback. It never returns an error.
func (e *Enricher) Enrich(ctx context.Context, website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return FallbackContext
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	candidates := e.discover(ctx, website)

	results := make([]*firecrawl.PageFields, len(candidates))
	var wg sync.WaitGroup
	for i, page := range candidates {
		wg.Add(1)
		go func(i int, page string) {
			defer wg.Done()
			fields, err := e.extractor.Scrape(ctx, page)
			if err != nil {
				// A failed scrape contributes nothing, not an error.
				log.Printf("enricher: scrape %s failed: %v", page, err)
				return
			}
			results[i] = fields
		}(i, page)
	}
	wg.Wait()

	if ctx.Err() != nil {
		log.Printf("enricher: deadline elapsed for %s, using fallback", website)
		return FallbackContext
	}

	merged := mergeFields(results)
	if merged == "" {
		return FallbackContext
	}
	return merged
}

// discover returns up to maxCandidatePages page URLs for the site. The root
// URL is always a candidate; map failures degrade to root-only.
func (e *Enricher) discover(ctx context.Context, website string) []string {
	candidates := []string{website}
	seen := map[string]struct{}{canonicalPage(website): {}}

	links, err := e.extractor.Map(ctx, website, discoverySearch, maxCandidatePages)
	if err != nil {
		log.Printf("enricher: site map for %s failed: %v", website, err)
		return candidates
	}
	for _, link := range links {
		if len(candidates) >= maxCandidatePages {
			break
		}
		key := canonicalPage(link)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, link)
	}
	return candidates
}

func canonicalPage(raw string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(raw)), "/")
}

// mergeFields concatenates each structured field across all successful
// scrapes, newline-separated, omitting fields absent everywhere.
func mergeFields(results []*firecrawl.PageFields) string {
	var about, services, hours, pricing []string
	for _, fields := range results {
		if fields == nil {
			continue
		}
		about = appendValue(about, fields.About)
		services = appendValue(services, fields.Services)
		hours = appendValue(hours, fields.Hours)
		pricing = appendValue(pricing, fields.Pricing)
	}

	var lines []string
	if len(about) > 0 {
		lines = append(lines, "About: "+strings.Join(about, "\n"))
	}
	if len(services) > 0 {
		lines = append(lines, "Services: "+strings.Join(services, "\n"))
	}
	if len(hours) > 0 {
		lines = append(lines, "Hours: "+strings.Join(hours, "\n"))
	}
	if len(pricing) > 0 {
		lines = append(lines, "Pricing: "+strings.Join(pricing, "\n"))
	}
	return strings.Join(lines, "\n")
}

func appendValue(values []string, value string) []string {
	if v := strings.TrimSpace(value); v != "" {
		return append(values, v)
	}
	return values
}
