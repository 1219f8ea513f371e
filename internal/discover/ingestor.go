package discover

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/nextmic/nextmic/internal/models"
)

// OpportunityWriter is the slice of the database layer ingestion needs.
type OpportunityWriter interface {
	UpsertOpportunity(ctx context.Context, o models.Opportunity) (uuid.UUID, error)
}

// Ingestor runs configured sources and writes the opportunities they yield.
type Ingestor struct {
	registry *Registry
	store    OpportunityWriter
}

func NewIngestor(registry *Registry, store OpportunityWriter) *Ingestor {
	return &Ingestor{registry: registry, store: store}
}

const defaultMaxPages = 5

// IngestSource fetches every seed URL of one source, follows pagination up
// to the source's page limit, and upserts whatever parses cleanly. Per-item
// failures are counted, not fatal.
func (ing *Ingestor) IngestSource(ctx context.Context, sourceID string) (*SourceStats, error) {
	cfg, err := ing.registry.Find(sourceID)
	if err != nil {
		return nil, err
	}

	fetcher := NewCollyFetcher(cfg.Fetch)
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	stats := &SourceStats{}
	for _, seed := range cfg.Seeds {
		if err := ing.ingestSeed(ctx, fetcher, cfg, seed, maxPages, stats); err != nil {
			log.Printf("[discover] source %s seed %s: %v", sourceID, seed, err)
			stats.Errors++
		}
	}

	log.Printf("[discover] source %s done: found=%d saved=%d errors=%d",
		sourceID, stats.TotalFound, stats.TotalSaved, stats.Errors)
	return stats, nil
}

func (ing *Ingestor) ingestSeed(ctx context.Context, fetcher Fetcher, cfg *SourceConfig, seed string, maxPages int, stats *SourceStats) error {
	pageURL := seed
	for page := 0; page < maxPages && pageURL != ""; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return err
		}
		if doc.StatusCode != 0 && doc.StatusCode != 200 {
			return fmt.Errorf("fetch %s: status %d", pageURL, doc.StatusCode)
		}

		events, nextURL, err := ParseListing(doc, cfg)
		if err != nil {
			return err
		}
		stats.TotalFound += len(events)

		for _, raw := range events {
			opp := FromRaw(raw)
			if opp.EventName == "" || opp.ExternalURL == "" {
				stats.Errors++
				continue
			}

			// Some events publish their call for speakers as a PDF
			// prospectus with the deadline buried inside.
			if opp.Deadline == nil && strings.HasSuffix(strings.ToLower(opp.ExternalURL), ".pdf") {
				if pdfDoc, err := fetcher.Fetch(ctx, opp.ExternalURL); err == nil && IsPDF(pdfDoc) {
					if dt, err := ExtractPDFDeadline(pdfDoc.Body); err == nil {
						opp.Deadline = &dt
					}
				}
			}

			if _, err := ing.store.UpsertOpportunity(ctx, opp); err != nil {
				log.Printf("[discover] upsert %s: %v", opp.ExternalURL, err)
				stats.Errors++
				continue
			}
			stats.TotalSaved++
		}

		pageURL = nextURL
	}
	return nil
}
