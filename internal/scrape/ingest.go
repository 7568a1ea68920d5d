package scrape

import (
	"context"
	"log"

	"github.com/rakmakan/ai-resume/internal/domain"
)

// Sift runs records from a secondary source (job-alert email) through the
// same gauntlet as scraped cards: relevance, applicant cap, result cap, and
// hydration in detailed mode.
func (s *Searcher) Sift(ctx context.Context, records []domain.JobRecord, params domain.SearchParams) []domain.JobRecord {
	kept := make([]domain.JobRecord, 0, len(records))
	for _, rec := range records {
		if rec.Title == domain.NotAvailable {
			continue
		}
		if !Relevant(rec.Title, params.Title, s.Extra) {
			if !s.Quiet {
				log.Printf("[search] skipped irrelevant: %s at %s", rec.Title, rec.Company)
			}
			continue
		}
		if !WithinCap(rec, params.MaxApplicants) {
			continue
		}
		kept = append(kept, rec)
		if len(kept) >= params.MaxResults {
			break
		}
	}

	if params.FetchDetails {
		s.hydrateAll(ctx, kept)
		kept = enforceCap(kept, params.MaxApplicants)
	} else {
		for i := range kept {
			kept[i].MarkBasicMode()
		}
	}
	return kept
}
