package scrape

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/scrape/linkedin"
	"github.com/rakmakan/ai-resume/internal/scrape/util"
)

// Searcher runs the listing pipeline: paginate, filter, hydrate. One page
// and one detail fetch at a time; the only suspension points are network
// calls and backoff sleeps, and cancellation surfaces as a partial result.
type Searcher struct {
	Client *linkedin.Client
	Extra  ExtraFilters

	// Listing endpoints in fallback order.
	Endpoints []string

	PageDelay      util.DelayRange // before each page, detailed mode
	BasicPageDelay util.DelayRange // after each page, basic mode
	RateLimitDelay util.DelayRange
	ErrorDelay     util.DelayRange
	HydrateDelay   util.DelayRange

	MaxEmptyPages      int // consecutive pages without kept jobs, detailed
	MaxEmptyPagesBasic int
	MaxRateLimitErrors int // per endpoint before falling back

	Quiet bool // suppress per-job log lines
}

func NewSearcher(client *linkedin.Client) *Searcher {
	return &Searcher{
		Client:             client,
		Endpoints:          []string{linkedin.ListingEndpoint, linkedin.FallbackEndpoint},
		PageDelay:          util.DelayRange{Min: 3 * time.Second, Max: 6 * time.Second},
		BasicPageDelay:     util.DelayRange{Min: 1500 * time.Millisecond, Max: 3 * time.Second},
		RateLimitDelay:     util.DelayRange{Min: 10 * time.Second, Max: 15 * time.Second},
		ErrorDelay:         util.DelayRange{Min: 5 * time.Second, Max: 8 * time.Second},
		HydrateDelay:       util.DelayRange{Min: 2 * time.Second, Max: 4 * time.Second},
		MaxEmptyPages:      2,
		MaxEmptyPagesBasic: 3,
		MaxRateLimitErrors: 3,
	}
}

// Run executes the search across all locations and returns at most
// params.MaxResults records, each relevant to the query and within the
// applicant cap. On cancellation it returns what it has along with ctx.Err().
func (s *Searcher) Run(ctx context.Context, params domain.SearchParams) ([]domain.JobRecord, error) {
	locations := params.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	log.Printf("[search] query=%q locations=%d window=%s cap=%d results=%d mode=%s",
		params.Title, len(locations), linkedin.TimeWindowLabel(params.TimeWindow),
		params.MaxApplicants, params.MaxResults, params.Mode())

	perLocation := params.MaxResults / len(locations)
	if perLocation < 1 {
		perLocation = 1
	}

	var results []domain.JobRecord
	for _, loc := range locations {
		if ctx.Err() != nil {
			break
		}
		if loc != "" {
			log.Printf("[search] searching in %s", loc)
		}
		results = append(results, s.searchLocation(ctx, params, loc, perLocation)...)
		if len(results) >= params.MaxResults {
			results = results[:params.MaxResults]
			break
		}
	}

	if params.FetchDetails {
		s.hydrateAll(ctx, results)
		results = enforceCap(results, params.MaxApplicants)
	} else {
		for i := range results {
			results[i].MarkBasicMode()
		}
	}

	log.Printf("[search] completed with %d jobs", len(results))
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// searchLocation paginates one location until its share of the result
// budget is met, the empty-page budget runs out, or every endpoint has
// exhausted its rate-limit budget.
func (s *Searcher) searchLocation(ctx context.Context, params domain.SearchParams, location string, budget int) []domain.JobRecord {
	kept := make([]domain.JobRecord, 0, budget)

	maxEmpty := s.MaxEmptyPages
	if !params.FetchDetails {
		maxEmpty = s.MaxEmptyPagesBasic
	}

	for i, endpoint := range s.Endpoints {
		if len(kept) >= budget || ctx.Err() != nil {
			break
		}
		if i > 0 {
			log.Printf("[search] falling back to alternate endpoint")
		}

		rateLimited := 0
		emptyPages := 0
		start := 0

		for len(kept) < budget && emptyPages < maxEmpty && rateLimited < s.MaxRateLimitErrors {
			page := start/linkedin.PageSize + 1

			if params.FetchDetails && !s.PageDelay.Sleep(ctx) {
				return kept
			}

			query := linkedin.ListingQuery(params.Title, location, start, params.TimeWindow, params.Experience)
			res, err := s.Client.Get(ctx, endpoint, query)
			if err != nil {
				if ctx.Err() != nil {
					return kept
				}
				if errors.Is(err, linkedin.ErrRateLimited) {
					rateLimited++
					log.Printf("[search] rate limited on page %d, backing off (%d/%d)", page, rateLimited, s.MaxRateLimitErrors)
					if !s.RateLimitDelay.Sleep(ctx) {
						return kept
					}
					continue // retry the same page
				}
				log.Printf("[search] page %d: %v", page, err)
				emptyPages++
				if emptyPages >= maxEmpty {
					break
				}
				if !s.ErrorDelay.Sleep(ctx) {
					return kept
				}
				start += linkedin.PageSize
				continue
			}

			records, perr := linkedin.ParseListing(res.Body)
			if perr != nil {
				log.Printf("[search] parse page %d: %v", page, perr)
				emptyPages++
				start += linkedin.PageSize
				continue
			}
			if len(records) == 0 {
				log.Printf("[search] no job cards on page %d", page)
				emptyPages++
				start += linkedin.PageSize
				continue
			}

			log.Printf("[search] page %d: %d cards", page, len(records))

			pageKept := 0
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
				pageKept++
				if !s.Quiet {
					log.Printf("[search] %d. %s at %s %s", len(kept), rec.Title, rec.Company, applicantNote(rec))
				}
				if len(kept) >= budget {
					break
				}
			}

			if pageKept == 0 {
				emptyPages++
			} else {
				emptyPages = 0
			}
			start += linkedin.PageSize

			if !params.FetchDetails && !s.BasicPageDelay.Sleep(ctx) {
				return kept
			}
		}

		// An endpoint that produced anything is good enough; the fallback
		// exists for when the primary is exhausted or rate limited dry.
		if len(kept) > 0 {
			break
		}
	}

	if location != "" {
		log.Printf("[search] %d qualifying jobs in %s", len(kept), location)
	} else {
		log.Printf("[search] %d qualifying jobs", len(kept))
	}
	return kept
}

// hydrateAll fetches details for each record in place, one at a time.
func (s *Searcher) hydrateAll(ctx context.Context, records []domain.JobRecord) {
	if len(records) == 0 {
		return
	}
	log.Printf("[search] fetching detailed descriptions for %d jobs", len(records))

	for i := range records {
		if ctx.Err() != nil {
			log.Printf("[search] interrupted, %d of %d jobs hydrated", i, len(records))
			return
		}
		log.Printf("[search] %d/%d: details for %s at %s", i+1, len(records), records[i].Title, records[i].Company)
		records[i] = s.Client.Hydrate(ctx, records[i])
		s.HydrateDelay.Sleep(ctx)
	}
}

// enforceCap drops hydrated records whose now-known applicant count exceeds
// the cap. Listing cards rarely carry counts, so the pagination-time check
// alone cannot guarantee the cap.
func enforceCap(records []domain.JobRecord, maxApplicants int) []domain.JobRecord {
	out := make([]domain.JobRecord, 0, len(records))
	for _, rec := range records {
		if WithinCap(rec, maxApplicants) {
			out = append(out, rec)
			continue
		}
		log.Printf("[search] dropping %s at %s: %d applicants over cap %d",
			rec.Title, rec.Company, *rec.Applicants, maxApplicants)
	}
	return out
}

func applicantNote(rec domain.JobRecord) string {
	if rec.Applicants == nil {
		return "(applicants unknown)"
	}
	return "(" + strconv.Itoa(*rec.Applicants) + " applicants)"
}
