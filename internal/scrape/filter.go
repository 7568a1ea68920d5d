package scrape

import (
	"strings"

	"github.com/rakmakan/ai-resume/internal/domain"
)

// Corporate-communications searches drown in HR and admin listings, so that
// one query gets curated allow/deny lists. Deny wins.
var (
	commsRelevant = []string{
		"communications", "communication", "corporate communications",
		"internal communications", "external communications",
		"strategic communications", "public relations", "pr",
		"media relations", "content strategy", "brand communications",
		"marketing communications", "marcom", "corporate affairs",
	}
	commsIrrelevant = []string{
		"talent manager", "people", "culture", "hr", "human resources",
		"administrative assistant", "admin", "care facilitator",
		"case manager", "events manager", "retail", "sales",
		"customer service", "account manager",
	}
)

// ExtraFilters are optional user-supplied title keyword lists, layered on
// top of the built-in relevance check. Block wins over allow.
type ExtraFilters struct {
	TitleAllow []string
	TitleBlock []string
}

func (f ExtraFilters) empty() bool {
	return len(f.TitleAllow) == 0 && len(f.TitleBlock) == 0
}

// Relevant decides whether a scraped title matches the search intent.
// A sentinel title is never relevant. For generic queries at least 60% of
// the query words must appear as substrings of title words.
func Relevant(title, keywords string, extra ExtraFilters) bool {
	if title == "" || title == domain.NotAvailable {
		return false
	}

	titleLower := strings.ToLower(title)

	if !extra.empty() {
		for _, block := range extra.TitleBlock {
			if block = strings.ToLower(strings.TrimSpace(block)); block != "" && strings.Contains(titleLower, block) {
				return false
			}
		}
		for _, allow := range extra.TitleAllow {
			if allow = strings.ToLower(strings.TrimSpace(allow)); allow != "" && strings.Contains(titleLower, allow) {
				return true
			}
		}
	}

	searchLower := strings.ToLower(keywords)

	if strings.Contains(searchLower, "corporate communications") {
		for _, irrelevant := range commsIrrelevant {
			if strings.Contains(titleLower, irrelevant) {
				return false
			}
		}
		for _, relevant := range commsRelevant {
			if strings.Contains(titleLower, relevant) {
				return true
			}
		}
		return false
	}

	searchWords := strings.Fields(searchLower)
	if len(searchWords) == 0 {
		return true
	}
	titleWords := strings.Fields(titleLower)

	matches := 0
	for _, word := range searchWords {
		for _, tw := range titleWords {
			if strings.Contains(tw, word) {
				matches++
				break
			}
		}
	}
	return float64(matches) >= float64(len(searchWords))*0.6
}

// WithinCap reports whether a record passes the applicant cap. Unknown
// counts pass; the cap guarantee for hydrated records is enforced again
// after detail fetching fills counts in.
func WithinCap(rec domain.JobRecord, maxApplicants int) bool {
	return rec.Applicants == nil || *rec.Applicants <= maxApplicants
}
