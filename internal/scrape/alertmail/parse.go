package alertmail

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/scrape/linkedin"
	"github.com/rakmakan/ai-resume/internal/scrape/util"
)

// badgeJunk is template text that leaks into anchor text around the title.
var badgeJunk = []string{"Actively recruiting", "Easy Apply", "Promoted"}

// ParseAlertHTML extracts job records from one alert email body. Anchors for
// the same posting id are merged: the logo anchor has no text, the card body
// anchor carries the title, and both point at /jobs/view/<id>.
func ParseAlertHTML(body string, received time.Time) ([]domain.JobRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	byKey := map[string]*domain.JobRecord{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lh := strings.ToLower(href)
		if href == "" || !strings.Contains(lh, "linkedin.com") {
			return
		}
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := unwrapRedirect(href)
		if jobURL == "" {
			return
		}

		id, _ := linkedin.JobIDFromURL(jobURL)
		key := id
		if key == "" {
			key = jobURL
		}

		rec, ok := byKey[key]
		if !ok {
			rec = &domain.JobRecord{
				Title:       domain.NotAvailable,
				Company:     domain.NotAvailable,
				Location:    domain.NotAvailable,
				Link:        linkedin.CleanJobURL(jobURL),
				JobID:       id,
				PostingDate: received.Format("2006-01-02"),
				Source:      domain.SourceLinkedInAlerts,
				ScrapedAt:   time.Now().Format(time.RFC3339),
			}
			byKey[key] = rec
			order = append(order, key)
		}

		if t := titleCandidate(a.Text()); t != "" && rec.Title == domain.NotAvailable {
			rec.Title = t
		}

		// The surrounding card usually holds "Company · Location" in a <p>.
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}
			if strings.Contains(t, " · ") && rec.Company == domain.NotAvailable {
				parts := strings.SplitN(t, " · ", 2)
				if c := strings.TrimSpace(parts[0]); c != "" {
					rec.Company = c
				}
				if l := util.NormalizeLocation(parts[1]); l != "" {
					rec.Location = l
				}
				return
			}
			if rec.Title == domain.NotAvailable {
				if t2 := titleCandidate(t); t2 != "" {
					rec.Title = t2
				}
			}
		})
	})

	var out []domain.JobRecord
	for _, key := range order {
		rec := byKey[key]
		if rec.Title == domain.NotAvailable {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// titleCandidate cleans anchor text into a plausible title, or "".
func titleCandidate(s string) string {
	s = util.CleanText(s)
	for _, b := range badgeJunk {
		s = strings.TrimSpace(strings.ReplaceAll(s, b, ""))
	}
	if s == "" || strings.Contains(s, " · ") {
		return ""
	}
	low := strings.ToLower(s)
	for _, junk := range []string{"alumni", "connections", "applicants", "view job", "see all"} {
		if strings.Contains(low, junk) {
			return ""
		}
	}
	if len(s) < 3 {
		return ""
	}
	return s
}

// unwrapRedirect resolves tracking-wrapper links down to the target URL.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}
	if u.Host != "" {
		return u.String()
	}
	return href
}

// looksLikeAlert decides whether a message is a LinkedIn job alert worth
// parsing, by sender and subject.
func looksLikeAlert(from, subject string) bool {
	f := strings.ToLower(from)
	s := strings.ToLower(subject)
	if !strings.Contains(f, "linkedin") {
		return false
	}
	for _, marker := range []string{"job alert", "new jobs", "jobs for you", "job matches", "hiring now"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return strings.Contains(f, "jobalerts") || strings.Contains(f, "jobs-noreply")
}
