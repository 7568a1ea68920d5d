package linkedin

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/scrape/util"
)

// PageSize is the card count per listing page; start advances by it.
const PageSize = 25

var jobViewRe = regexp.MustCompile(`/jobs/view/(\d+)`)

// ListingQuery builds the guest search parameters for one page.
func ListingQuery(keywords, location string, start int, window string, expYears *int) url.Values {
	q := url.Values{}
	q.Set("keywords", strings.ReplaceAll(keywords, " ", "+"))
	q.Set("location", location)
	q.Set("start", strconv.Itoa(start))
	q.Set("count", strconv.Itoa(PageSize))
	q.Set("f_TPR", window)
	q.Set("f_JT", "F,P,C")
	q.Set("sortBy", "R")
	if code, ok := ExperienceCode(expYears); ok {
		q.Set("f_E", code)
	}
	return q
}

// ExperienceCode maps years of experience onto the f_E seniority facet.
func ExperienceCode(years *int) (string, bool) {
	if years == nil {
		return "", false
	}
	switch y := *years; {
	case y <= 1:
		return "1", true
	case y <= 3:
		return "2", true
	case y <= 7:
		return "3,4", true
	default:
		return "5,6", true
	}
}

// TimeWindowLabel is the human name for an f_TPR code, for log lines.
func TimeWindowLabel(code string) string {
	switch code {
	case domain.TimePastDay:
		return "24 hours"
	case domain.TimePastWeek:
		return "1 week"
	case domain.TimePastTwoWeeks:
		return "2 weeks"
	default:
		return "48 hours"
	}
}

// cardSelectors in preference order; the guest API uses the first, the html
// fallback page has shipped the others at various times.
var cardSelectors = []string{
	"div.job-search-card",
	"div.jobs-search-results__list-item",
	"div.result-card",
	"li.result-card",
}

// ParseListing extracts one record per job card on a listing page. Cards
// that are missing fields degrade to sentinels rather than being dropped;
// deciding what to keep is the caller's business.
func ParseListing(body []byte) ([]domain.JobRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			cards = s
			break
		}
	}
	if cards == nil {
		return nil, nil
	}

	records := make([]domain.JobRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		records = append(records, extractCard(card))
	})
	return records, nil
}

func extractCard(card *goquery.Selection) domain.JobRecord {
	rec := domain.JobRecord{
		Title:       domain.NotAvailable,
		Company:     domain.NotAvailable,
		Location:    domain.NotAvailable,
		Link:        domain.NotAvailable,
		PostingDate: domain.NotAvailable,
		Source:      domain.SourceLinkedIn,
		ScrapedAt:   time.Now().Format(time.RFC3339),
	}

	if t := util.CleanText(card.Find("h3.base-search-card__title").First().Text()); t != "" {
		rec.Title = t
	}
	if c := util.CleanText(card.Find("h4.base-search-card__subtitle").First().Text()); c != "" {
		rec.Company = c
	}
	if l := util.CleanText(card.Find("span.job-search-card__location").First().Text()); l != "" {
		rec.Location = l
	}
	if href, ok := card.Find("a.base-card__full-link").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		rec.Link = strings.TrimSpace(href)
	}
	if dt, ok := card.Find("time.job-search-card__listdate").First().Attr("datetime"); ok && dt != "" {
		rec.PostingDate = dt
	}
	if id, ok := JobIDFromURL(rec.Link); ok {
		rec.JobID = id
	}
	return rec
}

// JobIDFromURL pulls the numeric posting id out of a /jobs/view/ link.
func JobIDFromURL(raw string) (string, bool) {
	m := jobViewRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CleanJobURL strips tracking query params and resolves scheme-less links
// against the site root.
func CleanJobURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if raw != "" && !strings.HasPrefix(raw, "http") {
		raw = homeURL + raw
	}
	return raw
}
