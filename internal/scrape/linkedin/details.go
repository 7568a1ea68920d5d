package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rakmakan/ai-resume/internal/domain"
)

const detailTimeout = 15 * time.Second

// postingPayload is the JSON shape of the guest posting endpoint; only the
// description text matters here.
type postingPayload struct {
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
}

// Hydrate fills a record's description, detail fields and, when still
// unknown, applicant count from the posting page. Failures degrade: page
// fetch falls back to the posting API, and when everything fails the
// description is stamped with a placeholder. Hydrate never returns an error.
func (c *Client) Hydrate(ctx context.Context, rec domain.JobRecord) domain.JobRecord {
	if rec.Link == "" || rec.Link == domain.NotAvailable {
		log.Printf("[linkedin] no link for %q, skipping details", rec.Title)
		return rec
	}

	jobURL := CleanJobURL(rec.Link)

	dctx, cancel := context.WithTimeout(ctx, detailTimeout)
	res, err := c.Get(dctx, jobURL, nil)
	cancel()
	if err == nil {
		if doc, perr := goquery.NewDocumentFromReader(bytes.NewReader(res.Body)); perr == nil {
			return fillFromPage(doc, rec)
		}
	} else {
		log.Printf("[linkedin] detail fetch %s: %v", jobURL, err)
	}

	if rec.JobID != "" {
		if done, ok := c.hydrateFromAPI(ctx, rec); ok {
			return done
		}
	}

	rec.Description = domain.DescFetchFailed
	return rec
}

// hydrateFromAPI tries the guest posting endpoint. Second value reports
// whether the endpoint answered at all.
func (c *Client) hydrateFromAPI(ctx context.Context, rec domain.JobRecord) (domain.JobRecord, bool) {
	apiURL := PostingEndpoint + rec.JobID
	log.Printf("[linkedin] trying posting api for job %s", rec.JobID)

	dctx, cancel := context.WithTimeout(ctx, detailTimeout)
	res, err := c.Get(dctx, apiURL, nil)
	cancel()
	if err != nil {
		log.Printf("[linkedin] posting api %s: %v", apiURL, err)
		return rec, false
	}

	if strings.Contains(res.ContentType, "application/json") {
		var payload postingPayload
		if json.Unmarshal(res.Body, &payload) == nil && payload.Description.Text != "" {
			rec.Description = payload.Description.Text
		}
		return rec, true
	}

	doc, perr := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if perr != nil {
		return rec, false
	}
	if desc, ok := ExtractDescription(doc); ok {
		rec.Description = desc
	} else {
		rec.Description = domain.DescNotFound
	}
	return rec, true
}

func fillFromPage(doc *goquery.Document, rec domain.JobRecord) domain.JobRecord {
	if desc, ok := ExtractDescription(doc); ok {
		rec.Description = desc
	} else {
		rec.Description = domain.DescNotFound
	}

	pageText := textWithNewlines(doc.Selection)

	if v, ok := ExtractJobType(pageText); ok {
		rec.JobType = v
	}
	if v, ok := ExtractSeniority(pageText); ok {
		rec.Seniority = v
	}
	if v, ok := ExtractSalary(pageText); ok {
		rec.SalaryRange = v
	}
	if v, ok := ExtractIndustry(pageText); ok {
		rec.Industry = v
	}
	if v, ok := ExtractSkills(doc); ok {
		rec.Skills = v
	}
	if rec.Applicants == nil {
		if n, ok := ExtractApplicants(pageText); ok {
			rec.Applicants = &n
		}
	}
	return rec
}
