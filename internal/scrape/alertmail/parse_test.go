package alertmail

import (
	"testing"
	"time"

	"github.com/rakmakan/ai-resume/internal/domain"
)

const alertFixture = `
<html><body>
<table><tr>
  <td><a href="https://www.linkedin.com/comm/jobs/view/4001?trk=logo"><img src="logo.png"></a></td>
  <td>
    <a href="https://www.linkedin.com/comm/jobs/view/4001?trk=body">Senior Data Scientist</a>
    <p>Acme Corp · Toronto, ON</p>
    <p>Actively recruiting</p>
  </td>
</tr></table>
<table><tr>
  <td>
    <a href="https://www.linkedin.com/jobs/view/4002/">Machine Learning Engineer</a>
    <p>Globex · Remote</p>
  </td>
</tr></table>
<p><a href="https://www.linkedin.com/comm/jobs/view/4003">See all 30 applicants</a></p>
<p><a href="https://www.linkedin.com/feed/">Your feed</a></p>
</body></html>
`

func TestParseAlertHTML(t *testing.T) {
	received := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	recs, err := ParseAlertHTML(alertFixture, received)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}

	first := recs[0]
	if first.Title != "Senior Data Scientist" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Company != "Acme Corp" || first.Location != "Toronto, ON" {
		t.Errorf("company/location = %q / %q", first.Company, first.Location)
	}
	if first.JobID != "4001" {
		t.Errorf("job id = %q", first.JobID)
	}
	if first.Link != "https://www.linkedin.com/comm/jobs/view/4001" {
		t.Errorf("link not cleaned: %q", first.Link)
	}
	if first.Source != domain.SourceLinkedInAlerts {
		t.Errorf("source = %q", first.Source)
	}
	if first.PostingDate != "2025-06-01" {
		t.Errorf("posting date = %q", first.PostingDate)
	}

	if recs[1].Title != "Machine Learning Engineer" || recs[1].Company != "Globex" {
		t.Errorf("second record = %+v", recs[1])
	}
}

func TestParseAlertHTMLMergesAnchors(t *testing.T) {
	// Logo anchor first, titled anchor second; both the same posting.
	recs, err := ParseAlertHTML(alertFixture, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]int{}
	for _, r := range recs {
		seen[r.JobID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("job %s appears %d times", id, n)
		}
	}
}

func TestLooksLikeAlert(t *testing.T) {
	cases := []struct {
		from, subject string
		want          bool
	}{
		{"jobalerts-noreply@linkedin.com", "30+ new jobs for data scientist", true},
		{"jobs-noreply@linkedin.com", "Your job alert for ML Engineer", true},
		{"someone@example.com", "job alert", false},
		{"messages-noreply@linkedin.com", "You have a new message", false},
	}
	for _, c := range cases {
		if got := looksLikeAlert(c.from, c.subject); got != c.want {
			t.Errorf("looksLikeAlert(%q, %q) = %v", c.from, c.subject, got)
		}
	}
}

func TestTitleCandidateRejectsJunk(t *testing.T) {
	for _, junk := range []string{"", "Easy Apply", "See all 30 applicants", "Acme · Toronto"} {
		if got := titleCandidate(junk); got != "" {
			t.Errorf("titleCandidate(%q) = %q, want empty", junk, got)
		}
	}
	if got := titleCandidate(" Senior Engineer  Actively recruiting "); got != "Senior Engineer" {
		t.Errorf("titleCandidate = %q", got)
	}
}
