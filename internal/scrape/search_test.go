package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/scrape/linkedin"
)

// card renders a listing fragment the way the guest endpoint does.
func card(title, company, link string) string {
	return fmt.Sprintf(`<div class="job-search-card">
<h3 class="base-search-card__title">%s</h3>
<h4 class="base-search-card__subtitle">%s</h4>
<span class="job-search-card__location">Toronto, ON, Canada</span>
<a class="base-card__full-link" href="%s"></a>
<time class="job-search-card__listdate" datetime="2026-08-21"></time>
</div>`, title, company, link)
}

func page(cards ...string) string {
	return "<html><body>" + strings.Join(cards, "\n") + "</body></html>"
}

// fastSearcher zeroes every delay so the loop runs at test speed.
func fastSearcher(endpoints ...string) *Searcher {
	s := NewSearcher(linkedin.NewClient(nil))
	s.Endpoints = endpoints
	s.PageDelay.Min, s.PageDelay.Max = 0, 0
	s.BasicPageDelay.Min, s.BasicPageDelay.Max = 0, 0
	s.RateLimitDelay.Min, s.RateLimitDelay.Max = 0, 0
	s.ErrorDelay.Min, s.ErrorDelay.Max = 0, 0
	s.HydrateDelay.Min, s.HydrateDelay.Max = 0, 0
	s.Quiet = true
	return s
}

func basicParams(title string, maxResults int) domain.SearchParams {
	return domain.SearchParams{
		Title:         title,
		Locations:     []string{""},
		TimeWindow:    domain.TimePastTwoDays,
		MaxApplicants: 10,
		MaxResults:    maxResults,
	}
}

func TestRunHonorsResultCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cards []string
		for i := 0; i < 30; i++ {
			cards = append(cards, card(fmt.Sprintf("Data Scientist %d", i), "Acme", "/jobs/view/100"+fmt.Sprint(i)+"/"))
		}
		fmt.Fprint(w, page(cards...))
	}))
	defer srv.Close()

	s := fastSearcher(srv.URL)
	results, err := s.Run(context.Background(), basicParams("data scientist", 5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("result cap violated: got %d records", len(results))
	}
	for _, rec := range results {
		if rec.Description != domain.DescBasicMode {
			t.Errorf("basic mode placeholder missing on %q: %q", rec.Title, rec.Description)
		}
	}
}

func TestRunFiltersIrrelevantTitles(t *testing.T) {
	calls := int32(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			fmt.Fprint(w, page(
				card("Data Scientist", "Acme", "/jobs/view/1/"),
				card("Accountant", "Beta", "/jobs/view/2/"),
				card("Applied Data Scientist", "Gamma", "/jobs/view/3/"),
			))
			return
		}
		fmt.Fprint(w, page()) // empty pages end the search
	}))
	defer srv.Close()

	s := fastSearcher(srv.URL)
	results, err := s.Run(context.Background(), basicParams("data scientist", 50))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 relevant records, got %d", len(results))
	}
	for _, rec := range results {
		if rec.Title == "Accountant" {
			t.Error("irrelevant title leaked through the filter")
		}
	}
}

func TestRunEndpointFallbackAfterRateLimits(t *testing.T) {
	var primaryCalls, fallbackCalls int32

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryCalls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&fallbackCalls, 1) == 1 {
			fmt.Fprint(w, page(
				card("Data Scientist", "Acme", "/jobs/view/11/"),
				card("Data Scientist II", "Beta", "/jobs/view/12/"),
			))
			return
		}
		fmt.Fprint(w, page())
	}))
	defer fallback.Close()

	s := fastSearcher(primary.URL, fallback.URL)
	results, err := s.Run(context.Background(), basicParams("data scientist", 50))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := atomic.LoadInt32(&primaryCalls); got != int32(s.MaxRateLimitErrors) {
		t.Errorf("primary endpoint got %d calls, want %d", got, s.MaxRateLimitErrors)
	}
	if len(results) != 2 {
		t.Fatalf("fallback endpoint results missing: got %d records", len(results))
	}
}

func TestRunSplitsBudgetAcrossLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := r.URL.Query().Get("location")
		tag := "East"
		if strings.Contains(loc, "Vancouver") {
			tag = "West"
		}
		fmt.Fprint(w, page(
			card("Data Scientist "+tag+" 1", "Acme", "/jobs/view/21/"),
			card("Data Scientist "+tag+" 2", "Acme", "/jobs/view/22/"),
			card("Data Scientist "+tag+" 3", "Acme", "/jobs/view/23/"),
		))
	}))
	defer srv.Close()

	s := fastSearcher(srv.URL)
	params := basicParams("data scientist", 4)
	params.Locations = []string{"Toronto, ON, Canada", "Vancouver, BC, Canada"}

	results, err := s.Run(context.Background(), params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 records (2 per location), got %d", len(results))
	}
	east, west := 0, 0
	for _, rec := range results {
		if strings.Contains(rec.Title, "East") {
			east++
		}
		if strings.Contains(rec.Title, "West") {
			west++
		}
	}
	if east != 2 || west != 2 {
		t.Errorf("budget not split evenly: east=%d west=%d", east, west)
	}
}

func TestRunEnforcesCapAfterHydration(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	listingCalls := int32(0)
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&listingCalls, 1) == 1 {
			fmt.Fprint(w, page(
				card("Data Scientist", "QuietCo", srv.URL+"/jobs/view/111/"),
				card("Data Scientist Sr", "BusyCo", srv.URL+"/jobs/view/222/"),
			))
			return
		}
		fmt.Fprint(w, page())
	})

	desc := strings.Repeat("Own the analytics roadmap and ship models to production. ", 8)
	mux.HandleFunc("/jobs/view/111/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><div class="show-more-less-html__markup">%s</div><p>3 applicants</p></body></html>`, desc)
	})
	mux.HandleFunc("/jobs/view/222/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><div class="show-more-less-html__markup">%s</div><p>42 applicants</p></body></html>`, desc)
	})

	s := fastSearcher(srv.URL + "/listing")
	params := basicParams("data scientist", 10)
	params.FetchDetails = true

	results, err := s.Run(context.Background(), params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the over-cap record to be dropped, got %d records", len(results))
	}
	rec := results[0]
	if rec.Company != "QuietCo" {
		t.Errorf("wrong record kept: %+v", rec)
	}
	if rec.Applicants == nil || *rec.Applicants != 3 {
		t.Errorf("applicants = %v, want 3", rec.Applicants)
	}
	if !strings.Contains(rec.Description, "analytics roadmap") {
		t.Errorf("description not hydrated: %q", rec.Description)
	}
}

func TestRunReturnsPartialOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := int32(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			cancel()
		}
		fmt.Fprint(w, page(card("Data Scientist "+fmt.Sprint(calls), "Acme", "/jobs/view/31/")))
	}))
	defer srv.Close()

	s := fastSearcher(srv.URL)
	results, err := s.Run(ctx, basicParams("data scientist", 50))
	if err == nil {
		t.Fatal("expected a context error")
	}
	if len(results) == 0 {
		t.Fatal("expected partial results before cancellation")
	}
}
