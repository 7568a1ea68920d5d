package scrape

import (
	"testing"

	"github.com/rakmakan/ai-resume/internal/domain"
)

func TestRelevantCorporateCommunications(t *testing.T) {
	const query = "Corporate Communications"

	cases := []struct {
		title string
		want  bool
	}{
		{"Internal Communications Lead", true},
		{"Director of Corporate Affairs", true},
		{"Media Relations Specialist", true},
		{"Talent Manager - Communications", false}, // deny beats allow
		{"HR Manager", false},
		{"Administrative Assistant", false},
		{"Software Engineer", false},
		{"Events Manager, Communications", false},
	}
	for _, c := range cases {
		if got := Relevant(c.title, query, ExtraFilters{}); got != c.want {
			t.Errorf("Relevant(%q) = %v, want %v", c.title, got, c.want)
		}
	}
}

func TestRelevantGenericQuery(t *testing.T) {
	cases := []struct {
		title, query string
		want         bool
	}{
		{"Senior Data Scientist", "data scientist", true},
		{"Data Science Manager", "data scientist", false}, // "scientist" not in any title word
		{"Marketing Manager", "data scientist", false},    // zero of N words
		{"Software Engineering Lead", "engineer", true},   // substring of a title word
		{"Machine Learning Engineer", "machine learning engineer", true},
	}
	for _, c := range cases {
		if got := Relevant(c.title, c.query, ExtraFilters{}); got != c.want {
			t.Errorf("Relevant(%q, %q) = %v, want %v", c.title, c.query, got, c.want)
		}
	}
}

func TestRelevantSentinelTitle(t *testing.T) {
	if Relevant(domain.NotAvailable, "data scientist", ExtraFilters{}) {
		t.Error("sentinel title must never be relevant")
	}
	if Relevant("", "data scientist", ExtraFilters{}) {
		t.Error("empty title must never be relevant")
	}
}

func TestRelevantExtraFilters(t *testing.T) {
	extra := ExtraFilters{
		TitleAllow: []string{"mlops"},
		TitleBlock: []string{"intern"},
	}

	if Relevant("Data Science Intern", "data science", extra) {
		t.Error("blocked keyword should exclude the title")
	}
	if !Relevant("MLOps Platform Owner", "data scientist", extra) {
		t.Error("allowed keyword should grant relevance")
	}
	// Neither list hits: falls through to the generic heuristic.
	if !Relevant("Staff Data Scientist", "data scientist", extra) {
		t.Error("extra filters should not disable the generic heuristic")
	}
}

func TestWithinCap(t *testing.T) {
	three, eleven := 3, 11

	if !WithinCap(domain.JobRecord{Applicants: nil}, 10) {
		t.Error("unknown count must pass the cap")
	}
	if !WithinCap(domain.JobRecord{Applicants: &three}, 10) {
		t.Error("3 <= 10 must pass")
	}
	if WithinCap(domain.JobRecord{Applicants: &eleven}, 10) {
		t.Error("11 > 10 must fail")
	}
}
