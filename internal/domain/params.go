package domain

import (
	"regexp"
	"strconv"
)

// Time-window codes accepted by the listing endpoint (f_TPR).
const (
	TimePastDay      = "r86400"
	TimePastTwoDays  = "r172800"
	TimePastWeek     = "r604800"
	TimePastTwoWeeks = "r1209600"
)

const (
	DefaultMaxApplicants = 10
	DefaultMaxResults    = 50
)

// SearchParams is everything the scrape run needs from the user. Built once
// from flags or prompts, read-only afterwards.
type SearchParams struct {
	Title       string
	Experience  *int // years, nil = unspecified
	RawLocation string
	Locations   []string // expanded from RawLocation; empty element = any
	TimeWindow  string   // f_TPR code, see TimePast* constants
	MaxApplicants int
	MaxResults    int
	FetchDetails  bool
}

// Mode names the run for report metadata.
func (p SearchParams) Mode() string {
	if p.FetchDetails {
		return "Detailed"
	}
	return "Basic"
}

// ExperienceLabel renders the experience band for report metadata.
func (p SearchParams) ExperienceLabel() string {
	if p.Experience == nil {
		return "Any"
	}
	return strconv.Itoa(*p.Experience)
}

// LocationLabel renders the location the user asked for, not the expanded
// city list.
func (p SearchParams) LocationLabel() string {
	if p.RawLocation == "" {
		return "Any"
	}
	return p.RawLocation
}

var rawWindowRe = regexp.MustCompile(`^r\d+$`)

// ResolveTimeWindow maps a user-facing window name to an f_TPR code. Raw
// codes pass through untouched.
func ResolveTimeWindow(name string) (string, bool) {
	switch name {
	case "", "48h", "2d":
		return TimePastTwoDays, true
	case "24h", "1d":
		return TimePastDay, true
	case "1w", "week":
		return TimePastWeek, true
	case "2w":
		return TimePastTwoWeeks, true
	}
	if rawWindowRe.MatchString(name) {
		return name, true
	}
	return "", false
}
