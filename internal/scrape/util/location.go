package util

import "strings"

// canadianCities backs the "Canada" shortcut: searching the whole country in
// one query returns a grab bag, so it fans out over the major metros instead.
var canadianCities = []string{
	"Toronto, ON, Canada",
	"Vancouver, BC, Canada",
	"Calgary, AB, Canada",
	"Ottawa, ON, Canada",
	"Montreal, QC, Canada",
	"Edmonton, AB, Canada",
	"Winnipeg, MB, Canada",
	"Quebec City, QC, Canada",
	"Hamilton, ON, Canada",
	"Kitchener, ON, Canada",
}

// CanadianCities returns a copy so callers can't mutate the canonical list.
func CanadianCities() []string {
	out := make([]string, len(canadianCities))
	copy(out, canadianCities)
	return out
}

// ExpandLocations resolves the user's location input into the list of
// locations to search. Empty input means "any location" (one empty query);
// "canada" expands to the major-city list.
func ExpandLocations(raw string) []string {
	raw = CleanText(raw)
	if raw == "" {
		return []string{""}
	}
	if strings.EqualFold(raw, "canada") {
		return CanadianCities()
	}
	return []string{raw}
}
