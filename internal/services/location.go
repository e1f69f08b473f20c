package services

import (
	"regexp"
	"strings"
)

// Location is a cleaned city/state/zip triple
type Location struct {
	City  string
	State string
	Zip   string
}

var stateAbbreviations = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "DC": {}, "FL": {},
	"GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {},
	"MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {},
	"NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {},
	"SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {},
	"WY": {}, "PR": {}, "VI": {}, "GU": {}, "AS": {}, "MP": {},
}

var (
	leadingZip  = regexp.MustCompile(`^(\d{5})(?:-\d{4})?$`)
	trailingZip = regexp.MustCompile(`(?:^|[\s,]+)(\d{5})(?:-\d{4})?$`)
)

// IsStateAbbreviation reports whether s is a recognized two-letter state code.
// Only upper-case input matches so that words like "In" or "Me" inside a city
// name are not taken for states.
func IsStateAbbreviation(s string) bool {
	_, ok := stateAbbreviations[s]
	return ok
}

// RecoverLocation rebuilds city, state and zip for address rows where legacy
// data entry typed all three into the city field, e.g. "Richmond VA 23220".
// Existing state and zip values are never overwritten. The boolean is false
// when the result is still unusable: no city, or neither state nor zip.
func RecoverLocation(rawCity, rawState, rawZip string) (Location, bool) {
	loc := Location{
		City:  strings.TrimSpace(rawCity),
		State: strings.TrimSpace(rawState),
		Zip:   strings.TrimSpace(rawZip),
	}
	if loc.City == "" {
		return loc, false
	}

	tokens := strings.Fields(loc.City)
	stateAt := -1
	for i := 1; i < len(tokens); i++ {
		if IsStateAbbreviation(strings.TrimRight(tokens[i], ",.")) {
			stateAt = i
			break
		}
	}

	if stateAt > 0 {
		token := strings.TrimRight(tokens[stateAt], ",.")
		if loc.State == "" {
			loc.State = token
		}
		if loc.Zip == "" && stateAt+1 < len(tokens) {
			if m := leadingZip.FindStringSubmatch(strings.TrimRight(tokens[stateAt+1], ",.")); m != nil {
				loc.Zip = m[1]
			}
		}
		loc.City = strings.TrimRight(strings.Join(tokens[:stateAt], " "), ", ")
	} else if m := trailingZip.FindStringSubmatchIndex(loc.City); m != nil {
		if loc.Zip == "" {
			loc.Zip = loc.City[m[2]:m[3]]
		}
		loc.City = strings.TrimRight(loc.City[:m[0]], ", ")
	}

	if loc.City == "" || (loc.State == "" && loc.Zip == "") {
		return loc, false
	}
	return loc, true
}
