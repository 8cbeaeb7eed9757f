package verify

import "strings"

// usStates maps USPS abbreviations to full state names. DC is included
// because leads routinely come from there.
var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
	"DC": "District of Columbia",
}

var stateFullNamesLower = func() map[string]bool {
	m := make(map[string]bool, len(usStates))
	for _, name := range usStates {
		m[strings.ToLower(name)] = true
	}
	return m
}()

// NormalizeState maps a state name or abbreviation, in any casing, to the
// lowercase full name. Empty string means unrecognized.
func NormalizeState(submitted string) string {
	s := strings.ToLower(strings.TrimSpace(submitted))
	if s == "" {
		return ""
	}
	if stateFullNamesLower[s] {
		return s
	}
	if full, ok := usStates[strings.ToUpper(s)]; ok {
		return strings.ToLower(full)
	}
	return ""
}
