// Package dispatch routes opaque action identifiers emitted by the
// assistant or the UI to their handlers. Identifiers are parsed once
// into a tagged Action variant at the boundary; fuzzy venue-type
// resolution lives in a single alias table.
package dispatch

import (
	"strings"
)

// Kind tags the parsed action variant.
type Kind string

const (
	KindQuickSuggestion Kind = "quick_suggestion"
	KindSelectDate      Kind = "select_date"
	KindCreateDatePoll  Kind = "create_date_poll"
	KindManualLocation  Kind = "manual_location"
	KindGeneratePlan    Kind = "generate_plan"
	KindVenueSearch     Kind = "venue_search"
	KindChoosePlace     Kind = "choose_place"
	KindStagePlace      Kind = "stage_place"
	KindFreeform        Kind = "freeform"
)

// Action is a parsed action identifier.
type Action struct {
	Kind Kind

	// Label is the canonical utterance for quick suggestions.
	Label string

	// Venue is the canonical venue label for venue searches.
	Venue string

	// PlaceID references a previously returned search result for the
	// place selection actions.
	PlaceID string

	// Raw is the original identifier, forwarded as user text for
	// freeform actions.
	Raw string
}

// quickSuggestions maps event-type shortcut identifiers to the
// canonical utterance forwarded to the extraction endpoint. Order of
// menuOrder drives the initial quick-pick menu.
var quickSuggestions = map[string]string{
	"suggest_birthday":  "birthday party",
	"suggest_wedding":   "wedding",
	"suggest_trip":      "group trip",
	"suggest_party":     "house party",
	"suggest_picnic":    "picnic",
	"suggest_meetup":    "meetup",
	"suggest_corporate": "corporate event",
}

var menuOrder = []string{
	"suggest_birthday",
	"suggest_wedding",
	"suggest_trip",
	"suggest_party",
	"suggest_picnic",
	"suggest_meetup",
	"suggest_corporate",
}

var menuIcons = map[string]string{
	"suggest_birthday":  "cake",
	"suggest_wedding":   "rings",
	"suggest_trip":      "luggage",
	"suggest_party":     "confetti",
	"suggest_picnic":    "basket",
	"suggest_meetup":    "people",
	"suggest_corporate": "briefcase",
}

// venueAliases maps venue-type synonyms, including the localized forms
// the original UI emits, to one canonical venue label.
var venueAliases = map[string]string{
	"hotel":       "hotel",
	"hotels":      "hotel",
	"lodging":     "hotel",
	"מלון":        "hotel",
	"restaurant":  "restaurant",
	"restaurants": "restaurant",
	"dining":      "restaurant",
	"food":        "restaurant",
	"מסעדה":       "restaurant",
	"bar":         "bar",
	"pub":         "bar",
	"בר":          "bar",
	"cafe":        "cafe",
	"coffee":      "cafe",
	"קפה":         "cafe",
	"venue":       "event hall",
	"hall":        "event hall",
	"אולם":        "event hall",
	"park":        "park",
	"garden":      "park",
	"פארק":        "park",
}

// localized control terms matched as substrings, mirroring the
// identifiers the original UI emits.
const (
	localizedPlanTerm  = "תוכנית"
	localizedHotelTerm = "מלון"
)

// ParseActionID resolves a raw action identifier into a tagged Action.
// Evaluation order: quick-suggestion table, structured controls, venue
// search patterns, then the freeform fallback.
func ParseActionID(id string) Action {
	trimmed := strings.TrimSpace(id)
	lower := strings.ToLower(trimmed)

	if label, ok := quickSuggestions[lower]; ok {
		return Action{Kind: KindQuickSuggestion, Label: label, Raw: trimmed}
	}

	switch lower {
	case "select_date":
		return Action{Kind: KindSelectDate, Raw: trimmed}
	case "create_date_poll":
		return Action{Kind: KindCreateDatePoll, Raw: trimmed}
	case "manual_location":
		return Action{Kind: KindManualLocation, Raw: trimmed}
	}
	if placeID := strings.TrimPrefix(trimmed, "choose_place_"); placeID != trimmed && placeID != "" {
		return Action{Kind: KindChoosePlace, PlaceID: placeID, Raw: trimmed}
	}
	if placeID := strings.TrimPrefix(trimmed, "add_poll_option_"); placeID != trimmed && placeID != "" {
		return Action{Kind: KindStagePlace, PlaceID: placeID, Raw: trimmed}
	}
	if lower == "generate_plan" || strings.Contains(lower, "plan") || strings.Contains(trimmed, localizedPlanTerm) {
		return Action{Kind: KindGeneratePlan, Raw: trimmed}
	}

	if venue, ok := parseVenueSearch(trimmed, lower); ok {
		return Action{Kind: KindVenueSearch, Venue: venue, Raw: trimmed}
	}

	return Action{Kind: KindFreeform, Raw: trimmed}
}

func parseVenueSearch(raw, lower string) (string, bool) {
	var term string
	switch {
	case strings.HasPrefix(lower, "search_places_"):
		term = strings.TrimPrefix(lower, "search_places_")
	case strings.HasPrefix(lower, "search_"):
		term = strings.TrimPrefix(lower, "search_")
	case strings.Contains(lower, "hotel") || strings.Contains(raw, localizedHotelTerm):
		return "hotel", true
	default:
		return "", false
	}

	term = strings.TrimSpace(strings.ReplaceAll(term, "_", " "))
	if term == "" {
		return "", false
	}
	if canonical, ok := venueAliases[term]; ok {
		return canonical, true
	}
	// Unknown venue types search as-is rather than dead-ending.
	return term, true
}

// CanonicalVenue resolves a venue-type synonym to its canonical label,
// falling back to the input itself.
func CanonicalVenue(term string) string {
	if canonical, ok := venueAliases[strings.ToLower(strings.TrimSpace(term))]; ok {
		return canonical
	}
	return term
}
