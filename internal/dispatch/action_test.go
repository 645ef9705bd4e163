package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseActionID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want Action
	}{
		{
			name: "quick suggestion",
			id:   "suggest_birthday",
			want: Action{Kind: KindQuickSuggestion, Label: "birthday party", Raw: "suggest_birthday"},
		},
		{
			name: "quick suggestion is case insensitive",
			id:   "Suggest_Trip",
			want: Action{Kind: KindQuickSuggestion, Label: "group trip", Raw: "Suggest_Trip"},
		},
		{
			name: "select date",
			id:   "select_date",
			want: Action{Kind: KindSelectDate, Raw: "select_date"},
		},
		{
			name: "create date poll",
			id:   "create_date_poll",
			want: Action{Kind: KindCreateDatePoll, Raw: "create_date_poll"},
		},
		{
			name: "manual location",
			id:   "manual_location",
			want: Action{Kind: KindManualLocation, Raw: "manual_location"},
		},
		{
			name: "choose place carries the place id",
			id:   "choose_place_abc123",
			want: Action{Kind: KindChoosePlace, PlaceID: "abc123", Raw: "choose_place_abc123"},
		},
		{
			name: "stage poll option carries the place id",
			id:   "add_poll_option_abc123",
			want: Action{Kind: KindStagePlace, PlaceID: "abc123", Raw: "add_poll_option_abc123"},
		},
		{
			name: "generate plan",
			id:   "generate_plan",
			want: Action{Kind: KindGeneratePlan, Raw: "generate_plan"},
		},
		{
			name: "plan as substring",
			id:   "show_me_the_plan",
			want: Action{Kind: KindGeneratePlan, Raw: "show_me_the_plan"},
		},
		{
			name: "localized plan term",
			id:   "בנה תוכנית",
			want: Action{Kind: KindGeneratePlan, Raw: "בנה תוכנית"},
		},
		{
			name: "venue search with canonical alias",
			id:   "search_places_hotels",
			want: Action{Kind: KindVenueSearch, Venue: "hotel", Raw: "search_places_hotels"},
		},
		{
			name: "venue search short prefix",
			id:   "search_restaurants",
			want: Action{Kind: KindVenueSearch, Venue: "restaurant", Raw: "search_restaurants"},
		},
		{
			name: "venue search unknown type searches as-is",
			id:   "search_places_karaoke_bars",
			want: Action{Kind: KindVenueSearch, Venue: "karaoke bars", Raw: "search_places_karaoke_bars"},
		},
		{
			name: "hotel as substring",
			id:   "find_me_a_hotel",
			want: Action{Kind: KindVenueSearch, Venue: "hotel", Raw: "find_me_a_hotel"},
		},
		{
			name: "localized hotel term",
			id:   "חפש מלון",
			want: Action{Kind: KindVenueSearch, Venue: "hotel", Raw: "חפש מלון"},
		},
		{
			name: "freeform fallback",
			id:   "I want something on the beach",
			want: Action{Kind: KindFreeform, Raw: "I want something on the beach"},
		},
		{
			name: "whitespace is trimmed",
			id:   "  suggest_picnic  ",
			want: Action{Kind: KindQuickSuggestion, Label: "picnic", Raw: "suggest_picnic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseActionID(tt.id))
		})
	}
}

func TestCanonicalVenue(t *testing.T) {
	assert.Equal(t, "hotel", CanonicalVenue("Lodging"))
	assert.Equal(t, "restaurant", CanonicalVenue("מסעדה"))
	assert.Equal(t, "event hall", CanonicalVenue("hall"))
	assert.Equal(t, "escape room", CanonicalVenue("escape room"))
}

func TestQuickPickMenuOrderAndLabels(t *testing.T) {
	menu := QuickPickMenu()

	assert.Len(t, menu, len(menuOrder))
	assert.Equal(t, "suggest_birthday", menu[0].ActionID)
	assert.Equal(t, "birthday party", menu[0].Label)
	assert.Equal(t, "cake", menu[0].Icon)
	assert.Equal(t, "suggest_corporate", menu[len(menu)-1].ActionID)
}
