// Package model defines data structures for the event planning assistant.
package model

import (
	"time"
)

// Privacy controls who can see a created event.
type Privacy string

const (
	PrivacyPrivate Privacy = "private"
	PrivacyFriends Privacy = "friends"
	PrivacyPublic  Privacy = "public"
)

// EventDraft is the structured event description accumulated over a
// conversation session. Fields fill in incrementally as the assistant
// extracts them from user turns; zero values mean "not yet known".
type EventDraft struct {
	Title               string        `json:"title,omitempty"`
	Category            string        `json:"category,omitempty"`
	EventDate           *time.Time    `json:"event_date,omitempty"`
	EndDate             *time.Time    `json:"end_date,omitempty"`
	DatePollEnabled     bool          `json:"date_poll_enabled,omitempty"`
	Location            string        `json:"location,omitempty"`
	LocationPollEnabled bool          `json:"location_poll_enabled,omitempty"`
	LocationPollOptions []PlaceRecord `json:"location_poll_options,omitempty"`
	VenuePreference     string        `json:"venue_preference,omitempty"`
	Participants        int           `json:"participants,omitempty"`
	Description         string        `json:"description,omitempty"`
	IsRecurring         bool          `json:"is_recurring,omitempty"`
	RecurrenceRule      string        `json:"recurrence_rule,omitempty"`
	Privacy             Privacy       `json:"privacy,omitempty"`
}

// HasDestination reports whether a destination is known, either as a
// confirmed location or a staged location poll.
func (d EventDraft) HasDestination() bool {
	return d.Location != "" || d.LocationPollEnabled
}

// DraftPatch is a partial EventDraft. Nil fields are "no change"; set
// fields overwrite. Produced by the chat extraction endpoint and by
// action handlers.
type DraftPatch struct {
	Title               *string       `json:"title,omitempty"`
	Category            *string       `json:"category,omitempty"`
	EventDate           *time.Time    `json:"event_date,omitempty"`
	EndDate             *time.Time    `json:"end_date,omitempty"`
	DatePollEnabled     *bool         `json:"date_poll_enabled,omitempty"`
	Location            *string       `json:"location,omitempty"`
	LocationPollEnabled *bool         `json:"location_poll_enabled,omitempty"`
	LocationPollOptions []PlaceRecord `json:"location_poll_options,omitempty"`
	VenuePreference     *string       `json:"venue_preference,omitempty"`
	Participants        *int          `json:"participants,omitempty"`
	Description         *string       `json:"description,omitempty"`
	IsRecurring         *bool         `json:"is_recurring,omitempty"`
	RecurrenceRule      *string       `json:"recurrence_rule,omitempty"`
	Privacy             *Privacy      `json:"privacy,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p DraftPatch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.EventDate == nil &&
		p.EndDate == nil && p.DatePollEnabled == nil && p.Location == nil &&
		p.LocationPollEnabled == nil && p.LocationPollOptions == nil &&
		p.VenuePreference == nil && p.Participants == nil &&
		p.Description == nil && p.IsRecurring == nil &&
		p.RecurrenceRule == nil && p.Privacy == nil
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for building patches.
func Int(i int) *int { return &i }
