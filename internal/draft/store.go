// Package draft holds the accumulating event description and the
// ordered transcript for one conversation session. Pure data plus a
// merge operation; no I/O.
package draft

import (
	"github.com/gatherly-ai/event-concierge/internal/model"
)

// Store owns the draft and transcript for a single session. It is not
// safe for concurrent use; the controller serializes all access.
type Store struct {
	draft      model.EventDraft
	transcript []model.Message
}

// NewStore creates an empty draft store.
func NewStore() *Store {
	return &Store{}
}

// Draft returns a snapshot of the current draft.
func (s *Store) Draft() model.EventDraft {
	return s.draft
}

// Merge applies a shallow field-by-field overwrite (later values win),
// then re-enforces the exclusivity invariants: a concrete event date
// clears the date poll flag and vice versa, and likewise for a
// concrete location versus a location poll. Idempotent for repeated
// identical patches. Returns the resulting draft.
func (s *Store) Merge(patch model.DraftPatch) model.EventDraft {
	d := &s.draft

	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Category != nil {
		d.Category = *patch.Category
	}
	if patch.EventDate != nil {
		d.EventDate = patch.EventDate
	}
	if patch.EndDate != nil {
		d.EndDate = patch.EndDate
	}
	if patch.DatePollEnabled != nil {
		d.DatePollEnabled = *patch.DatePollEnabled
	}
	if patch.Location != nil {
		d.Location = *patch.Location
	}
	if patch.LocationPollEnabled != nil {
		d.LocationPollEnabled = *patch.LocationPollEnabled
	}
	if patch.LocationPollOptions != nil {
		d.LocationPollOptions = patch.LocationPollOptions
	}
	if patch.VenuePreference != nil {
		d.VenuePreference = *patch.VenuePreference
	}
	if patch.Participants != nil && *patch.Participants >= 0 {
		d.Participants = *patch.Participants
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.IsRecurring != nil {
		d.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurrenceRule != nil {
		d.RecurrenceRule = *patch.RecurrenceRule
	}
	if patch.Privacy != nil {
		d.Privacy = *patch.Privacy
	}

	// Exclusivity: the side set by this patch wins, the opposite side
	// is cleared. A patch setting both leaves the concrete value.
	if patch.EventDate != nil && d.EventDate != nil {
		d.DatePollEnabled = false
	} else if patch.DatePollEnabled != nil && d.DatePollEnabled {
		d.EventDate = nil
		d.EndDate = nil
	}
	if patch.Location != nil && d.Location != "" {
		d.LocationPollEnabled = false
	} else if patch.LocationPollEnabled != nil && d.LocationPollEnabled {
		d.Location = ""
	}

	return s.draft
}

// StagePollOption adds a place to the staged location poll options,
// deduplicating by place ID, and marks the location poll enabled.
func (s *Store) StagePollOption(place model.PlaceRecord) model.EventDraft {
	for _, opt := range s.draft.LocationPollOptions {
		if opt.PlaceID == place.PlaceID {
			return s.draft
		}
	}
	opts := append(s.draft.LocationPollOptions, place)
	return s.Merge(model.DraftPatch{
		LocationPollEnabled: model.Bool(true),
		LocationPollOptions: opts,
	})
}

// StagedOptions returns the staged location poll options.
func (s *Store) StagedOptions() []model.PlaceRecord {
	return s.draft.LocationPollOptions
}

// Append adds a message to the transcript. Messages are never mutated
// or removed once appended.
func (s *Store) Append(msg model.Message) {
	s.transcript = append(s.transcript, msg)
}

// Transcript returns the ordered transcript.
func (s *Store) Transcript() []model.Message {
	return s.transcript
}

// LastMessage returns the most recent message, or nil when the
// transcript is empty.
func (s *Store) LastMessage() *model.Message {
	if len(s.transcript) == 0 {
		return nil
	}
	return &s.transcript[len(s.transcript)-1]
}
