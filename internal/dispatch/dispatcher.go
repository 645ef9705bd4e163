package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/places"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
	"github.com/gatherly-ai/event-concierge/pkg/metrics"
)

// Outcome is the result of dispatching one action. Exactly one of the
// following holds: ForwardUtterance is non-empty (the controller
// re-enters the chat adapter with it), Reply is non-empty (a locally
// synthesized assistant message), or RequestConfirmation is set (the
// controller renders the confirmation summary).
type Outcome struct {
	Patch               *model.DraftPatch
	ForwardUtterance    string
	Reply               string
	Actions             []model.ActionSuggestion
	Places              []model.PlaceRecord
	RequestConfirmation bool
}

// Dispatcher routes parsed actions to their handlers. It never runs
// the creation pipeline; the generate-plan path only requests
// confirmation.
type Dispatcher struct {
	searcher places.Searcher
	logger   *logger.Logger
}

// NewDispatcher creates an action dispatcher.
func NewDispatcher(searcher places.Searcher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		searcher: searcher,
		logger:   log,
	}
}

// Dispatch handles a parsed action against the current draft snapshot.
// Search faults are recovered here into a prompt for manual entry; no
// error ever escapes to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, draft model.EventDraft) *Outcome {
	metrics.ActionsDispatchedTotal.WithLabelValues(string(action.Kind)).Inc()

	switch action.Kind {
	case KindQuickSuggestion:
		return &Outcome{ForwardUtterance: action.Label}

	case KindSelectDate:
		return &Outcome{
			Reply: "When should it happen? Pick a date range, or let participants vote on one.",
			Actions: []model.ActionSuggestion{
				{Label: "Create a date poll", ActionID: "create_date_poll", Icon: "poll"},
			},
		}

	case KindCreateDatePoll:
		// The flag is patched locally, and the utterance is still
		// forwarded so the extraction state stays consistent.
		return &Outcome{
			Patch:            &model.DraftPatch{DatePollEnabled: model.Bool(true)},
			ForwardUtterance: "Let's create a date poll so participants can vote on the date.",
		}

	case KindManualLocation:
		return &Outcome{
			Reply: "Sure - type the venue or address and I'll add it to the event.",
		}

	case KindGeneratePlan:
		return &Outcome{RequestConfirmation: true}

	case KindVenueSearch:
		return d.dispatchVenueSearch(ctx, action, draft)

	default:
		return &Outcome{ForwardUtterance: action.Raw}
	}
}

func (d *Dispatcher) dispatchVenueSearch(ctx context.Context, action Action, draft model.EventDraft) *Outcome {
	patch := &model.DraftPatch{VenuePreference: model.String(action.Venue)}

	if draft.Location == "" {
		// No destination yet: prompt instead of searching.
		return &Outcome{
			Patch: patch,
			Reply: fmt.Sprintf("Where should I look for a %s? Tell me the city or area.", action.Venue),
			Actions: []model.ActionSuggestion{
				{Label: "Enter location manually", ActionID: "manual_location", Icon: "pin"},
			},
		}
	}

	results, err := d.searcher.Search(ctx, action.Venue, draft.Location)
	if err != nil {
		if !errors.Is(err, places.ErrSearchUnavailable) {
			d.logger.Error("venue search failed with unexpected error", "error", err)
		}
		metrics.VenueSearchesTotal.WithLabelValues("error").Inc()
		return &Outcome{
			Patch: patch,
			Reply: fmt.Sprintf("I couldn't reach the venue search right now. You can try again, or enter a %s manually.", action.Venue),
			Actions: []model.ActionSuggestion{
				{Label: "Try again", ActionID: action.Raw, Icon: "retry"},
				{Label: "Enter location manually", ActionID: "manual_location", Icon: "pin"},
			},
		}
	}

	if len(results) == 0 {
		metrics.VenueSearchesTotal.WithLabelValues("empty").Inc()
		return &Outcome{
			Patch: patch,
			Reply: fmt.Sprintf("I didn't find any %s options around %s. Want to enter one manually?", action.Venue, draft.Location),
			Actions: []model.ActionSuggestion{
				{Label: "Enter location manually", ActionID: "manual_location", Icon: "pin"},
			},
		}
	}

	metrics.VenueSearchesTotal.WithLabelValues("ok").Inc()
	return &Outcome{
		Patch:  patch,
		Reply:  fmt.Sprintf("Here are %d %s options around %s. Pick one, or select a few for a location poll.", len(results), action.Venue, draft.Location),
		Places: results,
	}
}

// QuickPickMenu returns the locally synthesized initial menu of
// event-type shortcuts.
func QuickPickMenu() []model.ActionSuggestion {
	menu := make([]model.ActionSuggestion, 0, len(menuOrder))
	for _, id := range menuOrder {
		menu = append(menu, model.ActionSuggestion{
			Label:    quickSuggestions[id],
			ActionID: id,
			Icon:     menuIcons[id],
		})
	}
	return menu
}
