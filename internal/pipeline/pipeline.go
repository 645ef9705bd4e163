// Package pipeline executes the ordered, best-effort sequence of
// remote writes that turns a confirmed draft into a persisted event
// and its dependent artifacts. Only the root event creation is fatal;
// every later sub-step is wrapped so one failing task, itinerary item
// or poll never prevents the remaining items or the overall success
// outcome.
//
// The pipeline is NOT idempotent: committing the same draft twice
// creates two distinct events. Callers gate the confirmation trigger.
// Steps are not transactional either; an interruption mid-run leaves
// the root event with some dependents missing, and the result counts
// report exactly what was created.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/notify"
	"github.com/gatherly-ai/event-concierge/internal/store"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
	"github.com/gatherly-ai/event-concierge/pkg/metrics"
)

var (
	// ErrValidation rejects a commit before any network call: no user
	// identity, no way to synthesize a title, or a location poll staged
	// with fewer than two options.
	ErrValidation = errors.New("draft failed validation")

	// ErrEventCreateFailed is the fatal root-event fault. Retryable:
	// re-entering the pipeline resends the whole confirmed draft.
	ErrEventCreateFailed = errors.New("event creation failed")
)

// StepKind identifies a best-effort sub-step.
type StepKind string

const (
	StepMembership StepKind = "membership"
	StepTask       StepKind = "task"
	StepItinerary  StepKind = "itinerary"
	StepRecurrence StepKind = "recurrence"
	StepPoll       StepKind = "poll"
	StepNotify     StepKind = "notify"
)

// StepResult records the outcome of one best-effort sub-step, making
// the tolerance policy visible in the type rather than hidden in
// recover blocks.
type StepResult struct {
	Step  StepKind
	Label string
	Err   error
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool { return r.Err == nil }

// Pipeline performs the creation sequence against the remote store.
type Pipeline struct {
	store    store.Store
	notifier notify.Notifier
	logger   *logger.Logger
}

// New creates a creation pipeline.
func New(st store.Store, notifier notify.Notifier, log *logger.Logger) *Pipeline {
	return &Pipeline{
		store:    st,
		notifier: notifier,
		logger:   log,
	}
}

// Validate checks a confirmed draft before any network call.
func Validate(draft model.EventDraft, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: no user identity", ErrValidation)
	}
	if _, err := resolveTitle(draft); err != nil {
		return err
	}
	if draft.LocationPollEnabled && len(draft.LocationPollOptions) < 2 {
		return fmt.Errorf("%w: a location poll needs at least two options, got %d",
			ErrValidation, len(draft.LocationPollOptions))
	}
	return nil
}

// resolveTitle returns the draft title, synthesizing
// "<category> in <destination>" when absent. A draft with neither a
// title nor anything to synthesize one from is rejected.
func resolveTitle(draft model.EventDraft) (string, error) {
	switch {
	case draft.Title != "":
		return draft.Title, nil
	case draft.Category != "" && draft.Location != "":
		return fmt.Sprintf("%s in %s", draft.Category, draft.Location), nil
	case draft.Category != "":
		return draft.Category, nil
	case draft.Location != "":
		return fmt.Sprintf("Event in %s", draft.Location), nil
	default:
		return "", fmt.Errorf("%w: no title and nothing to synthesize one from", ErrValidation)
	}
}

// Commit runs the creation sequence, strictly sequential, each write
// awaited before the next. plan may be nil; its absence degrades the
// created event but never blocks it.
func (p *Pipeline) Commit(ctx context.Context, draft model.EventDraft, plan *model.GeneratedPlan, userID string) (*model.CreationResult, error) {
	start := time.Now()

	if err := Validate(draft, userID); err != nil {
		return nil, err
	}
	title, _ := resolveTitle(draft)

	event := model.Event{
		OrganizerID:  userID,
		Title:        title,
		Category:     draft.Category,
		Description:  draft.Description,
		EventDate:    draft.EventDate,
		EndDate:      draft.EndDate,
		Location:     draft.Location,
		Participants: draft.Participants,
		IsRecurring:  draft.IsRecurring,
		Privacy:      draft.Privacy,
	}
	if plan != nil {
		event.BudgetEstimate = plan.BudgetEstimate
	}

	created, err := p.store.CreateEvent(ctx, event)
	if err != nil {
		p.logger.Error("root event creation failed", "title", title, "error", err)
		metrics.PipelineStepsTotal.WithLabelValues("event", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrEventCreateFailed, err)
	}
	metrics.PipelineStepsTotal.WithLabelValues("event", "ok").Inc()
	metrics.EventsCreatedTotal.Inc()
	p.logger.Info("event created", "event_id", created.ID, "title", created.Title)

	var steps []StepResult

	steps = append(steps, p.runStep(StepMembership, "organizer", func() error {
		_, err := p.store.CreateMembership(ctx, model.Membership{
			EventID: created.ID,
			UserID:  userID,
			Role:    model.MembershipRoleOrganizer,
		})
		return err
	}))

	if plan != nil {
		for _, task := range plan.Tasks {
			task := task
			steps = append(steps, p.runStep(StepTask, task.Title, func() error {
				_, err := p.store.CreateTask(ctx, model.Task{
					EventID:       created.ID,
					Title:         task.Title,
					Description:   task.Description,
					Category:      task.Category,
					Priority:      task.Priority,
					DueDate:       task.DueDate,
					VendorTip:     task.VendorTip,
					EstimatedCost: task.EstimatedCost,
				})
				return err
			}))
		}

		for _, stop := range plan.Itinerary {
			stop := stop
			steps = append(steps, p.runStep(StepItinerary, stop.Title, func() error {
				_, err := p.store.CreateItineraryItem(ctx, model.ItineraryItem{
					EventID:  created.ID,
					Title:    stop.Title,
					Location: stop.Location,
					Date:     stop.Date,
					EndDate:  stop.EndDate,
					Order:    stop.Order,
				})
				return err
			}))
		}
	}

	if draft.IsRecurring {
		rule := draft.RecurrenceRule
		if rule == "" {
			rule = "FREQ=WEEKLY"
		}
		steps = append(steps, p.runStep(StepRecurrence, rule, func() error {
			_, err := p.store.CreateRecurrenceRule(ctx, model.RecurrenceRule{
				EventID: created.ID,
				Rule:    rule,
			})
			return err
		}))
	}

	if draft.DatePollEnabled {
		steps = append(steps, p.runStep(StepPoll, "date", func() error {
			_, err := p.store.CreatePoll(ctx, model.Poll{
				EventID:  created.ID,
				Kind:     model.PollKindDate,
				Question: fmt.Sprintf("When should %q happen?", title),
			})
			return err
		}))
	}
	if draft.LocationPollEnabled {
		options := make([]model.PollOption, 0, len(draft.LocationPollOptions))
		for _, place := range draft.LocationPollOptions {
			label := place.Name
			if place.Address != "" {
				label = fmt.Sprintf("%s, %s", place.Name, place.Address)
			}
			options = append(options, model.PollOption{Label: label, PlaceID: place.PlaceID})
		}
		steps = append(steps, p.runStep(StepPoll, "location", func() error {
			_, err := p.store.CreatePoll(ctx, model.Poll{
				EventID:  created.ID,
				Kind:     model.PollKindLocation,
				Question: fmt.Sprintf("Where should %q happen?", title),
				Options:  options,
			})
			return err
		}))
	}

	result := summarize(created.ID, steps)

	// Fire-and-forget completion notification.
	notifyRes := p.runStep(StepNotify, "organizer", func() error {
		return p.notifier.Publish(ctx, model.Notification{
			UserID:   userID,
			Title:    "Your event is ready",
			Message:  fmt.Sprintf("%q was created with %d tasks and %d itinerary items.", title, result.TasksCreated, result.ItineraryCreated),
			EventID:  created.ID,
			Priority: model.NotificationPriorityNormal,
		})
	})
	_ = notifyRes

	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// runStep executes one best-effort sub-step: log and count the
// failure, never abort.
func (p *Pipeline) runStep(kind StepKind, label string, fn func() error) StepResult {
	err := fn()
	if err != nil {
		p.logger.Warn("pipeline step failed, continuing",
			"step", string(kind), "label", label, "error", err)
		metrics.PipelineStepsTotal.WithLabelValues(string(kind), "error").Inc()
	} else {
		metrics.PipelineStepsTotal.WithLabelValues(string(kind), "ok").Inc()
	}
	return StepResult{Step: kind, Label: label, Err: err}
}

// summarize reduces the step results into the creation counts.
func summarize(eventID string, steps []StepResult) *model.CreationResult {
	result := &model.CreationResult{EventID: eventID}
	for _, s := range steps {
		switch s.Step {
		case StepTask:
			if s.OK() {
				result.TasksCreated++
			} else {
				result.TasksFailed++
			}
		case StepItinerary:
			if s.OK() {
				result.ItineraryCreated++
			} else {
				result.ItineraryFailed++
			}
		case StepPoll:
			if s.OK() {
				result.PollsCreated++
			} else {
				result.PollsFailed++
			}
		case StepRecurrence:
			result.RecurrenceSet = s.OK()
		}
	}
	return result
}
