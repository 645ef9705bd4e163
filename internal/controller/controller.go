// Package controller coordinates one conversation session: it owns the
// draft store and transcript, routes user input and UI actions through
// the chat and dispatch layers, and triggers the creation pipeline on
// confirmation.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly-ai/event-concierge/internal/chat"
	"github.com/gatherly-ai/event-concierge/internal/dispatch"
	"github.com/gatherly-ai/event-concierge/internal/draft"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/pipeline"
	"github.com/gatherly-ai/event-concierge/internal/plan"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
	"github.com/gatherly-ai/event-concierge/pkg/metrics"
)

// State is the controller's serialization gate. Submissions are only
// accepted in StateIdle; there is no cancellation of an in-flight turn.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitingTurn State = "awaiting_turn"
	StateCommitting   State = "committing"
)

var (
	// ErrBusy rejects a submission while a previous one is in flight.
	ErrBusy = errors.New("a turn is already in flight")

	// ErrSessionClosed rejects submissions after a successful commit;
	// the draft and transcript are discarded when the session ends.
	ErrSessionClosed = errors.New("session is closed")
)

const apologyReply = "Sorry, I'm having trouble thinking right now. Give me a moment and try again."

// Controller owns a single long-lived draft store and transcript for
// one conversation session.
type Controller struct {
	sessionID string
	userID    string

	chatAdapter chat.Adapter
	dispatcher  *dispatch.Dispatcher
	planner     plan.Adapter
	pipeline    *pipeline.Pipeline
	logger      *logger.Logger

	mu         sync.Mutex
	state      State
	closed     bool
	store      *draft.Store
	lastPlaces []model.PlaceRecord
	result     *model.CreationResult
}

// New creates a session controller and seeds the transcript with the
// greeting and the locally synthesized event-type quick picks.
func New(
	sessionID, userID string,
	chatAdapter chat.Adapter,
	dispatcher *dispatch.Dispatcher,
	planner plan.Adapter,
	pipe *pipeline.Pipeline,
	log *logger.Logger,
) *Controller {
	c := &Controller{
		sessionID:   sessionID,
		userID:      userID,
		chatAdapter: chatAdapter,
		dispatcher:  dispatcher,
		planner:     planner,
		pipeline:    pipe,
		logger:      log.With("session_id", sessionID),
		state:       StateIdle,
		store:       draft.NewStore(),
	}

	c.appendAssistant(
		"Hi! I'm your event planning assistant. What are we organizing?",
		dispatch.QuickPickMenu(), "", "")

	return c
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string { return c.sessionID }

// UserID returns the owning user.
func (c *Controller) UserID() string { return c.userID }

// State returns the current serialization state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether the session has ended.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Result returns the creation result once the session has committed.
func (c *Controller) Result() *model.CreationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Draft returns a snapshot of the current draft.
func (c *Controller) Draft() model.EventDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Draft()
}

// Transcript returns the ordered transcript.
func (c *Controller) Transcript() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Transcript()
}

// snapshot, mergePatch and stageOption guard the store: only one turn
// mutates at a time, but transcript and draft reads may come from
// other goroutines while a turn is in flight.
func (c *Controller) snapshot() model.EventDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Draft()
}

func (c *Controller) mergePatch(patch model.DraftPatch) model.EventDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Merge(patch)
}

func (c *Controller) stageOption(place model.PlaceRecord) model.EventDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.StagePollOption(place)
}

func (c *Controller) begin(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	if c.state != StateIdle {
		return ErrBusy
	}
	c.state = next
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

// SubmitUtterance handles free-form user text. It appends the user
// message, runs one extraction turn, merges the extracted patch and
// appends exactly one assistant message. A chat fault is recovered
// locally with an apology and a retry affordance; it is never
// propagated to the caller.
func (c *Controller) SubmitUtterance(ctx context.Context, text string) (*model.TurnResponse, error) {
	if err := c.begin(StateAwaitingTurn); err != nil {
		return nil, err
	}
	defer c.end()
	defer observeTurn(time.Now())

	msg := c.runChatTurn(ctx, text)
	return c.turnResponse(msg), nil
}

// SubmitAction handles a structured UI action. Every branch ends by
// appending exactly one assistant message. The generate-plan action
// only requests the confirmation summary; committing requires the
// distinct Confirm call.
func (c *Controller) SubmitAction(ctx context.Context, actionID string) (*model.TurnResponse, error) {
	if err := c.begin(StateAwaitingTurn); err != nil {
		return nil, err
	}
	defer c.end()
	defer observeTurn(time.Now())

	action := dispatch.ParseActionID(actionID)
	c.logger.Debug("action dispatched", "action_id", actionID, "kind", string(action.Kind))

	var msg model.Message
	switch action.Kind {
	case dispatch.KindChoosePlace:
		msg = c.choosePlace(action.PlaceID)
	case dispatch.KindStagePlace:
		msg = c.stagePlace(action.PlaceID)
	case dispatch.KindGeneratePlan:
		msg = c.confirmationSummary()
	default:
		msg = c.applyOutcome(ctx, c.dispatcher.Dispatch(ctx, action, c.snapshot()))
	}

	return c.turnResponse(msg), nil
}

// Confirm runs the plan synthesis (best-effort) and the creation
// pipeline for the accumulated draft. On success the session is closed
// and its draft discarded. The pipeline is not idempotent; the
// Committing state is the gate that keeps a double confirmation from
// creating two events.
func (c *Controller) Confirm(ctx context.Context) (*model.CreationResult, *model.Message, error) {
	if err := c.begin(StateCommitting); err != nil {
		return nil, nil, err
	}
	defer c.end()

	snapshot := c.snapshot()

	if err := pipeline.Validate(snapshot, c.userID); err != nil {
		msg := c.appendAssistant(
			validationReply(err),
			[]model.ActionSuggestion{
				{Label: "Keep editing", ActionID: "manual_location", Icon: "edit"},
			}, "", "")
		return nil, &msg, err
	}

	// Plan synthesis is best-effort; the pipeline proceeds with an
	// empty plan on any fault.
	var generated *model.GeneratedPlan
	if c.planner != nil {
		p, err := c.planner.Synthesize(ctx, snapshot)
		if err != nil {
			c.logger.Warn("plan synthesis failed, committing without a plan", "error", err)
		} else {
			generated = p
		}
	}

	result, err := c.pipeline.Commit(ctx, snapshot, generated, c.userID)
	if err != nil {
		msg := c.appendAssistant(
			"I couldn't create the event just now. Nothing was saved - want to try again?",
			[]model.ActionSuggestion{
				{Label: "Try again", ActionID: "confirm_create", Icon: "retry"},
			}, "", "")
		return nil, &msg, err
	}

	text := fmt.Sprintf("Done! %s is ready: %d tasks and %d itinerary items created.",
		displayTitle(snapshot), result.TasksCreated, result.ItineraryCreated)
	if result.TasksFailed+result.ItineraryFailed+result.PollsFailed > 0 {
		text += fmt.Sprintf(" %d items couldn't be saved and were skipped.",
			result.TasksFailed+result.ItineraryFailed+result.PollsFailed)
	}
	msg := c.appendAssistant(text, nil, "", "")

	c.mu.Lock()
	c.closed = true
	c.result = result
	c.mu.Unlock()

	c.logger.Info("session committed", "event_id", result.EventID)
	return result, &msg, nil
}

// runChatTurn appends the user message, performs one extraction turn
// and appends the resulting assistant message.
func (c *Controller) runChatTurn(ctx context.Context, text string) model.Message {
	c.appendMessage(model.RoleUser, text, nil, "", "")

	turn, err := c.chatAdapter.SendTurn(ctx, text, c.snapshot())
	if err != nil {
		if !errors.Is(err, chat.ErrChatUnavailable) {
			c.logger.Error("chat turn failed with unexpected error", "error", err)
		}
		return c.appendAssistant(apologyReply, []model.ActionSuggestion{
			{Label: "Try again", ActionID: text, Icon: "retry"},
		}, "", "")
	}

	if !turn.Extracted.IsEmpty() {
		c.mergePatch(turn.Extracted)
	}
	return c.appendAssistant(turn.Reply, turn.SuggestedActions, turn.ExpertTip, turn.RiskWarning)
}

// applyOutcome applies a dispatch outcome: merge the patch, remember
// search results, then either forward the synthesized utterance to the
// chat adapter or append the local reply.
func (c *Controller) applyOutcome(ctx context.Context, outcome *dispatch.Outcome) model.Message {
	if outcome.Patch != nil {
		c.mergePatch(*outcome.Patch)
	}

	if outcome.RequestConfirmation {
		return c.confirmationSummary()
	}

	if outcome.ForwardUtterance != "" {
		return c.runChatTurn(ctx, outcome.ForwardUtterance)
	}

	actions := outcome.Actions
	if len(outcome.Places) > 0 {
		c.mu.Lock()
		c.lastPlaces = outcome.Places
		c.mu.Unlock()
		actions = append(actions, placeActions(outcome.Places)...)
	}
	return c.appendAssistant(outcome.Reply, actions, "", "")
}

func (c *Controller) choosePlace(placeID string) model.Message {
	place, ok := c.findPlace(placeID)
	if !ok {
		return c.appendAssistant(
			"I couldn't find that place anymore - try searching again.", nil, "", "")
	}

	location := place.Name
	if place.Address != "" {
		location = fmt.Sprintf("%s, %s", place.Name, place.Address)
	}
	c.mergePatch(model.DraftPatch{Location: model.String(location)})

	return c.appendAssistant(
		fmt.Sprintf("Great choice - I set the location to %s.", place.Name),
		[]model.ActionSuggestion{
			{Label: "Pick a date", ActionID: "select_date", Icon: "calendar"},
			{Label: "Generate the plan", ActionID: "generate_plan", Icon: "sparkles"},
		}, "", "")
}

func (c *Controller) stagePlace(placeID string) model.Message {
	place, ok := c.findPlace(placeID)
	if !ok {
		return c.appendAssistant(
			"I couldn't find that place anymore - try searching again.", nil, "", "")
	}

	d := c.stageOption(place)
	text := fmt.Sprintf("Added %s to the location poll (%d option(s) so far).",
		place.Name, len(d.LocationPollOptions))
	if len(d.LocationPollOptions) < 2 {
		text += " Add at least one more so there's something to vote on."
	}
	return c.appendAssistant(text, []model.ActionSuggestion{
		{Label: "Generate the plan", ActionID: "generate_plan", Icon: "sparkles"},
	}, "", "")
}

func (c *Controller) findPlace(placeID string) (model.PlaceRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.lastPlaces {
		if p.PlaceID == placeID {
			return p, true
		}
	}
	return model.PlaceRecord{}, false
}

// confirmationSummary renders the pre-commit summary of the draft with
// the explicit confirm affordance.
func (c *Controller) confirmationSummary() model.Message {
	d := c.snapshot()

	var b strings.Builder
	b.WriteString("Here's what I have so far:\n")
	fmt.Fprintf(&b, "• Event: %s\n", displayTitle(d))
	switch {
	case d.EventDate != nil && d.EndDate != nil:
		fmt.Fprintf(&b, "• When: %s - %s\n", d.EventDate.Format("Jan 2, 2006"), d.EndDate.Format("Jan 2, 2006"))
	case d.EventDate != nil:
		fmt.Fprintf(&b, "• When: %s\n", d.EventDate.Format("Jan 2, 2006"))
	case d.DatePollEnabled:
		b.WriteString("• When: participants will vote in a date poll\n")
	default:
		b.WriteString("• When: not set yet\n")
	}
	switch {
	case d.Location != "":
		fmt.Fprintf(&b, "• Where: %s\n", d.Location)
	case d.LocationPollEnabled:
		fmt.Fprintf(&b, "• Where: location poll with %d option(s)\n", len(d.LocationPollOptions))
	default:
		b.WriteString("• Where: not set yet\n")
	}
	if d.Participants > 0 {
		fmt.Fprintf(&b, "• Participants: %d\n", d.Participants)
	}
	if d.IsRecurring {
		b.WriteString("• Repeats\n")
	}
	b.WriteString("Ready? I'll generate a preparation plan and create everything.")

	return c.appendAssistant(b.String(), []model.ActionSuggestion{
		{Label: "Create the event", ActionID: "confirm_create", Icon: "check"},
		{Label: "Keep editing", ActionID: "manual_location", Icon: "edit"},
	}, "", "")
}

func (c *Controller) turnResponse(msg model.Message) *model.TurnResponse {
	return &model.TurnResponse{
		Message: msg,
		Draft:   c.snapshot(),
	}
}

func (c *Controller) appendAssistant(text string, actions []model.ActionSuggestion, tip, risk string) model.Message {
	return c.appendMessage(model.RoleAssistant, text, actions, tip, risk)
}

func (c *Controller) appendMessage(role model.Role, text string, actions []model.ActionSuggestion, tip, risk string) model.Message {
	msg := model.Message{
		ID:          uuid.Must(uuid.NewV7()).String(),
		SessionID:   c.sessionID,
		Role:        role,
		Text:        text,
		Actions:     actions,
		ExpertTip:   tip,
		RiskWarning: risk,
		CreatedAt:   time.Now(),
	}
	c.mu.Lock()
	c.store.Append(msg)
	c.mu.Unlock()
	metrics.TurnsTotal.WithLabelValues(string(role)).Inc()
	return msg
}

func observeTurn(start time.Time) {
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
}

// placeActions renders one "set location" and one "add to poll"
// affordance per search result.
func placeActions(places []model.PlaceRecord) []model.ActionSuggestion {
	actions := make([]model.ActionSuggestion, 0, len(places)*2)
	for _, p := range places {
		actions = append(actions,
			model.ActionSuggestion{
				Label:    p.Name,
				ActionID: "choose_place_" + p.PlaceID,
				Icon:     "pin",
			},
			model.ActionSuggestion{
				Label:    "Add " + p.Name + " to poll",
				ActionID: "add_poll_option_" + p.PlaceID,
				Icon:     "vote",
			})
	}
	return actions
}

func displayTitle(d model.EventDraft) string {
	switch {
	case d.Title != "":
		return d.Title
	case d.Category != "" && d.Location != "":
		return fmt.Sprintf("%s in %s", d.Category, d.Location)
	case d.Category != "":
		return d.Category
	case d.Location != "":
		return fmt.Sprintf("Event in %s", d.Location)
	default:
		return "your event"
	}
}

func validationReply(err error) string {
	if errors.Is(err, pipeline.ErrValidation) {
		return fmt.Sprintf("Almost there - %s.", trimValidation(err))
	}
	return "Something about the draft isn't ready yet."
}

func trimValidation(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		return s[i+2:]
	}
	return s
}
