package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly-ai/event-concierge/internal/chat"
	"github.com/gatherly-ai/event-concierge/internal/dispatch"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/pipeline"
	"github.com/gatherly-ai/event-concierge/internal/plan"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

type fakeChat struct {
	result *chat.TurnResult
	err    error

	utterances []string
	started    chan struct{}
	release    chan struct{}
}

func (f *fakeChat) SendTurn(ctx context.Context, utterance string, draft model.EventDraft) (*chat.TurnResult, error) {
	f.utterances = append(f.utterances, utterance)
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &chat.TurnResult{Reply: "Got it."}, nil
}

type fakeSearcher struct {
	results []model.PlaceRecord
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, venueLabel, locationLabel string) ([]model.PlaceRecord, error) {
	return f.results, f.err
}

type fakePlanner struct {
	plan  *model.GeneratedPlan
	err   error
	calls int
}

func (f *fakePlanner) Synthesize(ctx context.Context, draft model.EventDraft) (*model.GeneratedPlan, error) {
	f.calls++
	return f.plan, f.err
}

type fakeEventStore struct {
	nextID    int
	failEvent bool

	events []model.Event
	tasks  []model.Task
}

func (f *fakeEventStore) CreateEvent(ctx context.Context, event model.Event) (*model.Event, error) {
	if f.failEvent {
		return nil, errors.New("store down")
	}
	f.nextID++
	event.ID = fmt.Sprintf("evt-%d", f.nextID)
	f.events = append(f.events, event)
	return &event, nil
}

func (f *fakeEventStore) CreateMembership(ctx context.Context, m model.Membership) (*model.Membership, error) {
	return &m, nil
}

func (f *fakeEventStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeEventStore) CreateItineraryItem(ctx context.Context, item model.ItineraryItem) (*model.ItineraryItem, error) {
	return &item, nil
}

func (f *fakeEventStore) CreatePoll(ctx context.Context, poll model.Poll) (*model.Poll, error) {
	return &poll, nil
}

func (f *fakeEventStore) CreateRecurrenceRule(ctx context.Context, rule model.RecurrenceRule) (*model.RecurrenceRule, error) {
	return &rule, nil
}

type nopNotifier struct{}

func (nopNotifier) Publish(ctx context.Context, n model.Notification) error { return nil }

type testEnv struct {
	chat     *fakeChat
	searcher *fakeSearcher
	planner  *fakePlanner
	store    *fakeEventStore
}

func newTestController(t *testing.T, env *testEnv) *Controller {
	t.Helper()
	if env.chat == nil {
		env.chat = &fakeChat{}
	}
	if env.searcher == nil {
		env.searcher = &fakeSearcher{}
	}
	if env.planner == nil {
		env.planner = &fakePlanner{}
	}
	if env.store == nil {
		env.store = &fakeEventStore{}
	}

	log := logger.NewNop()
	var planner plan.Adapter = env.planner
	return New(
		"sess-1", "user-1",
		env.chat,
		dispatch.NewDispatcher(env.searcher, log),
		planner,
		pipeline.New(env.store, nopNotifier{}, log),
		log,
	)
}

func TestNewSeedsGreetingWithQuickPicks(t *testing.T) {
	c := newTestController(t, &testEnv{})

	transcript := c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, model.RoleAssistant, transcript[0].Role)
	assert.NotEmpty(t, transcript[0].Text)
	assert.Equal(t, len(dispatch.QuickPickMenu()), len(transcript[0].Actions))
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmitUtteranceMergesExtractedPatch(t *testing.T) {
	env := &testEnv{chat: &fakeChat{result: &chat.TurnResult{
		Reply: "A birthday party in Tel Aviv, fun!",
		Extracted: model.DraftPatch{
			Category: model.String("birthday party"),
			Location: model.String("Tel Aviv"),
		},
	}}}
	c := newTestController(t, env)

	resp, err := c.SubmitUtterance(context.Background(), "birthday party in tel aviv")

	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, resp.Message.Role)
	assert.Equal(t, "birthday party", resp.Draft.Category)
	assert.Equal(t, "Tel Aviv", resp.Draft.Location)

	transcript := c.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, model.RoleUser, transcript[1].Role)
	assert.Equal(t, "birthday party in tel aviv", transcript[1].Text)
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmitUtteranceChatFaultRecoversWithApology(t *testing.T) {
	env := &testEnv{chat: &fakeChat{err: fmt.Errorf("%w: timeout", chat.ErrChatUnavailable)}}
	c := newTestController(t, env)

	resp, err := c.SubmitUtterance(context.Background(), "birthday party")

	require.NoError(t, err, "chat faults must not surface to the caller")
	assert.Equal(t, model.RoleAssistant, resp.Message.Role)
	require.Len(t, resp.Message.Actions, 1)
	assert.Equal(t, "birthday party", resp.Message.Actions[0].ActionID,
		"retry affordance re-submits the original utterance")
	assert.Empty(t, resp.Draft.Category, "a failed turn extracts nothing")
}

func TestSubmitActionQuickSuggestionForwardsCanonicalUtterance(t *testing.T) {
	env := &testEnv{chat: &fakeChat{}}
	c := newTestController(t, env)

	_, err := c.SubmitAction(context.Background(), "suggest_birthday")

	require.NoError(t, err)
	require.Len(t, env.chat.utterances, 1)
	assert.Equal(t, "birthday party", env.chat.utterances[0])

	transcript := c.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, model.RoleUser, transcript[1].Role)
	assert.Equal(t, "birthday party", transcript[1].Text,
		"transcript records the canonical label, not the identifier")
}

func TestSubmitActionBusyGate(t *testing.T) {
	fc := &fakeChat{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newTestController(t, &testEnv{chat: fc})

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitUtterance(context.Background(), "birthday party")
		done <- err
	}()

	select {
	case <-fc.started:
	case <-time.After(time.Second):
		t.Fatal("chat turn never started")
	}

	_, err := c.SubmitUtterance(context.Background(), "wedding")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, StateAwaitingTurn, c.State())

	close(fc.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, c.State())
}

func TestVenueSearchThenChoosePlace(t *testing.T) {
	env := &testEnv{searcher: &fakeSearcher{results: []model.PlaceRecord{
		{PlaceID: "p1", Name: "Hilton", Address: "HaYarkon 205"},
		{PlaceID: "p2", Name: "Dan Panorama"},
	}}}
	c := newTestController(t, env)

	// Seed the destination so the search actually runs.
	env.chat.result = &chat.TurnResult{
		Reply:     "Tel Aviv it is.",
		Extracted: model.DraftPatch{Location: model.String("Tel Aviv")},
	}
	_, err := c.SubmitUtterance(context.Background(), "in Tel Aviv")
	require.NoError(t, err)

	resp, err := c.SubmitAction(context.Background(), "search_places_hotel")
	require.NoError(t, err)

	var actionIDs []string
	for _, a := range resp.Message.Actions {
		actionIDs = append(actionIDs, a.ActionID)
	}
	assert.Contains(t, actionIDs, "choose_place_p1")
	assert.Contains(t, actionIDs, "add_poll_option_p2")

	resp, err = c.SubmitAction(context.Background(), "choose_place_p1")
	require.NoError(t, err)
	assert.Equal(t, "Hilton, HaYarkon 205", resp.Draft.Location)
}

func TestStalePlaceSelectionRecovers(t *testing.T) {
	c := newTestController(t, &testEnv{})

	resp, err := c.SubmitAction(context.Background(), "choose_place_gone")

	require.NoError(t, err)
	assert.Contains(t, resp.Message.Text, "couldn't find that place")
	assert.Empty(t, resp.Draft.Location)
}

func TestStagePlacesBuildsLocationPoll(t *testing.T) {
	env := &testEnv{searcher: &fakeSearcher{results: []model.PlaceRecord{
		{PlaceID: "p1", Name: "Hilton"},
		{PlaceID: "p2", Name: "Dan Panorama"},
	}}}
	c := newTestController(t, env)

	env.chat.result = &chat.TurnResult{
		Reply:     "Tel Aviv it is.",
		Extracted: model.DraftPatch{Location: model.String("Tel Aviv")},
	}
	_, err := c.SubmitUtterance(context.Background(), "in Tel Aviv")
	require.NoError(t, err)

	_, err = c.SubmitAction(context.Background(), "search_places_hotel")
	require.NoError(t, err)

	_, err = c.SubmitAction(context.Background(), "add_poll_option_p1")
	require.NoError(t, err)
	resp, err := c.SubmitAction(context.Background(), "add_poll_option_p2")
	require.NoError(t, err)

	assert.True(t, resp.Draft.LocationPollEnabled)
	assert.Len(t, resp.Draft.LocationPollOptions, 2)
	assert.Empty(t, resp.Draft.Location, "staging a poll clears the concrete location")
}

func TestGeneratePlanRendersConfirmationSummary(t *testing.T) {
	env := &testEnv{chat: &fakeChat{result: &chat.TurnResult{
		Reply: "Noted.",
		Extracted: model.DraftPatch{
			Category: model.String("birthday party"),
			Location: model.String("Tel Aviv"),
		},
	}}}
	c := newTestController(t, env)

	_, err := c.SubmitUtterance(context.Background(), "birthday party in Tel Aviv")
	require.NoError(t, err)

	resp, err := c.SubmitAction(context.Background(), "generate_plan")
	require.NoError(t, err)

	assert.Contains(t, resp.Message.Text, "birthday party in Tel Aviv")
	var actionIDs []string
	for _, a := range resp.Message.Actions {
		actionIDs = append(actionIDs, a.ActionID)
	}
	assert.Contains(t, actionIDs, "confirm_create")
	assert.False(t, c.Closed(), "summary alone must not commit")
	assert.Empty(t, env.store.events)
}

func TestConfirmValidationFailureKeepsSessionOpen(t *testing.T) {
	c := newTestController(t, &testEnv{})

	result, msg, err := c.Confirm(context.Background())

	assert.ErrorIs(t, err, pipeline.ErrValidation)
	assert.Nil(t, result)
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.Text)
	assert.False(t, c.Closed())
	assert.Equal(t, StateIdle, c.State())
}

func TestConfirmCommitsAndClosesSession(t *testing.T) {
	env := &testEnv{
		chat: &fakeChat{result: &chat.TurnResult{
			Reply:     "Noted.",
			Extracted: model.DraftPatch{Category: model.String("birthday party")},
		}},
		planner: &fakePlanner{plan: &model.GeneratedPlan{
			Tasks: []model.PlannedTask{{Title: "Order cake"}, {Title: "Send invites"}},
		}},
	}
	c := newTestController(t, env)

	_, err := c.SubmitUtterance(context.Background(), "birthday party")
	require.NoError(t, err)

	result, msg, err := c.Confirm(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "evt-1", result.EventID)
	assert.Equal(t, 2, result.TasksCreated)
	assert.Contains(t, msg.Text, "Done!")
	assert.True(t, c.Closed())
	assert.Equal(t, result, c.Result())

	_, err = c.SubmitUtterance(context.Background(), "one more thing")
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, _, err = c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestConfirmPlanFaultStillCommits(t *testing.T) {
	env := &testEnv{
		chat: &fakeChat{result: &chat.TurnResult{
			Reply:     "Noted.",
			Extracted: model.DraftPatch{Category: model.String("picnic")},
		}},
		planner: &fakePlanner{err: fmt.Errorf("%w: timeout", plan.ErrPlanUnavailable)},
	}
	c := newTestController(t, env)

	_, err := c.SubmitUtterance(context.Background(), "picnic")
	require.NoError(t, err)

	result, _, err := c.Confirm(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, env.planner.calls)
	assert.NotEmpty(t, result.EventID)
	assert.Zero(t, result.TasksCreated)
	assert.True(t, c.Closed())
}

func TestConfirmCommitFaultOffersRetry(t *testing.T) {
	env := &testEnv{
		chat: &fakeChat{result: &chat.TurnResult{
			Reply:     "Noted.",
			Extracted: model.DraftPatch{Category: model.String("picnic")},
		}},
		store: &fakeEventStore{failEvent: true},
	}
	c := newTestController(t, env)

	_, err := c.SubmitUtterance(context.Background(), "picnic")
	require.NoError(t, err)

	result, msg, err := c.Confirm(context.Background())

	assert.ErrorIs(t, err, pipeline.ErrEventCreateFailed)
	assert.Nil(t, result)
	require.NotNil(t, msg)
	require.Len(t, msg.Actions, 1)
	assert.Equal(t, "confirm_create", msg.Actions[0].ActionID)
	assert.False(t, c.Closed(), "a failed commit leaves the session open for retry")

	// The draft survives; a retry against a recovered store succeeds.
	env.store.failEvent = false
	result, _, err = c.Confirm(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.EventID)
}
