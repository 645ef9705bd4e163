package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

// fakeStore counts create calls and fails selectively by title.
type fakeStore struct {
	nextEventID int
	failEvent   bool
	failTasks   map[string]bool
	failPolls   map[model.PollKind]bool

	events      []model.Event
	memberships []model.Membership
	tasks       []model.Task
	itinerary   []model.ItineraryItem
	polls       []model.Poll
	rules       []model.RecurrenceRule
}

func (f *fakeStore) CreateEvent(ctx context.Context, event model.Event) (*model.Event, error) {
	if f.failEvent {
		return nil, errors.New("store down")
	}
	f.nextEventID++
	event.ID = fmt.Sprintf("evt-%d", f.nextEventID)
	f.events = append(f.events, event)
	return &event, nil
}

func (f *fakeStore) CreateMembership(ctx context.Context, m model.Membership) (*model.Membership, error) {
	m.ID = "mem-1"
	f.memberships = append(f.memberships, m)
	return &m, nil
}

func (f *fakeStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if f.failTasks[task.Title] {
		return nil, errors.New("task rejected")
	}
	task.ID = fmt.Sprintf("task-%d", len(f.tasks)+1)
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeStore) CreateItineraryItem(ctx context.Context, item model.ItineraryItem) (*model.ItineraryItem, error) {
	item.ID = fmt.Sprintf("itin-%d", len(f.itinerary)+1)
	f.itinerary = append(f.itinerary, item)
	return &item, nil
}

func (f *fakeStore) CreatePoll(ctx context.Context, poll model.Poll) (*model.Poll, error) {
	if f.failPolls[poll.Kind] {
		return nil, errors.New("poll rejected")
	}
	poll.ID = fmt.Sprintf("poll-%d", len(f.polls)+1)
	f.polls = append(f.polls, poll)
	return &poll, nil
}

func (f *fakeStore) CreateRecurrenceRule(ctx context.Context, rule model.RecurrenceRule) (*model.RecurrenceRule, error) {
	rule.ID = "rule-1"
	f.rules = append(f.rules, rule)
	return &rule, nil
}

type fakeNotifier struct {
	published []model.Notification
	err       error
}

func (f *fakeNotifier) Publish(ctx context.Context, n model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, n)
	return nil
}

func validDraft() model.EventDraft {
	return model.EventDraft{Category: "birthday party", Location: "Tel Aviv"}
}

func TestValidateRejectsMissingUser(t *testing.T) {
	err := Validate(validDraft(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateRejectsUntitleableDraft(t *testing.T) {
	err := Validate(model.EventDraft{Participants: 8}, "user-1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateRejectsLocationPollWithOneOption(t *testing.T) {
	draft := model.EventDraft{
		Category:            "meetup",
		LocationPollEnabled: true,
		LocationPollOptions: []model.PlaceRecord{{PlaceID: "p1", Name: "Hilton"}},
	}
	err := Validate(draft, "user-1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateAcceptsCategoryOnlyDraft(t *testing.T) {
	assert.NoError(t, Validate(model.EventDraft{Category: "picnic"}, "user-1"))
}

func TestResolveTitleSynthesis(t *testing.T) {
	tests := []struct {
		name  string
		draft model.EventDraft
		want  string
	}{
		{"explicit title wins", model.EventDraft{Title: "Noa's 30th", Category: "birthday party", Location: "Tel Aviv"}, "Noa's 30th"},
		{"category and location", model.EventDraft{Category: "birthday party", Location: "Tel Aviv"}, "birthday party in Tel Aviv"},
		{"category only", model.EventDraft{Category: "picnic"}, "picnic"},
		{"location only", model.EventDraft{Location: "Haifa"}, "Event in Haifa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTitle(tt.draft)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommitRootEventFailureIsFatal(t *testing.T) {
	st := &fakeStore{failEvent: true}
	p := New(st, &fakeNotifier{}, logger.NewNop())

	result, err := p.Commit(context.Background(), validDraft(), nil, "user-1")

	assert.ErrorIs(t, err, ErrEventCreateFailed)
	assert.Nil(t, result)
	assert.Empty(t, st.memberships, "no dependent writes after a root failure")
}

func TestCommitToleratesFailedTasks(t *testing.T) {
	st := &fakeStore{failTasks: map[string]bool{"Book venue": true}}
	p := New(st, &fakeNotifier{}, logger.NewNop())

	plan := &model.GeneratedPlan{
		Tasks: []model.PlannedTask{
			{Title: "Book venue"},
			{Title: "Order cake"},
			{Title: "Send invites"},
		},
		Itinerary: []model.ItineraryStop{{Title: "Dinner", Order: 1}},
	}

	result, err := p.Commit(context.Background(), validDraft(), plan, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "evt-1", result.EventID)
	assert.Equal(t, 2, result.TasksCreated)
	assert.Equal(t, 1, result.TasksFailed)
	assert.Equal(t, 1, result.ItineraryCreated)
	assert.Len(t, st.tasks, 2, "remaining tasks still attempted after a failure")
}

func TestCommitWithNilPlanSucceeds(t *testing.T) {
	st := &fakeStore{}
	p := New(st, &fakeNotifier{}, logger.NewNop())

	result, err := p.Commit(context.Background(), validDraft(), nil, "user-1")

	require.NoError(t, err)
	assert.Zero(t, result.TasksCreated)
	assert.Zero(t, result.ItineraryCreated)
	require.Len(t, st.memberships, 1)
	assert.Equal(t, model.MembershipRoleOrganizer, st.memberships[0].Role)
}

func TestCommitIsNotIdempotent(t *testing.T) {
	st := &fakeStore{}
	p := New(st, &fakeNotifier{}, logger.NewNop())

	first, err := p.Commit(context.Background(), validDraft(), nil, "user-1")
	require.NoError(t, err)
	second, err := p.Commit(context.Background(), validDraft(), nil, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.EventID, second.EventID)
	assert.Len(t, st.events, 2)
}

func TestCommitCreatesPolls(t *testing.T) {
	st := &fakeStore{}
	p := New(st, &fakeNotifier{}, logger.NewNop())

	draft := model.EventDraft{
		Category:            "group trip",
		DatePollEnabled:     true,
		LocationPollEnabled: true,
		LocationPollOptions: []model.PlaceRecord{
			{PlaceID: "p1", Name: "Hilton", Address: "HaYarkon 205"},
			{PlaceID: "p2", Name: "Dan Panorama"},
		},
	}

	result, err := p.Commit(context.Background(), draft, nil, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 2, result.PollsCreated)
	require.Len(t, st.polls, 2)
	assert.Equal(t, model.PollKindDate, st.polls[0].Kind)
	assert.Equal(t, model.PollKindLocation, st.polls[1].Kind)
	require.Len(t, st.polls[1].Options, 2)
	assert.Equal(t, "Hilton, HaYarkon 205", st.polls[1].Options[0].Label)
	assert.Equal(t, "Dan Panorama", st.polls[1].Options[1].Label)
}

func TestCommitDefaultsRecurrenceRule(t *testing.T) {
	st := &fakeStore{}
	p := New(st, &fakeNotifier{}, logger.NewNop())

	draft := validDraft()
	draft.IsRecurring = true

	result, err := p.Commit(context.Background(), draft, nil, "user-1")

	require.NoError(t, err)
	assert.True(t, result.RecurrenceSet)
	require.Len(t, st.rules, 1)
	assert.Equal(t, "FREQ=WEEKLY", st.rules[0].Rule)
}

func TestCommitNotifyFailureIsSwallowed(t *testing.T) {
	st := &fakeStore{}
	p := New(st, &fakeNotifier{err: errors.New("nats down")}, logger.NewNop())

	result, err := p.Commit(context.Background(), validDraft(), nil, "user-1")

	require.NoError(t, err)
	assert.NotEmpty(t, result.EventID)
}

func TestCommitPublishesNotification(t *testing.T) {
	st := &fakeStore{}
	notifier := &fakeNotifier{}
	p := New(st, notifier, logger.NewNop())

	_, err := p.Commit(context.Background(), validDraft(), nil, "user-1")

	require.NoError(t, err)
	require.Len(t, notifier.published, 1)
	assert.Equal(t, "user-1", notifier.published[0].UserID)
	assert.Equal(t, "evt-1", notifier.published[0].EventID)
}
