package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly-ai/event-concierge/internal/chat"
	"github.com/gatherly-ai/event-concierge/internal/dispatch"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/pipeline"
	"github.com/gatherly-ai/event-concierge/internal/plan"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

type stubChat struct{}

func (stubChat) SendTurn(ctx context.Context, utterance string, draft model.EventDraft) (*chat.TurnResult, error) {
	return &chat.TurnResult{Reply: "ok"}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, venueLabel, locationLabel string) ([]model.PlaceRecord, error) {
	return nil, nil
}

type stubPlanner struct{}

func (stubPlanner) Synthesize(ctx context.Context, draft model.EventDraft) (*model.GeneratedPlan, error) {
	return &model.GeneratedPlan{}, nil
}

func newTestManager() *Manager {
	log := logger.NewNop()
	var planner plan.Adapter = stubPlanner{}
	return NewManager(
		stubChat{},
		dispatch.NewDispatcher(stubSearcher{}, log),
		planner,
		pipeline.New(nil, nil, log),
		log,
	)
}

func TestCreateRequiresUserIdentity(t *testing.T) {
	m := newTestManager()

	_, err := m.Create(context.Background(), "")
	assert.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestCreateAndGetAreOwnerScoped(t *testing.T) {
	m := newTestManager()

	c, err := m.Create(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(context.Background(), "user-1", c.SessionID())
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = m.Get(context.Background(), "user-2", c.SessionID())
	assert.Error(t, err, "another user's session must look nonexistent")

	_, err = m.Get(context.Background(), "user-1", "no-such-session")
	assert.Error(t, err)
}

func TestRemoveDropsSession(t *testing.T) {
	m := newTestManager()

	c, err := m.Create(context.Background(), "user-1")
	require.NoError(t, err)

	m.Remove(c.SessionID())

	assert.Zero(t, m.Count())
	_, err = m.Get(context.Background(), "user-1", c.SessionID())
	assert.Error(t, err)
}
