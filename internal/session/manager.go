// Package session tracks the live conversation sessions, one
// controller per session, scoped to the owning user.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gatherly-ai/event-concierge/internal/chat"
	"github.com/gatherly-ai/event-concierge/internal/controller"
	"github.com/gatherly-ai/event-concierge/internal/dispatch"
	"github.com/gatherly-ai/event-concierge/internal/pipeline"
	"github.com/gatherly-ai/event-concierge/internal/plan"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
	"github.com/gatherly-ai/event-concierge/pkg/metrics"
)

// Manager creates and looks up session controllers. Draft state lives
// only inside the controllers; nothing here is persisted.
type Manager struct {
	chatAdapter chat.Adapter
	dispatcher  *dispatch.Dispatcher
	planner     plan.Adapter
	pipeline    *pipeline.Pipeline
	logger      *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*controller.Controller
}

// NewManager creates a session manager.
func NewManager(
	chatAdapter chat.Adapter,
	dispatcher *dispatch.Dispatcher,
	planner plan.Adapter,
	pipe *pipeline.Pipeline,
	log *logger.Logger,
) *Manager {
	return &Manager{
		chatAdapter: chatAdapter,
		dispatcher:  dispatcher,
		planner:     planner,
		pipeline:    pipe,
		logger:      log,
		sessions:    make(map[string]*controller.Controller),
	}
}

// Create starts a new conversation session for a user.
func (m *Manager) Create(ctx context.Context, userID string) (*controller.Controller, error) {
	if userID == "" {
		return nil, fmt.Errorf("user identity is required")
	}

	sessionID := uuid.Must(uuid.NewV7()).String()
	c := controller.New(sessionID, userID, m.chatAdapter, m.dispatcher, m.planner, m.pipeline, m.logger)

	m.mu.Lock()
	m.sessions[sessionID] = c
	m.mu.Unlock()

	metrics.SessionsTotal.Inc()
	m.logger.Info("session created", "session_id", sessionID, "user_id", userID)
	return c, nil
}

// Get retrieves a session controller owned by the user.
func (m *Manager) Get(ctx context.Context, userID, sessionID string) (*controller.Controller, error) {
	m.mu.RLock()
	c, exists := m.sessions[sessionID]
	m.mu.RUnlock()

	if !exists || c.UserID() != userID {
		return nil, fmt.Errorf("session not found")
	}
	return c, nil
}

// Remove drops a session, discarding its draft and transcript.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
