package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatherly-ai/event-concierge/internal/controller"
	"github.com/gatherly-ai/event-concierge/internal/middleware"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/session"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	manager *session.Manager
	logger  *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *session.Manager, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  log,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	c, err := h.manager.Create(ctx, userID)
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sessionView(c))
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionView(c))
}

// Messages handles GET /api/v1/sessions/:id/messages
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	transcript := c.Transcript()

	offset := 0
	limit := 50
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	total := len(transcript)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Messages: transcript[start:end],
		Total:    total,
		HasMore:  end < total,
	})
}

func (h *SessionHandler) resolve(w http.ResponseWriter, r *http.Request) (*controller.Controller, bool) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	sessionID := chi.URLParam(r, "id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	c, err := h.manager.Get(ctx, userID, sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return c, true
}

func sessionView(c *controller.Controller) *model.SessionResponse {
	resp := &model.SessionResponse{
		SessionID: c.SessionID(),
		State:     string(c.State()),
		Closed:    c.Closed(),
		Draft:     c.Draft(),
		Result:    c.Result(),
	}
	if transcript := c.Transcript(); len(transcript) > 0 {
		last := transcript[len(transcript)-1]
		resp.LastMessage = &last
	}
	return resp
}
