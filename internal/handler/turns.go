package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatherly-ai/event-concierge/internal/controller"
	"github.com/gatherly-ai/event-concierge/internal/middleware"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/internal/pipeline"
	"github.com/gatherly-ai/event-concierge/internal/session"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

// TurnHandler handles conversation turn endpoints: utterances,
// structured actions and the explicit confirm step.
type TurnHandler struct {
	manager *session.Manager
	logger  *logger.Logger
}

// NewTurnHandler creates a new turn handler.
func NewTurnHandler(manager *session.Manager, log *logger.Logger) *TurnHandler {
	return &TurnHandler{
		manager: manager,
		logger:  log,
	}
}

// Utterance handles POST /api/v1/sessions/:id/utterances
func (h *TurnHandler) Utterance(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req model.SubmitUtteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateUtterance(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := c.SubmitUtterance(r.Context(), req.Text)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Action handles POST /api/v1/sessions/:id/actions. The confirm button
// maps to the distinct confirm endpoint; everything else goes through
// the dispatcher.
func (h *TurnHandler) Action(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req model.SubmitActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateActionID(req.ActionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ActionID == "confirm_create" {
		h.confirm(w, r, c)
		return
	}

	resp, err := c.SubmitAction(r.Context(), req.ActionID)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /api/v1/sessions/:id/confirm
func (h *TurnHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.confirm(w, r, c)
}

func (h *TurnHandler) confirm(w http.ResponseWriter, r *http.Request, c *controller.Controller) {
	result, msg, err := c.Confirm(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrBusy):
			writeError(w, http.StatusConflict, "a turn is already in flight")
		case errors.Is(err, controller.ErrSessionClosed):
			writeError(w, http.StatusGone, "session is closed")
		case errors.Is(err, pipeline.ErrValidation):
			// Inline rejection; the assistant message carries the
			// concrete next action.
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   err.Error(),
				"message": msg,
			})
		default:
			h.logger.Error("commit failed", "session_id", c.SessionID(), "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   "event creation failed, try again",
				"message": msg,
			})
		}
		return
	}

	writeJSON(w, http.StatusCreated, &model.ConfirmResponse{
		Result:  *result,
		Message: *msg,
	})
}

func (h *TurnHandler) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, controller.ErrBusy):
		writeError(w, http.StatusConflict, "a turn is already in flight")
	case errors.Is(err, controller.ErrSessionClosed):
		writeError(w, http.StatusGone, "session is closed")
	default:
		h.logger.Error("turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "turn failed")
	}
}

func (h *TurnHandler) resolve(w http.ResponseWriter, r *http.Request) (*controller.Controller, bool) {
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
