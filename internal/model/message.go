package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActionSuggestion is a button the assistant offers alongside a reply.
// ActionID is an opaque identifier resolved by the action dispatcher;
// some suggestions come from the extraction endpoint, others are
// synthesized locally (e.g. the initial event-type quick picks).
type ActionSuggestion struct {
	Label    string `json:"label"`
	ActionID string `json:"action_id"`
	Icon     string `json:"icon,omitempty"`
}

// Message is one entry in a session transcript. The transcript is
// append-only; messages are never mutated or removed once appended.
type Message struct {
	ID          string             `json:"id"`
	SessionID   string             `json:"session_id"`
	Role        Role               `json:"role"`
	Text        string             `json:"text"`
	Actions     []ActionSuggestion `json:"actions,omitempty"`
	ExpertTip   string             `json:"expert_tip,omitempty"`
	RiskWarning string             `json:"risk_warning,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SubmitUtteranceRequest is the request to submit free-form user text.
type SubmitUtteranceRequest struct {
	Text string `json:"text"`
}

// SubmitActionRequest is the request to submit a structured UI action.
type SubmitActionRequest struct {
	ActionID string `json:"action_id"`
}

// TurnResponse is returned after a turn completes: the assistant
// message appended by the turn plus the updated draft snapshot.
type TurnResponse struct {
	Message Message    `json:"message"`
	Draft   EventDraft `json:"draft"`
}

// ListMessagesResponse is the response for listing transcript messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"has_more"`
}
