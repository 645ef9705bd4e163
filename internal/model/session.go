package model

// SessionResponse is the API view of one conversation session.
type SessionResponse struct {
	SessionID   string          `json:"session_id"`
	State       string          `json:"state"`
	Closed      bool            `json:"closed"`
	Draft       EventDraft      `json:"draft"`
	LastMessage *Message        `json:"last_message,omitempty"`
	Result      *CreationResult `json:"result,omitempty"`
}

// ConfirmResponse is returned after a successful commit.
type ConfirmResponse struct {
	Result  CreationResult `json:"result"`
	Message Message        `json:"message"`
}
