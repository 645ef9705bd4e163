// Package chat wraps the conversational extraction endpoint: a user
// utterance plus the current draft in, a reply plus an extracted field
// patch and suggested follow-up actions out.
package chat

import (
	"context"
	"errors"

	"github.com/gatherly-ai/event-concierge/internal/model"
)

// ErrChatUnavailable signals a transient extraction-endpoint fault.
// Callers recover locally with an apologetic assistant message and a
// retry affordance; the fault is never propagated further up.
var ErrChatUnavailable = errors.New("chat service unavailable")

// TurnResult is the outcome of one extraction turn.
type TurnResult struct {
	Reply            string
	Extracted        model.DraftPatch
	SuggestedActions []model.ActionSuggestion
	ExpertTip        string
	RiskWarning      string
}

// Adapter is the conversational extraction contract. SendTurn may
// suspend for unbounded external latency; callers must serialize turns
// for a session and must not issue a second concurrent turn until the
// previous one resolves.
type Adapter interface {
	SendTurn(ctx context.Context, utterance string, draft model.EventDraft) (*TurnResult, error)
}
