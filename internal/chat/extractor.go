package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly-ai/event-concierge/internal/llm"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

const extractorSystemPrompt = `You are an event planning assistant. The user is describing an event
they want to organize. You are given the current partial event draft as
JSON. Reply conversationally, extract any new structured fields from the
user's message, and suggest up to four follow-up action buttons.

Respond with a single JSON object:
{
  "reply": "<assistant reply text>",
  "extractedData": {
    "title": "...", "category": "...", "eventDate": "YYYY-MM-DD",
    "endDate": "YYYY-MM-DD", "datePollEnabled": true,
    "destination": "...", "venuePreference": "...", "participants": 0,
    "description": "...", "isRecurring": false, "recurrenceRule": "...",
    "privacy": "private|friends|public"
  },
  "suggestedButtons": [{"text": "...", "action": "...", "icon": "..."}],
  "expertTip": "...",
  "riskWarning": "..."
}
Omit extractedData fields the user did not provide. Current draft:
`

// Extractor implements Adapter on top of an LLM completion client.
type Extractor struct {
	client llm.Client
	model  string
	logger *logger.Logger
}

// NewExtractor creates a chat extraction adapter.
func NewExtractor(client llm.Client, modelName string, log *logger.Logger) *Extractor {
	return &Extractor{
		client: client,
		model:  modelName,
		logger: log,
	}
}

// wire shapes for the extraction endpoint contract.
type wireButton struct {
	Text   string `json:"text"`
	Action string `json:"action"`
	Icon   string `json:"icon,omitempty"`
}

type wireExtracted struct {
	Title               *string `json:"title"`
	EventType           *string `json:"eventType"`
	Category            *string `json:"category"`
	EventDate           *string `json:"eventDate"`
	EndDate             *string `json:"endDate"`
	DatePollEnabled     *bool   `json:"datePollEnabled"`
	Location            *string `json:"location"`
	Destination         *string `json:"destination"`
	LocationPollEnabled *bool   `json:"locationPollEnabled"`
	VenuePreference     *string `json:"venuePreference"`
	Participants        *int    `json:"participants"`
	Description         *string `json:"description"`
	IsRecurring         *bool   `json:"isRecurring"`
	RecurrenceRule      *string `json:"recurrenceRule"`
	Privacy             *string `json:"privacy"`
}

type wireTurnResponse struct {
	Reply            string        `json:"reply"`
	ExtractedData    wireExtracted `json:"extractedData"`
	SuggestedButtons []wireButton  `json:"suggestedButtons"`
	ExpertTip        string        `json:"expertTip"`
	RiskWarning      string        `json:"riskWarning"`
}

// SendTurn sends one extraction turn. Any fault, transport or contract,
// maps to ErrChatUnavailable.
func (e *Extractor) SendTurn(ctx context.Context, utterance string, draft model.EventDraft) (*TurnResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: no LLM provider configured", ErrChatUnavailable)
	}

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal draft: %v", ErrChatUnavailable, err)
	}

	resp, err := e.client.Complete(ctx, &llm.CompletionRequest{
		Model:  e.model,
		System: extractorSystemPrompt + string(draftJSON),
		Messages: []llm.ChatMessage{
			{Role: "user", Content: utterance},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		e.logger.Warn("chat extraction call failed", "provider", e.client.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}

	var wire wireTurnResponse
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &wire); err != nil {
		e.logger.Warn("chat extraction returned malformed JSON", "error", err)
		return nil, fmt.Errorf("%w: decode response: %v", ErrChatUnavailable, err)
	}
	if wire.Reply == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrChatUnavailable)
	}

	actions := make([]model.ActionSuggestion, 0, len(wire.SuggestedButtons))
	for _, b := range wire.SuggestedButtons {
		if b.Text == "" || b.Action == "" {
			continue
		}
		actions = append(actions, model.ActionSuggestion{
			Label:    b.Text,
			ActionID: b.Action,
			Icon:     b.Icon,
		})
	}

	return &TurnResult{
		Reply:            wire.Reply,
		Extracted:        wire.ExtractedData.toPatch(),
		SuggestedActions: actions,
		ExpertTip:        wire.ExpertTip,
		RiskWarning:      wire.RiskWarning,
	}, nil
}

func (w wireExtracted) toPatch() model.DraftPatch {
	patch := model.DraftPatch{
		Title:               w.Title,
		DatePollEnabled:     w.DatePollEnabled,
		LocationPollEnabled: w.LocationPollEnabled,
		VenuePreference:     w.VenuePreference,
		Participants:        w.Participants,
		Description:         w.Description,
		IsRecurring:         w.IsRecurring,
		RecurrenceRule:      w.RecurrenceRule,
	}

	// eventType and category are the same slot on the wire; destination
	// and location likewise.
	if w.Category != nil {
		patch.Category = w.Category
	} else if w.EventType != nil {
		patch.Category = w.EventType
	}
	if w.Location != nil {
		patch.Location = w.Location
	} else if w.Destination != nil {
		patch.Location = w.Destination
	}

	if w.EventDate != nil {
		patch.EventDate = parseWireDate(*w.EventDate)
	}
	if w.EndDate != nil {
		patch.EndDate = parseWireDate(*w.EndDate)
	}
	if w.Privacy != nil {
		switch p := model.Privacy(strings.ToLower(*w.Privacy)); p {
		case model.PrivacyPrivate, model.PrivacyFriends, model.PrivacyPublic:
			patch.Privacy = &p
		}
	}

	return patch
}

func parseWireDate(s string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence when the
// model wraps its JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
