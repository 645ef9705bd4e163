// Package plan wraps the plan synthesis endpoint: a finished draft in,
// a generated task list, itinerary, budget estimate and advisory text
// out. Synthesis is strictly best-effort; callers treat any fault as
// "no plan produced" and proceed with an empty plan.
package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherly-ai/event-concierge/internal/llm"
	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

// ErrPlanUnavailable signals a synthesis fault. Never surfaced to the
// end user as a hard error.
var ErrPlanUnavailable = errors.New("plan service unavailable")

// Adapter is the plan synthesis contract.
type Adapter interface {
	Synthesize(ctx context.Context, draft model.EventDraft) (*model.GeneratedPlan, error)
}

const synthesizerSystemPrompt = `You are an expert event planner. Given a structured event description as
JSON, produce a concrete preparation plan.

Respond with a single JSON object:
{
  "summary": "...",
  "tasks": [{"title": "...", "description": "...", "category": "...",
             "priority": "low|medium|high", "dueDate": "YYYY-MM-DD",
             "vendorTip": "...", "estimatedCost": 0}],
  "itinerary": [{"title": "...", "location": "...", "date": "YYYY-MM-DD",
                 "endDate": "YYYY-MM-DD", "order": 1}],
  "budgetEstimate": 0,
  "riskAlerts": ["..."],
  "suggestions": ["..."]
}
Keep tasks actionable and itinerary entries in chronological order.
Event description:
`

// Synthesizer implements Adapter on top of an LLM completion client.
type Synthesizer struct {
	client llm.Client
	model  string
	logger *logger.Logger
}

// NewSynthesizer creates a plan synthesis adapter.
func NewSynthesizer(client llm.Client, modelName string, log *logger.Logger) *Synthesizer {
	return &Synthesizer{
		client: client,
		model:  modelName,
		logger: log,
	}
}

type wireTask struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Priority      string  `json:"priority"`
	DueDate       string  `json:"dueDate"`
	VendorTip     string  `json:"vendorTip"`
	EstimatedCost float64 `json:"estimatedCost"`
}

type wireStop struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Date     string `json:"date"`
	EndDate  string `json:"endDate"`
	Order    int    `json:"order"`
}

type wirePlan struct {
	Summary        string     `json:"summary"`
	Tasks          []wireTask `json:"tasks"`
	Itinerary      []wireStop `json:"itinerary"`
	BudgetEstimate float64    `json:"budgetEstimate"`
	RiskAlerts     []string   `json:"riskAlerts"`
	Suggestions    []string   `json:"suggestions"`
}

// Synthesize produces a generated plan for the draft.
func (s *Synthesizer) Synthesize(ctx context.Context, draft model.EventDraft) (*model.GeneratedPlan, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: no LLM provider configured", ErrPlanUnavailable)
	}

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal draft: %v", ErrPlanUnavailable, err)
	}

	resp, err := s.client.Complete(ctx, &llm.CompletionRequest{
		Model:  s.model,
		System: synthesizerSystemPrompt + string(draftJSON),
		Messages: []llm.ChatMessage{
			{Role: "user", Content: "Generate the preparation plan for this event."},
		},
		Temperature: 0.5,
		JSONMode:    true,
	})
	if err != nil {
		s.logger.Warn("plan synthesis call failed", "provider", s.client.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPlanUnavailable, err)
	}

	var wire wirePlan
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &wire); err != nil {
		s.logger.Warn("plan synthesis returned malformed JSON", "error", err)
		return nil, fmt.Errorf("%w: decode response: %v", ErrPlanUnavailable, err)
	}

	generated := &model.GeneratedPlan{
		Summary:        wire.Summary,
		BudgetEstimate: wire.BudgetEstimate,
		RiskAlerts:     wire.RiskAlerts,
		Suggestions:    wire.Suggestions,
	}

	for _, t := range wire.Tasks {
		if t.Title == "" {
			continue
		}
		generated.Tasks = append(generated.Tasks, model.PlannedTask{
			Title:         t.Title,
			Description:   t.Description,
			Category:      t.Category,
			Priority:      t.Priority,
			DueDate:       parsePlanDate(t.DueDate),
			VendorTip:     t.VendorTip,
			EstimatedCost: t.EstimatedCost,
		})
	}

	for i, st := range wire.Itinerary {
		if st.Title == "" {
			continue
		}
		order := st.Order
		if order == 0 {
			order = i + 1
		}
		generated.Itinerary = append(generated.Itinerary, model.ItineraryStop{
			Title:    st.Title,
			Location: st.Location,
			Date:     parsePlanDate(st.Date),
			EndDate:  parsePlanDate(st.EndDate),
			Order:    order,
		})
	}

	return generated, nil
}

func parsePlanDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

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
