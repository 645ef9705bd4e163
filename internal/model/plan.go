package model

import (
	"time"
)

// PlannedTask is one task in a generated plan.
type PlannedTask struct {
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	VendorTip     string     `json:"vendor_tip,omitempty"`
	EstimatedCost float64    `json:"estimated_cost,omitempty"`
}

// ItineraryStop is one entry in a generated itinerary, ordered by Order.
type ItineraryStop struct {
	Title    string     `json:"title"`
	Location string     `json:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	EndDate  *time.Time `json:"end_date,omitempty"`
	Order    int        `json:"order"`
}

// GeneratedPlan is the output of the plan synthesis endpoint. It is
// never required for event creation to succeed; its absence degrades
// the created event but does not block it.
type GeneratedPlan struct {
	Summary        string          `json:"summary,omitempty"`
	Tasks          []PlannedTask   `json:"tasks,omitempty"`
	Itinerary      []ItineraryStop `json:"itinerary,omitempty"`
	BudgetEstimate float64         `json:"budget_estimate,omitempty"`
	RiskAlerts     []string        `json:"risk_alerts,omitempty"`
	Suggestions    []string        `json:"suggestions,omitempty"`
}
