package model

import (
	"time"
)

// Entity records as accepted and returned by the remote data store.
// Each create operation takes a flat field record and returns the
// created record including its generated identifier.

// Event is the root record committed by the creation pipeline.
type Event struct {
	ID             string     `json:"id,omitempty"`
	OrganizerID    string     `json:"organizer_id"`
	Title          string     `json:"title"`
	Category       string     `json:"category,omitempty"`
	Description    string     `json:"description,omitempty"`
	EventDate      *time.Time `json:"event_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Location       string     `json:"location,omitempty"`
	Participants   int        `json:"participants,omitempty"`
	IsRecurring    bool       `json:"is_recurring,omitempty"`
	Privacy        Privacy    `json:"privacy,omitempty"`
	BudgetEstimate float64    `json:"budget_estimate,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitempty"`
}

// MembershipRole distinguishes the organizer from invited members.
type MembershipRole string

const (
	MembershipRoleOrganizer MembershipRole = "organizer"
	MembershipRoleMember    MembershipRole = "member"
)

// Membership links a user to an event.
type Membership struct {
	ID      string         `json:"id,omitempty"`
	EventID string         `json:"event_id"`
	UserID  string         `json:"user_id"`
	Role    MembershipRole `json:"role"`
}

// Task is a persisted to-do attached to an event.
type Task struct {
	ID            string     `json:"id,omitempty"`
	EventID       string     `json:"event_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	VendorTip     string     `json:"vendor_tip,omitempty"`
	EstimatedCost float64    `json:"estimated_cost,omitempty"`
}

// ItineraryItem is a persisted itinerary entry attached to an event.
type ItineraryItem struct {
	ID       string     `json:"id,omitempty"`
	EventID  string     `json:"event_id"`
	Title    string     `json:"title"`
	Location string     `json:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	EndDate  *time.Time `json:"end_date,omitempty"`
	Order    int        `json:"order"`
}

// PollKind distinguishes the two poll types a draft can stage.
type PollKind string

const (
	PollKindDate     PollKind = "date"
	PollKindLocation PollKind = "location"
)

// PollOption is one choice within a poll.
type PollOption struct {
	Label   string `json:"label"`
	PlaceID string `json:"place_id,omitempty"`
}

// Poll is a persisted poll attached to an event.
type Poll struct {
	ID       string       `json:"id,omitempty"`
	EventID  string       `json:"event_id"`
	Kind     PollKind     `json:"kind"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options,omitempty"`
}

// RecurrenceRule is a persisted recurrence schedule for an event.
type RecurrenceRule struct {
	ID      string `json:"id,omitempty"`
	EventID string `json:"event_id"`
	Rule    string `json:"rule"`
}

// NotificationPriority orders notification delivery.
type NotificationPriority string

const (
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is the fan-out payload published when a pipeline run
// completes. Fire-and-forget from the pipeline's perspective.
type Notification struct {
	UserID   string               `json:"user_id"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	EventID  string               `json:"event_id,omitempty"`
	Priority NotificationPriority `json:"priority"`
}

// CreationResult reports the committed event plus counts of
// successfully created dependents. Created once per confirmed draft,
// immutable thereafter.
type CreationResult struct {
	EventID          string `json:"event_id"`
	TasksCreated     int    `json:"tasks_created"`
	TasksFailed      int    `json:"tasks_failed"`
	ItineraryCreated int    `json:"itinerary_created"`
	ItineraryFailed  int    `json:"itinerary_failed"`
	PollsCreated     int    `json:"polls_created"`
	PollsFailed      int    `json:"polls_failed"`
	RecurrenceSet    bool   `json:"recurrence_set"`
}
