// Package store is the client for the remote data store that persists
// events and their dependent artifacts. Each create operation posts a
// flat field record and returns the created record including its
// generated identifier.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

// Store is the remote create-operation contract used by the creation
// pipeline.
type Store interface {
	CreateEvent(ctx context.Context, event model.Event) (*model.Event, error)
	CreateMembership(ctx context.Context, membership model.Membership) (*model.Membership, error)
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	CreateItineraryItem(ctx context.Context, item model.ItineraryItem) (*model.ItineraryItem, error)
	CreatePoll(ctx context.Context, poll model.Poll) (*model.Poll, error)
	CreateRecurrenceRule(ctx context.Context, rule model.RecurrenceRule) (*model.RecurrenceRule, error)
}

// Client is an HTTP data store client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a data store client.
func NewClient(baseURL, token string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: log,
	}
}

func (c *Client) create(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("create %s: status %d: %s", path, resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// CreateEvent persists the root event record.
func (c *Client) CreateEvent(ctx context.Context, event model.Event) (*model.Event, error) {
	var created model.Event
	if err := c.create(ctx, "/events", event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateMembership persists an event membership.
func (c *Client) CreateMembership(ctx context.Context, membership model.Membership) (*model.Membership, error) {
	var created model.Membership
	if err := c.create(ctx, "/memberships", membership, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTask persists a task.
func (c *Client) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	var created model.Task
	if err := c.create(ctx, "/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateItineraryItem persists an itinerary item.
func (c *Client) CreateItineraryItem(ctx context.Context, item model.ItineraryItem) (*model.ItineraryItem, error) {
	var created model.ItineraryItem
	if err := c.create(ctx, "/itinerary-items", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreatePoll persists a poll with its options.
func (c *Client) CreatePoll(ctx context.Context, poll model.Poll) (*model.Poll, error) {
	var created model.Poll
	if err := c.create(ctx, "/polls", poll, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateRecurrenceRule persists a recurrence rule.
func (c *Client) CreateRecurrenceRule(ctx context.Context, rule model.RecurrenceRule) (*model.RecurrenceRule, error) {
	var created model.RecurrenceRule
	if err := c.create(ctx, "/recurrence-rules", rule, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
