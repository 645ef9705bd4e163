// Package places wraps the external venue text-search endpoint and
// normalizes its results into the uniform place record shape.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gatherly-ai/event-concierge/internal/model"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
)

// ErrSearchUnavailable signals a provider or transport fault. An empty
// result set is NOT an error; it is a valid "no matches" outcome.
var ErrSearchUnavailable = errors.New("venue search unavailable")

// Searcher is the venue search contract.
type Searcher interface {
	Search(ctx context.Context, venueLabel, locationLabel string) ([]model.PlaceRecord, error)
}

// Client is an HTTP venue search client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a venue search client against the configured
// text-search endpoint.
func NewClient(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: log,
	}
}

type wirePlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       int      `json:"price_level"`
	PhotoURL         string   `json:"photo_url"`
	Types            []string `json:"types"`
	OpeningHours     *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
}

type wireSearchResponse struct {
	Results []wirePlace `json:"results"`
	Status  string      `json:"status"`
}

// Search composes a single free-text query from the venue type and
// location labels and returns normalized place records.
func (c *Client) Search(ctx context.Context, venueLabel, locationLabel string) ([]model.PlaceRecord, error) {
	query := venueLabel
	if locationLabel != "" {
		query = fmt.Sprintf("%s in %s", venueLabel, locationLabel)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint: %v", ErrSearchUnavailable, err)
	}
	q := u.Query()
	q.Set("query", query)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("venue search request failed", "query", query, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("venue search returned non-OK status", "query", query, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrSearchUnavailable, resp.StatusCode)
	}

	var wire wireSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchUnavailable, err)
	}

	records := make([]model.PlaceRecord, 0, len(wire.Results))
	for _, p := range wire.Results {
		if p.PlaceID == "" || p.Name == "" {
			continue
		}
		rec := model.PlaceRecord{
			PlaceID:          p.PlaceID,
			Name:             p.Name,
			Address:          p.FormattedAddress,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			PriceLevel:       p.PriceLevel,
			PhotoURL:         p.PhotoURL,
			Types:            p.Types,
		}
		if p.OpeningHours != nil {
			open := p.OpeningHours.OpenNow
			rec.OpenNow = &open
		}
		records = append(records, rec)
	}

	return records, nil
}
