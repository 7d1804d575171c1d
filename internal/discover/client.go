// Package discover proxies the external events-discovery API behind the login
// wall. One keyword, one page, no retries, no caching.
package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/marloe/showbill/internal/domain"
)

// Client calls the discovery v2 events endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// NewClient constructs a Client for the given API base URL and key.
func NewClient(base, apiKey string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("empty events api base url")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid events api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents a non-2xx response from the events API.
type APIError struct {
	Status int
}

func (e APIError) Error() string {
	return fmt.Sprintf("events api request failed with status %d", e.Status)
}

// envelope mirrors the discovery v2 response shape; everything is optional.
type envelope struct {
	Embedded *struct {
		Events []apiEvent `json:"events"`
	} `json:"_embedded"`
}

type apiEvent struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	Embedded *struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// SearchEvents fetches the first page of events matching keyword. A response
// without an embedded events collection is an empty result, not an error.
func (c *Client) SearchEvents(ctx context.Context, keyword string, size int) ([]domain.Event, error) {
	endpoint := c.baseURL + "/events.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("apikey", c.apiKey)
	q.Set("keyword", keyword)
	q.Set("size", strconv.Itoa(size))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, APIError{Status: resp.StatusCode}
	}

	var payload envelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Embedded == nil {
		return []domain.Event{}, nil
	}

	events := make([]domain.Event, 0, len(payload.Embedded.Events))
	for _, e := range payload.Embedded.Events {
		events = append(events, normalize(e))
	}
	return events, nil
}

func normalize(e apiEvent) domain.Event {
	event := domain.Event{
		Name: e.Name,
		URL:  e.URL,
		Date: e.Dates.Start.LocalDate,
		Time: e.Dates.Start.LocalTime,
	}
	if len(e.Images) > 0 {
		event.ImageURL = e.Images[0].URL
	}
	if e.Embedded != nil && len(e.Embedded.Venues) > 0 {
		event.Venue = e.Embedded.Venues[0].Name
		event.City = e.Embedded.Venues[0].City.Name
	}
	return event
}
