package discover

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `{
	"_embedded": {
		"events": [
			{
				"name": "Midnight Concert",
				"url": "https://example.com/e/1",
				"images": [{"url": "https://example.com/img/1.jpg"}],
				"dates": {"start": {"localDate": "2026-09-12", "localTime": "20:00:00"}},
				"_embedded": {
					"venues": [{"name": "Grand Hall", "city": {"name": "Denver"}}]
				}
			},
			{
				"name": "Bare Minimum Show",
				"url": "https://example.com/e/2",
				"dates": {"start": {}}
			}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cli, err := NewClient(srv.URL, "test-key", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return cli
}

func TestSearchEventsNormalizesEmbeddedEvents(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("apikey") != "test-key" {
			t.Errorf("missing apikey param")
		}
		if q.Get("keyword") != "concert" || q.Get("size") != "30" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleResponse)
	})

	events, err := cli.SearchEvents(context.Background(), "concert", 30)
	if err != nil {
		t.Fatalf("search events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	first := events[0]
	if first.Name != "Midnight Concert" || first.Venue != "Grand Hall" || first.City != "Denver" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if first.Date != "2026-09-12" || first.ImageURL != "https://example.com/img/1.jpg" {
		t.Fatalf("unexpected first event details: %+v", first)
	}
	second := events[1]
	if second.Venue != "" || second.ImageURL != "" {
		t.Fatalf("expected empty optional fields, got %+v", second)
	}
}

func TestSearchEventsMissingEmbeddedIsEmpty(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"page": {"totalElements": 0}}`)
	})

	events, err := cli.SearchEvents(context.Background(), "concert", 30)
	if err != nil {
		t.Fatalf("search events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty result, got %d events", len(events))
	}
}

func TestSearchEventsNon2xxIsAPIError(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	_, err := cli.SearchEvents(context.Background(), "concert", 30)
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", apiErr.Status)
	}
}

func newServiceLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscoverMapsFailureToServiceUnavailable(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	svc := New(cli, newServiceLogger(), "concert", 30)

	events, err := svc.Discover(context.Background())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if events != nil {
		t.Fatalf("expected nil events on failure")
	}
}

func TestDiscoverPassesThroughResults(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleResponse)
	})
	svc := New(cli, newServiceLogger(), "concert", 30)

	events, err := svc.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}
