package discover

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marloe/showbill/internal/domain"
)

// ErrServiceUnavailable is the only error Discover returns. The underlying
// cause is logged for operators and never crosses this boundary.
var ErrServiceUnavailable = errors.New("discover: events service unavailable")

// Searcher fetches events from the external API.
type Searcher interface {
	SearchEvents(ctx context.Context, keyword string, size int) ([]domain.Event, error)
}

// Service wraps the events client with the app's fixed query policy.
type Service struct {
	client  Searcher
	logger  *slog.Logger
	keyword string
	size    int
}

// New constructs a Service.
func New(client Searcher, logger *slog.Logger, keyword string, size int) Service {
	return Service{client: client, logger: logger, keyword: keyword, size: size}
}

// Discover returns the first page of events for the configured keyword.
func (s Service) Discover(ctx context.Context) ([]domain.Event, error) {
	events, err := s.client.SearchEvents(ctx, s.keyword, s.size)
	if err != nil {
		s.logger.Error("event discovery failed", "keyword", s.keyword, "error", err)
		return nil, ErrServiceUnavailable
	}
	return events, nil
}
