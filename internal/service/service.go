// internal/service/service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github-popularity/internal/database"
	custom_errors "github-popularity/internal/errors"
	"github-popularity/internal/github"
	"github-popularity/internal/mapper"
	"github-popularity/internal/model"
)

// SearchClient fetches raw search pages from GitHub.
type SearchClient interface {
	SendSearchRequest(ctx context.Context, language string, since time.Time, offset, limit int) (*github.Response, error)
}

// Service answers repository searches either from the store or straight from GitHub.
type Service struct {
	store    database.Querier
	ghClient SearchClient
	mapper   *mapper.Mapper
	logger   *slog.Logger
}

// New creates a new Service instance.
func New(store database.Querier, ghClient SearchClient, m *mapper.Mapper, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		ghClient: ghClient,
		mapper:   m,
		logger:   logger,
	}
}

// SearchCached pages through stored repositories of one language created on or after the query date,
// oldest first. The total count covers every match, not just the returned window.
func (s *Service) SearchCached(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	since := q.CreatedSince()

	total, err := s.store.CountRepositories(ctx, database.CountRepositoriesParams{
		Language: q.Language,
		Since:    since,
	})
	if err != nil {
		return nil, fmt.Errorf("count repositories: %w", err)
	}
	if total == 0 {
		return mapper.ToSearchResult(0, nil), nil
	}

	repos, err := s.store.ListRepositories(ctx, database.ListRepositoriesParams{
		Language: q.Language,
		Since:    since,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	s.logger.Debug("Cached search served", "language", q.Language, "since", since.Format(time.DateOnly),
		"offset", q.Offset, "limit", q.Limit, "total_count", total, "returned", len(repos))
	return mapper.ToSearchResult(total, repos), nil
}

// SearchLive forwards the query to GitHub as a single search request and scores the page it returns.
// Nothing is written to the store.
func (s *Service) SearchLive(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.ghClient.SendSearchRequest(ctx, q.Language, q.CreatedSince(), q.Offset, q.Limit)
	if err != nil {
		return nil, &custom_errors.ErrUpstream{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Live search rejected by GitHub", "status", resp.StatusCode,
			"rate_limit_remaining", resp.Header.Get("X-RateLimit-Remaining"))
		return nil, &custom_errors.ErrUpstream{StatusCode: resp.StatusCode}
	}

	return s.mapper.MapSearchResult(resp.Body)
}
