// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"

	"github-popularity/internal/database"
	"github-popularity/internal/github"
	"github-popularity/internal/mapper"
	"github-popularity/internal/model"
)

const (
	// Number of repositories requested per search page
	pageSize = 100
)

// StopReason tells why an ingestion run ended.
type StopReason string

const (
	StopCompleted      StopReason = "completed"
	StopRateLimited    StopReason = "rate_limited"
	StopProbeRejected  StopReason = "probe_rejected"
	StopMalformedProbe StopReason = "malformed_probe"
	StopTransportError StopReason = "transport_error"
	StopStoreError     StopReason = "store_error"
	StopAlreadyRun     StopReason = "already_run"
)

// SearchClient fetches raw search pages from GitHub.
type SearchClient interface {
	SendSearchRequest(ctx context.Context, language string, since time.Time, offset, limit int) (*github.Response, error)
}

// Config fixes what a Syncer harvests. It does not change after construction.
type Config struct {
	Language string
	Since    time.Time
}

// Stats summarizes one ingestion run.
type Stats struct {
	TotalCount   int64         `json:"total_count"`
	TotalPages   int64         `json:"total_pages"`
	PagesFetched int           `json:"pages_fetched"`
	PagesDropped int           `json:"pages_dropped"`
	Inserted     int           `json:"inserted"`
	Updated      int           `json:"updated"`
	MeanScore    float64       `json:"mean_score"`
	MedianScore  float64       `json:"median_score"`
	StopReason   StopReason    `json:"stop_reason"`
	Duration     time.Duration `json:"duration"`
}

// Syncer harvests every search page for one language and creation date floor into the store.
type Syncer struct {
	store    database.Querier
	ghClient SearchClient
	mapper   *mapper.Mapper
	logger   *slog.Logger
	cfg      Config
	started  atomic.Bool
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(store database.Querier, ghClient SearchClient, m *mapper.Mapper, logger *slog.Logger, cfg Config) *Syncer {
	return &Syncer{
		store:    store,
		ghClient: ghClient,
		mapper:   m,
		logger:   logger.With("language", cfg.Language, "since", cfg.Since.Format(time.DateOnly)),
		cfg:      cfg,
	}
}

// Run performs one ingestion pass. A Syncer runs at most once; failures are logged, never returned.
func (s *Syncer) Run(ctx context.Context) Stats {
	if !s.started.CompareAndSwap(false, true) {
		s.logger.Warn("Ingestion already ran for this syncer, ignoring")
		return Stats{StopReason: StopAlreadyRun}
	}

	startTime := time.Now()
	st := &Stats{}
	var scores []float64

	st.StopReason = s.run(ctx, st, &scores)
	st.Duration = time.Since(startTime)

	if len(scores) > 0 {
		st.MeanScore, _ = stats.Mean(scores)
		st.MedianScore, _ = stats.Median(scores)
	}

	s.logger.Info("Ingestion finished",
		"stop_reason", st.StopReason,
		"total_count", st.TotalCount,
		"pages_fetched", st.PagesFetched,
		"pages_dropped", st.PagesDropped,
		"inserted", st.Inserted,
		"updated", st.Updated,
		"mean_score", st.MeanScore,
		"median_score", st.MedianScore,
		"duration", st.Duration.String(),
	)
	return *st
}

func (s *Syncer) run(ctx context.Context, st *Stats, scores *[]float64) StopReason {
	s.logger.Info("Starting ingestion")

	probe, err := s.ghClient.SendSearchRequest(ctx, s.cfg.Language, s.cfg.Since, 0, 1)
	if err != nil {
		s.logger.Error("Probe request failed", "error", err)
		return StopTransportError
	}
	if probe.StatusCode != http.StatusOK {
		s.logger.Info("Probe request rejected, skipping ingestion", "status", probe.StatusCode)
		return StopProbeRejected
	}

	totalCount, err := s.mapper.ExtractTotalCount(probe.Body)
	if err != nil {
		s.logger.Error("Probe response is malformed", "error", err)
		return StopMalformedProbe
	}
	st.TotalCount = totalCount
	// The last partial page is never requested.
	st.TotalPages = totalCount / pageSize
	s.logger.Info("Search sized", "total_count", totalCount, "total_pages", st.TotalPages)

	for currentPage := int64(0); currentPage < st.TotalPages; currentPage++ {
		logger := s.logger.With("page", currentPage)

		resp, err := s.ghClient.SendSearchRequest(ctx, s.cfg.Language, s.cfg.Since, int(currentPage), pageSize)
		if err != nil {
			logger.Error("Search request failed", "error", err)
			return StopTransportError
		}
		st.PagesFetched++

		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusForbidden:
			logger.Info("Rate limit exceeded in GitHub search endpoint",
				"rate_limit_remaining", resp.Header.Get("X-RateLimit-Remaining"),
				"rate_limit_reset", resp.Header.Get("X-RateLimit-Reset"))
			return StopRateLimited
		default:
			logger.Error("GitHub search returned an unexpected status, dropping page", "status", resp.StatusCode)
			st.PagesDropped++
			continue
		}

		repos, _, err := s.mapper.MapPage(resp.Body)
		if err != nil {
			logger.Error("Search page is malformed, dropping page", "error", err)
			st.PagesDropped++
			continue
		}

		for _, repo := range repos {
			inserted, err := s.upsertRepository(ctx, repo)
			if err != nil {
				logger.Error("Failed to store repository", "repository_id", repo.RepositoryID, "error", err)
				return StopStoreError
			}
			if inserted {
				st.Inserted++
			} else {
				st.Updated++
			}
			*scores = append(*scores, repo.Score)
			logger.Debug("Repository stored", "repository_id", repo.RepositoryID, "url", repo.URL, "score", repo.Score)
		}
	}

	return StopCompleted
}

// upsertRepository inserts a repository seen for the first time. For a known repository only
// the score and scored date are written; every other stored field keeps its first-seen value.
func (s *Syncer) upsertRepository(ctx context.Context, repo model.Repository) (bool, error) {
	existing, err := s.store.GetRepositoryByRepositoryID(ctx, repo.RepositoryID)
	if errors.Is(err, database.ErrNotFound) {
		_, err := s.store.UpsertRepository(ctx, repo)
		return true, err
	} else if err != nil {
		return false, err
	}

	existing.Score = repo.Score
	existing.ScoredDate = repo.ScoredDate
	_, err = s.store.UpsertRepository(ctx, existing)
	return false, err
}
