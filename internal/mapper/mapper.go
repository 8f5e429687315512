// Package mapper turns GitHub search pages into scored repositories and
// projects stored repositories into the response shape.
package mapper

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"

	custom_errors "github-popularity/internal/errors"
	"github-popularity/internal/model"
	"github-popularity/internal/scoring"
)

// Mapper parses search result pages and scores every repository on them.
type Mapper struct {
	scorer *scoring.Scorer
	now    func() time.Time
}

// New creates a Mapper that stamps pages with the wall clock.
func New(scorer *scoring.Scorer) *Mapper {
	return &Mapper{scorer: scorer, now: time.Now}
}

// NewWithClock creates a Mapper that stamps pages with the given clock.
func NewWithClock(scorer *scoring.Scorer, now func() time.Time) *Mapper {
	return &Mapper{scorer: scorer, now: now}
}

// MapPage parses a page into repositories. All repositories on the page share one scored date.
func (m *Mapper) MapPage(body []byte) ([]model.Repository, int64, error) {
	result, err := decodePage(body)
	if err != nil {
		return nil, 0, err
	}

	scoredDate := m.now().UTC()
	repos := make([]model.Repository, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		repo, err := toRepository(item)
		if err != nil {
			return nil, 0, err
		}
		repo.Score = m.scorer.Score(repo.StargazersCount, repo.ForksCount, repo.UpdatedDate)
		repo.ScoredDate = scoredDate
		repos = append(repos, repo)
	}
	return repos, int64(result.GetTotal()), nil
}

// MapSearchResult parses a page straight into the response shape without the storage-only fields.
func (m *Mapper) MapSearchResult(body []byte) (*model.SearchResult, error) {
	result, err := decodePage(body)
	if err != nil {
		return nil, err
	}

	items := make([]model.RepositoryDTO, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		repo, err := toRepository(item)
		if err != nil {
			return nil, err
		}
		items = append(items, model.RepositoryDTO{
			RepositoryID: repo.RepositoryID,
			URL:          repo.URL,
			CreatedDate:  repo.CreatedDate,
			Language:     repo.Language,
			Score:        m.scorer.Score(repo.StargazersCount, repo.ForksCount, repo.UpdatedDate),
		})
	}
	return &model.SearchResult{TotalCount: int64(result.GetTotal()), Items: items}, nil
}

// ExtractTotalCount reads only the total_count of a page.
func (m *Mapper) ExtractTotalCount(body []byte) (int64, error) {
	var probe struct {
		TotalCount *int64 `json:"total_count"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return 0, &custom_errors.ErrMalformedResponse{Field: "body", Err: err}
	}
	if probe.TotalCount == nil {
		return 0, &custom_errors.ErrMalformedResponse{Field: "total_count"}
	}
	return *probe.TotalCount, nil
}

// ToRepositoryDTO projects a stored repository to the response shape.
func ToRepositoryDTO(r model.Repository) model.RepositoryDTO {
	return model.RepositoryDTO{
		RepositoryID: r.RepositoryID,
		URL:          r.URL,
		CreatedDate:  r.CreatedDate,
		Language:     r.Language,
		Score:        r.Score,
	}
}

// ToSearchResult builds a response from a total count and a window of stored repositories.
func ToSearchResult(totalCount int64, repos []model.Repository) *model.SearchResult {
	items := make([]model.RepositoryDTO, 0, len(repos))
	for _, r := range repos {
		items = append(items, ToRepositoryDTO(r))
	}
	return &model.SearchResult{TotalCount: totalCount, Items: items}
}

func decodePage(body []byte) (*github.RepositoriesSearchResult, error) {
	var result github.RepositoriesSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &custom_errors.ErrMalformedResponse{Field: "body", Err: err}
	}
	if result.Total == nil {
		return nil, &custom_errors.ErrMalformedResponse{Field: "total_count"}
	}
	if result.Repositories == nil {
		return nil, &custom_errors.ErrMalformedResponse{Field: "items"}
	}
	return &result, nil
}

// toRepository translates a search item into our model. Score fields are left to the caller.
func toRepository(r *github.Repository) (model.Repository, error) {
	switch {
	case r == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "items[]"}
	case r.Language == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "language"}
	case r.CreatedAt == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "created_at"}
	case r.ID == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "id"}
	case r.CloneURL == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "clone_url"}
	case r.StargazersCount == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "stargazers_count"}
	case r.ForksCount == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "forks_count"}
	case r.PushedAt == nil:
		return model.Repository{}, &custom_errors.ErrMalformedResponse{Field: "pushed_at"}
	}

	return model.Repository{
		RepositoryID:    r.GetID(),
		URL:             r.GetCloneURL(),
		Language:        strings.ToLower(r.GetLanguage()),
		CreatedDate:     r.GetCreatedAt().Time,
		UpdatedDate:     r.GetPushedAt().Time,
		StargazersCount: int64(r.GetStargazersCount()),
		ForksCount:      int64(r.GetForksCount()),
	}, nil
}
