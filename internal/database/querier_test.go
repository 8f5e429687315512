package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-popularity/internal/model"
)

var since = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func newRepo(id int64, language string, created time.Time) model.Repository {
	return model.Repository{
		RepositoryID:    id,
		URL:             fmt.Sprintf("https://github.com/acme/repo-%d.git", id),
		Language:        language,
		CreatedDate:     created,
		UpdatedDate:     created.Add(24 * time.Hour),
		StargazersCount: id * 10,
		ForksCount:      id,
		Score:           float64(id),
		ScoredDate:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// runQuerierSuite exercises a Querier implementation against a fresh, empty store.
func runQuerierSuite(t *testing.T, q Querier) {
	ctx := context.Background()

	t.Run("get returns ErrNotFound for unknown repositories", func(t *testing.T) {
		_, err := q.GetRepositoryByRepositoryID(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("upsert inserts then overwrites by repository id", func(t *testing.T) {
		repo := newRepo(500, "ruby", since.Add(48*time.Hour))

		inserted, err := q.UpsertRepository(ctx, repo)
		require.NoError(t, err)
		assert.NotZero(t, inserted.ID)
		assert.Equal(t, repo.URL, inserted.URL)
		assert.True(t, repo.CreatedDate.Equal(inserted.CreatedDate))

		inserted.Score = 88.5
		inserted.ScoredDate = repo.ScoredDate.Add(time.Hour)
		updated, err := q.UpsertRepository(ctx, inserted)
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, updated.ID)
		assert.Equal(t, 88.5, updated.Score)
		assert.True(t, inserted.ScoredDate.Equal(updated.ScoredDate))

		found, err := q.GetRepositoryByRepositoryID(ctx, 500)
		require.NoError(t, err)
		assert.Equal(t, updated.ID, found.ID)
		assert.Equal(t, int64(5000), found.StargazersCount)
		assert.Equal(t, 88.5, found.Score)
	})

	t.Run("count and list filter by language and creation date", func(t *testing.T) {
		for i := int64(1); i <= 20; i++ {
			// inserted newest first so ordering comes from the query
			_, err := q.UpsertRepository(ctx, newRepo(i, "java", since.Add(time.Duration(21-i)*time.Hour)))
			require.NoError(t, err)
		}
		_, err := q.UpsertRepository(ctx, newRepo(100, "java", since.Add(-time.Second)))
		require.NoError(t, err)
		_, err = q.UpsertRepository(ctx, newRepo(101, "rust", since.Add(time.Hour)))
		require.NoError(t, err)

		count, err := q.CountRepositories(ctx, CountRepositoriesParams{Language: "java", Since: since})
		require.NoError(t, err)
		assert.Equal(t, int64(20), count)

		all, err := q.ListRepositories(ctx, ListRepositoriesParams{Language: "java", Since: since, Limit: 30})
		require.NoError(t, err)
		require.Len(t, all, 20)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedDate.Before(all[i-1].CreatedDate), "list must be ordered by created date")
		}
		assert.Equal(t, int64(20), all[0].RepositoryID)
		assert.Equal(t, int64(1), all[19].RepositoryID)

		window, err := q.ListRepositories(ctx, ListRepositoriesParams{Language: "java", Since: since, Limit: 5, Offset: 5})
		require.NoError(t, err)
		require.Len(t, window, 5)
		assert.Equal(t, all[5].RepositoryID, window[0].RepositoryID)
		assert.Equal(t, all[9].RepositoryID, window[4].RepositoryID)

		beyond, err := q.ListRepositories(ctx, ListRepositoriesParams{Language: "java", Since: since, Limit: 5, Offset: 40})
		require.NoError(t, err)
		assert.Empty(t, beyond)

		none, err := q.CountRepositories(ctx, CountRepositoriesParams{Language: "javascript", Since: since})
		require.NoError(t, err)
		assert.Zero(t, none)
	})
}
