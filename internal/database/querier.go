// Package database persists scored repositories in Postgres or SQLite.
package database

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github-popularity/internal/model"
)

// ErrNotFound is returned when no repository matches a lookup.
var ErrNotFound = errors.New("repository not found")

// Querier is the store used by the ingestion worker and the query service.
type Querier interface {
	UpsertRepository(ctx context.Context, repo model.Repository) (model.Repository, error)
	GetRepositoryByRepositoryID(ctx context.Context, repositoryID int64) (model.Repository, error)
	CountRepositories(ctx context.Context, arg CountRepositoriesParams) (int64, error)
	ListRepositories(ctx context.Context, arg ListRepositoriesParams) ([]model.Repository, error)
}

type CountRepositoriesParams struct {
	Language string
	Since    time.Time
}

type ListRepositoriesParams struct {
	Language string
	Since    time.Time
	Limit    int
	Offset   int
}

const tableName = "github_repo"

var repositoryColumns = []string{
	"id", "repository_id", "url", "language", "created_date", "updated_date",
	"stargazers_count", "forks_count", "score", "scored_date",
}

var upsertColumns = repositoryColumns[1:]

const onConflictRepositoryID = `ON CONFLICT (repository_id) DO UPDATE SET
	url = excluded.url,
	language = excluded.language,
	created_date = excluded.created_date,
	updated_date = excluded.updated_date,
	stargazers_count = excluded.stargazers_count,
	forks_count = excluded.forks_count,
	score = excluded.score,
	scored_date = excluded.scored_date`

func upsertQuery(b sq.StatementBuilderType, repo model.Repository) sq.InsertBuilder {
	return b.Insert(tableName).
		Columns(upsertColumns...).
		Values(
			repo.RepositoryID,
			repo.URL,
			repo.Language,
			repo.CreatedDate.UTC(),
			repo.UpdatedDate.UTC(),
			repo.StargazersCount,
			repo.ForksCount,
			repo.Score,
			repo.ScoredDate.UTC(),
		).
		Suffix(onConflictRepositoryID)
}

func getByRepositoryIDQuery(b sq.StatementBuilderType, repositoryID int64) sq.SelectBuilder {
	return b.Select(repositoryColumns...).
		From(tableName).
		Where(sq.Eq{"repository_id": repositoryID})
}

func countQuery(b sq.StatementBuilderType, arg CountRepositoriesParams) sq.SelectBuilder {
	return b.Select("COUNT(*)").
		From(tableName).
		Where(sq.Eq{"language": arg.Language}).
		Where(sq.GtOrEq{"created_date": arg.Since.UTC()})
}

func listQuery(b sq.StatementBuilderType, arg ListRepositoriesParams) sq.SelectBuilder {
	return b.Select(repositoryColumns...).
		From(tableName).
		Where(sq.Eq{"language": arg.Language}).
		Where(sq.GtOrEq{"created_date": arg.Since.UTC()}).
		OrderBy("created_date ASC", "id ASC").
		Limit(uint64(arg.Limit)).
		Offset(uint64(arg.Offset))
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (model.Repository, error) {
	var r model.Repository
	err := row.Scan(
		&r.ID,
		&r.RepositoryID,
		&r.URL,
		&r.Language,
		&r.CreatedDate,
		&r.UpdatedDate,
		&r.StargazersCount,
		&r.ForksCount,
		&r.Score,
		&r.ScoredDate,
	)
	if err != nil {
		return model.Repository{}, err
	}
	r.CreatedDate = r.CreatedDate.UTC()
	r.UpdatedDate = r.UpdatedDate.UTC()
	r.ScoredDate = r.ScoredDate.UTC()
	return r, nil
}
