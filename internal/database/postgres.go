package database

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github-popularity/internal/model"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries implements Querier on Postgres.
type Queries struct {
	db DBTX
	sb sq.StatementBuilderType
}

var _ Querier = (*Queries)(nil)

// New creates Postgres queries on top of a pool, connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// UpsertRepository inserts a repository or overwrites the row with the same repository id.
func (q *Queries) UpsertRepository(ctx context.Context, repo model.Repository) (model.Repository, error) {
	query, args, err := upsertQuery(q.sb, repo).
		Suffix("RETURNING " + joinColumns(repositoryColumns)).
		ToSql()
	if err != nil {
		return model.Repository{}, fmt.Errorf("build upsert: %w", err)
	}
	saved, err := scanRepository(q.db.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Repository{}, fmt.Errorf("upsert repository %d: %w", repo.RepositoryID, err)
	}
	return saved, nil
}

// GetRepositoryByRepositoryID returns ErrNotFound when the repository was never stored.
func (q *Queries) GetRepositoryByRepositoryID(ctx context.Context, repositoryID int64) (model.Repository, error) {
	query, args, err := getByRepositoryIDQuery(q.sb, repositoryID).ToSql()
	if err != nil {
		return model.Repository{}, fmt.Errorf("build get: %w", err)
	}
	repo, err := scanRepository(q.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Repository{}, ErrNotFound
	}
	return repo, err
}

func (q *Queries) CountRepositories(ctx context.Context, arg CountRepositoriesParams) (int64, error) {
	query, args, err := countQuery(q.sb, arg).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var count int64
	err = q.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// ListRepositories returns a window of repositories ordered by creation date ascending.
func (q *Queries) ListRepositories(ctx context.Context, arg ListRepositoriesParams) ([]model.Repository, error) {
	query, args, err := listQuery(q.sb, arg).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}
