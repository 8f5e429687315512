package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github-popularity/internal/model"
)

// SQLite implements Querier on an embedded SQLite file.
type SQLite struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ Querier = (*SQLite)(nil)

// OpenSQLite opens or creates a SQLite database and its schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers; the ingestion worker and request handlers share it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &SQLite{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS github_repo (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		repository_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		language TEXT NOT NULL,
		created_date TIMESTAMP NOT NULL,
		updated_date TIMESTAMP NOT NULL,
		stargazers_count INTEGER NOT NULL DEFAULT 0,
		forks_count INTEGER NOT NULL DEFAULT 0,
		score REAL NOT NULL DEFAULT 0,
		scored_date TIMESTAMP NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_github_repo_repository_id ON github_repo(repository_id);
	CREATE INDEX IF NOT EXISTS idx_github_repo_language ON github_repo(language);
	CREATE INDEX IF NOT EXISTS idx_github_repo_created_date ON github_repo(created_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) UpsertRepository(ctx context.Context, repo model.Repository) (model.Repository, error) {
	query, args, err := upsertQuery(s.sb, repo).ToSql()
	if err != nil {
		return model.Repository{}, fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.Repository{}, fmt.Errorf("upsert repository %d: %w", repo.RepositoryID, err)
	}
	return s.GetRepositoryByRepositoryID(ctx, repo.RepositoryID)
}

func (s *SQLite) GetRepositoryByRepositoryID(ctx context.Context, repositoryID int64) (model.Repository, error) {
	query, args, err := getByRepositoryIDQuery(s.sb, repositoryID).ToSql()
	if err != nil {
		return model.Repository{}, fmt.Errorf("build get: %w", err)
	}
	repo, err := scanRepository(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Repository{}, ErrNotFound
	}
	return repo, err
}

func (s *SQLite) CountRepositories(ctx context.Context, arg CountRepositoriesParams) (int64, error) {
	query, args, err := countQuery(s.sb, arg).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var count int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *SQLite) ListRepositories(ctx context.Context, arg ListRepositoriesParams) ([]model.Repository, error) {
	query, args, err := listQuery(s.sb, arg).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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
