// internal/model/models.go
package model

import (
	"strings"
	"time"

	custom_errors "github-popularity/internal/errors"
)

// MaxPageSize is the largest page a client may request from either search mode.
const MaxPageSize = 30

// Language is one of the repository languages the service accepts.
type Language string

const (
	LanguageJava       Language = "java"
	LanguageJavaScript Language = "javascript"
	LanguageRuby       Language = "ruby"
	LanguageRust       Language = "rust"
)

var supportedLanguages = map[Language]struct{}{
	LanguageJava:       {},
	LanguageJavaScript: {},
	LanguageRuby:       {},
	LanguageRust:       {},
}

// ParseLanguage lowercases the input and reports whether it is a supported language.
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	_, ok := supportedLanguages[l]
	return l, ok
}

// Repository is a scored GitHub repository as persisted in the store.
type Repository struct {
	ID              int64
	RepositoryID    int64
	URL             string
	Language        string
	CreatedDate     time.Time
	UpdatedDate     time.Time
	StargazersCount int64
	ForksCount      int64
	Score           float64
	ScoredDate      time.Time
}

// RepositoryDTO is the response-facing projection of a repository.
type RepositoryDTO struct {
	RepositoryID int64     `json:"repositoryId"`
	URL          string    `json:"url"`
	CreatedDate  time.Time `json:"createdDate"`
	Language     string    `json:"language"`
	Score        float64   `json:"score"`
}

// SearchResult is returned by both the cached and the live search.
type SearchResult struct {
	TotalCount int64           `json:"totalCount"`
	Items      []RepositoryDTO `json:"items"`
}

// SearchQuery carries the client parameters shared by both search modes.
type SearchQuery struct {
	Language    string
	CreatedDate time.Time
	Offset      int
	Limit       int
}

// Validate normalizes the language and checks the window bounds.
func (q *SearchQuery) Validate() error {
	lang, ok := ParseLanguage(q.Language)
	if !ok {
		return &custom_errors.ErrInvalidSearchQuery{Field: "language", Reason: "unsupported language " + q.Language}
	}
	q.Language = string(lang)

	if q.Offset < 0 {
		return &custom_errors.ErrInvalidSearchQuery{Field: "offset", Reason: "must not be negative"}
	}
	if q.Limit <= 0 || q.Limit > MaxPageSize {
		return &custom_errors.ErrInvalidSearchQuery{Field: "limit", Reason: "must be between 1 and 30"}
	}
	return nil
}

// CreatedSince is the start of the query's creation day in UTC.
func (q SearchQuery) CreatedSince() time.Time {
	return StartOfDayUTC(q.CreatedDate)
}

// StartOfDayUTC truncates t to midnight UTC of its calendar date.
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
