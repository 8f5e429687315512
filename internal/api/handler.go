// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custom_errors "github-popularity/internal/errors"
	"github-popularity/internal/model"
)

// Searcher answers repository searches from the store or from GitHub.
type Searcher interface {
	SearchCached(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error)
	SearchLive(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(searcher Searcher, logger *slog.Logger) http.Handler {
	h := &Handler{
		searcher: searcher,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search/repositories", h.searchCached)
		r.Get("/search/repositories/sync", h.searchLive)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// searchCached pages through stored repositories.
// GET /api/v1/search/repositories?language=java&createdDate=2023-01-01&offset=0&limit=10
func (h *Handler) searchCached(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.searcher.SearchCached)
}

// searchLive forwards the search to GitHub.
// GET /api/v1/search/repositories/sync?language=java&createdDate=2023-01-01&offset=1&limit=10
func (h *Handler) searchLive(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.searcher.SearchLive)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, searchFn func(context.Context, model.SearchQuery) (*model.SearchResult, error)) {
	q, err := parseSearchQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := searchFn(r.Context(), q)
	if err != nil {
		var invalid *custom_errors.ErrInvalidSearchQuery
		if errors.As(err, &invalid) {
			respondWithError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		h.logger.Error("Search failed", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func parseSearchQuery(r *http.Request) (model.SearchQuery, error) {
	params := r.URL.Query()

	language := params.Get("language")
	if language == "" {
		return model.SearchQuery{}, errors.New("missing 'language' parameter")
	}

	createdDate, err := time.Parse(time.DateOnly, params.Get("createdDate"))
	if err != nil {
		return model.SearchQuery{}, errors.New("invalid 'createdDate' parameter, expected YYYY-MM-DD")
	}

	offset, err := intParam(params.Get("offset"), "offset")
	if err != nil {
		return model.SearchQuery{}, err
	}
	limit, err := intParam(params.Get("limit"), "limit")
	if err != nil {
		return model.SearchQuery{}, err
	}

	return model.SearchQuery{
		Language:    language,
		CreatedDate: createdDate,
		Offset:      offset,
		Limit:       limit,
	}, nil
}

func intParam(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter, expected an integer", name)
	}
	return v, nil
}
