package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeGitHub serves the repository search endpoint. The probe (per_page=1) gets a single item,
// every other page gets three java repositories whose ids are derived from the page index.
type fakeGitHub struct {
	*httptest.Server
	total int

	mu      sync.Mutex
	queries []string
}

func newFakeGitHub(t *testing.T, total int) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{total: total}
	f.Server = httptest.NewServer(http.HandlerFunc(f.search))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) search(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/search/repositories" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	params := r.URL.Query()
	f.mu.Lock()
	f.queries = append(f.queries, params.Get("q"))
	f.mu.Unlock()

	page, _ := strconv.Atoi(params.Get("page"))
	perPage, _ := strconv.Atoi(params.Get("per_page"))

	count := 3
	if perPage == 1 {
		count = 1
	}
	items := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		id := page*100 + i
		items = append(items, fmt.Sprintf(`{"id": %d, "language": "Java", "created_at": "2023-06-%02dT00:00:00Z",
			"pushed_at": "2024-01-01T00:00:00Z", "clone_url": "https://github.com/acme/repo-%d.git",
			"stargazers_count": %d, "forks_count": %d}`, id, i, id, id*10, id))
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"total_count": %d, "incomplete_results": false, "items": [%s]}`, f.total, strings.Join(items, ","))
}

func (f *fakeGitHub) receivedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}
