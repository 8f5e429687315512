// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

const (
	// NoCredential is the token value meaning "send requests unauthenticated".
	NoCredential = "unauthorized"

	acceptHeader  = "application/vnd.github+json"
	apiVersion    = "2022-11-28"
	searchDateFmt = "2006-01-02"
)

// Response is the raw outcome of a search request. Non-2xx statuses are not errors.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Client is a wrapper around the go-github client that exposes raw search pages.
type Client struct {
	gh         *github.Client
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates and configures a new Client instance.
// A token other than NoCredential is sent as a bearer credential.
// An empty baseURL keeps the public GitHub API.
func NewClient(baseURL, token string, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{}
	if token != "" && token != NoCredential {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url %q: %w", baseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:         gh,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// SendSearchRequest fetches one page of the repository search for a language and creation date floor.
// offset and limit are sent unchanged as the page and per_page parameters.
func (c *Client) SendSearchRequest(ctx context.Context, language string, since time.Time, offset, limit int) (*Response, error) {
	path := fmt.Sprintf("search/repositories?q=language:%s+created:%%3E%s&page=%d&per_page=%d&sort=updated&order=desc",
		url.QueryEscape(language), since.Format(searchDateFmt), offset, limit)

	req, err := c.gh.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	c.logger.Debug("Sending search request", "language", language, "since", since.Format(searchDateFmt), "page", offset, "per_page", limit)

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response body: %w", err)
	}

	c.logger.Debug("Search response received", "status", resp.StatusCode, "rate_limit_remaining", resp.Header.Get("X-RateLimit-Remaining"))

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}
