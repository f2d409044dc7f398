// Package scholar is a thin client for the Semantic Scholar Graph API,
// used by the related-research stage to find papers near the one under
// analysis. The free tier is aggressively rate limited, so every request
// goes through a shared limiter.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Graph API endpoint.
const DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

const searchFields = "title,authors,year,abstract,venue,url,citationCount,referenceCount"

// Author is a paper author as returned by the API.
type Author struct {
	Name string `json:"name"`
}

// Paper is the subset of paper metadata the pipeline consumes.
type Paper struct {
	Title         string   `json:"title"`
	Authors       []Author `json:"authors"`
	Year          int      `json:"year"`
	Abstract      string   `json:"abstract"`
	Venue         string   `json:"venue"`
	URL           string   `json:"url"`
	CitationCount int      `json:"citationCount"`
}

// Config configures the client.
type Config struct {
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client talks to the Semantic Scholar API.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient creates a rate-limited client. logger may be nil.
func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}
}

// SearchPapers searches for papers matching the query.
func (c *Client) SearchPapers(ctx context.Context, query string, limit int) ([]Paper, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {searchFields},
	}

	var result struct {
		Data []Paper `json:"data"`
	}
	if err := c.get(ctx, "/paper/search", params, &result); err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	return result.Data, nil
}

// Paper fetches a single paper by Semantic Scholar ID or DOI.
func (c *Client) Paper(ctx context.Context, paperID string) (*Paper, error) {
	params := url.Values{"fields": {searchFields}}

	var p Paper
	if err := c.get(ctx, "/paper/"+url.PathEscape(paperID), params, &p); err != nil {
		return nil, fmt.Errorf("fetching paper %s: %w", paperID, err)
	}
	return &p, nil
}

// Citations fetches papers citing the given paper.
func (c *Client) Citations(ctx context.Context, paperID string, limit int) ([]Paper, error) {
	params := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"fields": {"title,authors,year,abstract,venue,url"},
	}

	var result struct {
		Data []struct {
			CitingPaper Paper `json:"citingPaper"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/paper/"+url.PathEscape(paperID)+"/citations", params, &result); err != nil {
		return nil, fmt.Errorf("fetching citations for %s: %w", paperID, err)
	}

	papers := make([]Paper, 0, len(result.Data))
	for _, item := range result.Data {
		papers = append(papers, item.CitingPaper)
	}
	return papers, nil
}

// get performs one rate-limited GET and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if c.logger != nil {
			c.logger.Warn("semantic scholar request failed", "path", path, "status", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
