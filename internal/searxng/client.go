package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mypihq/webtools/internal/config"
)

const (
	defaultTimeout = 15 * time.Second
	// DefaultLimit is how many results a search returns when the caller does
	// not ask for a specific count.
	DefaultLimit = 10
)

// ErrNotConfigured means the [searxng] base_url is missing from the config.
var ErrNotConfigured = errors.New("searxng base_url is not configured")

var validTimeRanges = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// Client talks to a SearXNG instance's JSON search API. Configuration is
// read once at construction and held read-only; credentials are forwarded
// as Basic or Bearer auth depending on auth_type.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        config.SearXNGConfig
}

func NewClient(log *slog.Logger, cfg config.SearXNGConfig) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		logger:     log.With(slog.String("component", "searxng")),
		httpClient: &http.Client{Timeout: defaultTimeout},
		cfg:        cfg,
	}
}

// Query is one search request. Zero values mean "instance default"; Limit 0
// means DefaultLimit. TimeRange outside day/week/month/year is ignored.
type Query struct {
	Query      string
	Categories string
	Language   string
	TimeRange  string
	Limit      int
}

// Result is a single reshaped search hit.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content,omitempty"`
	PublishedDate string  `json:"publishedDate,omitempty"`
	Engine        string  `json:"engine,omitempty"`
	Score         float64 `json:"score,omitempty"`
}

// Infobox is a knowledge-panel style answer attached to some queries.
type Infobox struct {
	Infobox string `json:"infobox"`
	Content string `json:"content,omitempty"`
}

// Response is the reshaped search API response.
type Response struct {
	Query       string    `json:"query"`
	Answers     []string  `json:"answers,omitempty"`
	Infoboxes   []Infobox `json:"infoboxes,omitempty"`
	Results     []Result  `json:"results"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Search issues GET <base_url>/search?q=...&format=json with the optional
// category/language/time-range filters and reshapes the JSON response,
// truncating results to the query limit.
func (c *Client) Search(ctx context.Context, q Query) (Response, error) {
	if !c.cfg.Configured() {
		return Response{}, ErrNotConfigured
	}
	if strings.TrimSpace(q.Query) == "" {
		return Response{}, fmt.Errorf("query is required")
	}

	reqURL, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + "/search")
	if err != nil {
		return Response{}, fmt.Errorf("invalid searxng base_url: %w", err)
	}
	params := reqURL.Query()
	params.Set("q", q.Query)
	params.Set("format", "json")
	if q.Categories != "" {
		params.Set("categories", q.Categories)
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if validTimeRanges[q.TimeRange] {
		params.Set("time_range", q.TimeRange)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	switch c.cfg.AuthType {
	case config.AuthBasic:
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	case config.AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("searxng request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading searxng response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("searxng returned HTTP %d", resp.StatusCode)
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Response{}, fmt.Errorf("invalid searxng response: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	return raw.reshape(q.Query, limit), nil
}

type rawResponse struct {
	Query     string `json:"query"`
	Answers   []any  `json:"answers"`
	Infoboxes []struct {
		Infobox string `json:"infobox"`
		Content string `json:"content"`
	} `json:"infoboxes"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"publishedDate"`
		Engine        string  `json:"engine"`
		Score         float64 `json:"score"`
	} `json:"results"`
	Suggestions []string `json:"suggestions"`
}

func (r rawResponse) reshape(query string, limit int) Response {
	out := Response{
		Query:       query,
		Suggestions: r.Suggestions,
	}
	if r.Query != "" {
		out.Query = r.Query
	}
	// Older instances send answers as strings, newer ones as objects with an
	// "answer" field.
	for _, answer := range r.Answers {
		switch value := answer.(type) {
		case string:
			out.Answers = append(out.Answers, value)
		case map[string]any:
			if s, ok := value["answer"].(string); ok && s != "" {
				out.Answers = append(out.Answers, s)
			}
		}
	}
	for _, box := range r.Infoboxes {
		out.Infoboxes = append(out.Infoboxes, Infobox{Infobox: box.Infobox, Content: box.Content})
	}
	for i, item := range r.Results {
		if i >= limit {
			break
		}
		out.Results = append(out.Results, Result{
			Title:         item.Title,
			URL:           item.URL,
			Content:       item.Content,
			PublishedDate: item.PublishedDate,
			Engine:        item.Engine,
			Score:         item.Score,
		})
	}
	if out.Results == nil {
		out.Results = []Result{}
	}
	return out
}
