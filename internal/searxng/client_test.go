package searxng

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypihq/webtools/internal/config"
)

const sampleResponse = `{
	"query": "go testing",
	"answers": ["an answer string", {"answer": "an object answer"}],
	"infoboxes": [{"infobox": "Go", "content": "A programming language."}],
	"results": [
		{"title": "First", "url": "https://a.example/1", "content": "snippet one", "publishedDate": "2024-01-02", "engine": "duckduckgo", "score": 2.5},
		{"title": "Second", "url": "https://a.example/2", "content": "snippet two", "engine": "brave", "score": 1.5},
		{"title": "Third", "url": "https://a.example/3", "content": "snippet three", "engine": "google", "score": 0.5}
	],
	"suggestions": ["golang testing"]
}`

func newTestClient(t *testing.T, cfg config.SearXNGConfig, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	return NewClient(nil, cfg), srv
}

func TestSearchQueryStringMapping(t *testing.T) {
	var got url.Values
	client, _ := newTestClient(t, config.SearXNGConfig{AuthType: config.AuthNone}, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(sampleResponse))
	})

	_, err := client.Search(context.Background(), Query{
		Query:      "go testing",
		Categories: "it,news",
		Language:   "en",
		TimeRange:  "week",
	})
	require.NoError(t, err)

	assert.Equal(t, "go testing", got.Get("q"))
	assert.Equal(t, "json", got.Get("format"))
	assert.Equal(t, "it,news", got.Get("categories"))
	assert.Equal(t, "en", got.Get("language"))
	assert.Equal(t, "week", got.Get("time_range"))
}

func TestSearchInvalidTimeRangeOmitted(t *testing.T) {
	var got url.Values
	client, _ := newTestClient(t, config.SearXNGConfig{AuthType: config.AuthNone}, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(sampleResponse))
	})

	_, err := client.Search(context.Background(), Query{Query: "x", TimeRange: "fortnight"})
	require.NoError(t, err)
	assert.False(t, got.Has("time_range"))
}

func TestSearchBasicAuthForwarded(t *testing.T) {
	client, _ := newTestClient(t, config.SearXNGConfig{
		AuthType: config.AuthBasic,
		Username: "alice",
		Password: "hunter2",
	}, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "hunter2", pass)
		w.Write([]byte(sampleResponse))
	})

	_, err := client.Search(context.Background(), Query{Query: "x"})
	require.NoError(t, err)
}

func TestSearchBearerAuthForwarded(t *testing.T) {
	client, _ := newTestClient(t, config.SearXNGConfig{
		AuthType: config.AuthBearer,
		Token:    "tok-123",
	}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte(sampleResponse))
	})

	_, err := client.Search(context.Background(), Query{Query: "x"})
	require.NoError(t, err)
}

func TestSearchReshapesAndTruncates(t *testing.T) {
	client, _ := newTestClient(t, config.SearXNGConfig{AuthType: config.AuthNone}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	})

	resp, err := client.Search(context.Background(), Query{Query: "go testing", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, "go testing", resp.Query)
	assert.Equal(t, []string{"an answer string", "an object answer"}, resp.Answers)
	require.Len(t, resp.Infoboxes, 1)
	assert.Equal(t, "Go", resp.Infoboxes[0].Infobox)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "First", resp.Results[0].Title)
	assert.Equal(t, "2024-01-02", resp.Results[0].PublishedDate)
	assert.Equal(t, 2.5, resp.Results[0].Score)
	assert.Equal(t, []string{"golang testing"}, resp.Suggestions)
}

func TestSearchDefaultLimit(t *testing.T) {
	many := struct {
		Results []map[string]any `json:"results"`
	}{}
	for i := 0; i < 25; i++ {
		many.Results = append(many.Results, map[string]any{"title": "t", "url": "https://x.example/"})
	}
	payload, err := json.Marshal(many)
	require.NoError(t, err)

	client, _ := newTestClient(t, config.SearXNGConfig{AuthType: config.AuthNone}, func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	resp, err := client.Search(context.Background(), Query{Query: "x"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, DefaultLimit)
}

func TestSearchUnconfigured(t *testing.T) {
	client := NewClient(nil, config.SearXNGConfig{})
	_, err := client.Search(context.Background(), Query{Query: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearchUpstreamStatusError(t *testing.T) {
	client, _ := newTestClient(t, config.SearXNGConfig{AuthType: config.AuthNone}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), Query{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
