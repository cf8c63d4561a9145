package web

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mypihq/webtools/internal/mcp"
	"github.com/mypihq/webtools/internal/searxng"
	"github.com/mypihq/webtools/internal/webfetch"
)

const (
	toolWebSearch = "web_search"
	toolFetchURL  = "fetch_url"

	// fallbackHint is appended to fetch failures so the model reaches for a
	// browser-capable tool instead of retrying a dead path.
	fallbackHint = "Consider using a browser-capable tool to view this page instead."
)

// Executor serves the web_search and fetch_url tools.
type Executor struct {
	logger   *slog.Logger
	search   *searxng.Client
	pipeline *webfetch.Pipeline
}

func NewExecutor(log *slog.Logger, search *searxng.Client, pipeline *webfetch.Pipeline) *Executor {
	if log == nil {
		log = slog.Default()
	}
	if pipeline == nil {
		pipeline = webfetch.NewPipeline(log, nil)
	}
	return &Executor{
		logger:   log.With(slog.String("provider", "web_tools")),
		search:   search,
		pipeline: pipeline,
	}
}

func (p *Executor) ListTools(ctx context.Context) ([]mcp.ToolDescriptor, error) {
	tools := []mcp.ToolDescriptor{
		{
			Name:        toolFetchURL,
			Label:       "Fetch URL",
			Description: "Fetch a URL and return its content as text or Markdown. Handles redirects, streamed component payloads, and article extraction, falling back to a rendering proxy when the page is blocked.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string", "description": "The URL to fetch"},
				},
				"required": []string{"url"},
			},
		},
	}
	if p.search != nil {
		tools = append(tools, mcp.ToolDescriptor{
			Name:        toolWebSearch,
			Label:       "Web Search",
			Description: "Search the web via the configured SearXNG instance. Returns titles, URLs and snippets.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":      map[string]any{"type": "string", "description": "Search query"},
					"categories": map[string]any{"type": "string", "description": "Comma-separated SearXNG categories (e.g. general, news, it)"},
					"language":   map[string]any{"type": "string", "description": "Result language code (e.g. en, de)"},
					"time_range": map[string]any{"type": "string", "enum": []string{"day", "week", "month", "year"}, "description": "Restrict results to a recent time window"},
					"limit":      map[string]any{"type": "integer", "description": "Number of results, default 10"},
				},
				"required": []string{"query"},
			},
		})
	}
	return tools, nil
}

func (p *Executor) CallTool(ctx context.Context, session mcp.ToolSession, toolName string, arguments map[string]any) (map[string]any, error) {
	switch toolName {
	case toolFetchURL:
		return p.callFetchURL(ctx, session, arguments)
	case toolWebSearch:
		return p.callWebSearch(ctx, session, arguments)
	default:
		return nil, mcp.ErrToolNotFound
	}
}

func (p *Executor) callFetchURL(ctx context.Context, session mcp.ToolSession, arguments map[string]any) (map[string]any, error) {
	rawURL := mcp.StringArg(arguments, "url")
	if rawURL == "" {
		return mcp.BuildToolErrorResult("url is required"), nil
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	text, err := p.pipeline.Run(ctx, rawURL)
	if err != nil {
		p.logger.Debug("fetch_url failed",
			slog.String("invocation_id", session.InvocationID),
			slog.String("url", rawURL),
			slog.Any("error", err),
		)
		return mcp.BuildToolErrorResult(fmt.Sprintf("Failed to fetch %s: %v. %s", rawURL, err, fallbackHint)), nil
	}
	return mcp.BuildToolSuccessResult(text), nil
}

func (p *Executor) callWebSearch(ctx context.Context, session mcp.ToolSession, arguments map[string]any) (map[string]any, error) {
	if p.search == nil {
		return mcp.BuildToolErrorResult("web_search is not configured: set [searxng] base_url in mypi.toml"), nil
	}
	query := mcp.StringArg(arguments, "query")
	if query == "" {
		return mcp.BuildToolErrorResult("query is required"), nil
	}
	limit := 0
	if value, ok, err := mcp.IntArg(arguments, "limit"); err != nil {
		return mcp.BuildToolErrorResult(err.Error()), nil
	} else if ok && value > 0 {
		limit = value
	}

	response, err := p.search.Search(ctx, searxng.Query{
		Query:      query,
		Categories: mcp.StringArg(arguments, "categories"),
		Language:   mcp.StringArg(arguments, "language"),
		TimeRange:  mcp.StringArg(arguments, "time_range"),
		Limit:      limit,
	})
	if err != nil {
		p.logger.Debug("web_search failed",
			slog.String("invocation_id", session.InvocationID),
			slog.String("query", query),
			slog.Any("error", err),
		)
		return mcp.BuildToolErrorResult(err.Error()), nil
	}
	return mcp.BuildToolSuccessResult(response), nil
}
