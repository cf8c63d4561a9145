package webfetch

import (
	"context"
	"log/slog"
	"mime"
	"strings"
)

const (
	// DefaultProxyBase is the rendering-proxy prefix; the original URL is
	// appended verbatim.
	DefaultProxyBase = "https://r.jina.ai/"

	// minPayloadLen is the minimum length for streaming-payload extraction
	// output to count as a usable result.
	minPayloadLen = 50
)

// pipelineState enumerates the fallback chain. The chain runs as a loop with
// a single exit so every path terminates in exactly one success or error
// return.
type pipelineState int

const (
	stateLocalFetch pipelineState = iota
	stateClassify
	stateProxyFetch
	stateProxyClassify
)

// Pipeline sequences the content-extraction fallback chain: direct fetch,
// classification by content type, payload/article/embedded-payload
// extraction, and finally a rendering-proxy fetch.
type Pipeline struct {
	logger       *slog.Logger
	fetcher      *Fetcher
	proxyBase    string
	maxRedirects int
}

func NewPipeline(log *slog.Logger, fetcher *Fetcher) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if fetcher == nil {
		fetcher = NewFetcher(log)
	}
	return &Pipeline{
		logger:       log.With(slog.String("component", "fetch_pipeline")),
		fetcher:      fetcher,
		proxyBase:    DefaultProxyBase,
		maxRedirects: DefaultMaxRedirects,
	}
}

// Run fetches rawURL and returns the best extracted text. Errors carry the
// fetch taxonomy (NetworkError, ErrTooManyRedirects, ErrAborted,
// UpstreamStatusError, BlockedError); the tool layer renders them as
// error-flagged results, so nothing escapes as a fault.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (string, error) {
	var local, proxy FetchResult

	state := stateLocalFetch
	for {
		switch state {
		case stateLocalFetch:
			result, err := p.fetcher.Fetch(ctx, rawURL, nil, p.maxRedirects)
			if err != nil {
				return "", err
			}
			local = result
			state = stateClassify

		case stateClassify:
			if IsBlocked(local.StatusCode, local.Body) {
				p.logger.Debug("direct fetch looks blocked, trying proxy",
					slog.String("url", rawURL),
					slog.Int("status", local.StatusCode),
				)
				state = stateProxyFetch
				continue
			}
			if local.StatusCode < 200 || local.StatusCode >= 300 {
				state = stateProxyFetch
				continue
			}
			if text, ok := p.extractLocal(rawURL, local); ok {
				return text, nil
			}
			state = stateProxyFetch

		case stateProxyFetch:
			result, err := p.fetcher.Fetch(ctx, p.proxyBase+rawURL, nil, p.maxRedirects)
			if err != nil {
				return "", err
			}
			proxy = result
			state = stateProxyClassify

		case stateProxyClassify:
			if proxy.StatusCode < 200 || proxy.StatusCode >= 300 {
				return "", &UpstreamStatusError{StatusCode: proxy.StatusCode}
			}
			if IsBlocked(proxy.StatusCode, proxy.Body) {
				return "", &BlockedError{URL: rawURL}
			}
			return proxy.Body, nil
		}
	}
}

// extractLocal classifies a successful direct response by content type and
// runs the matching extraction strategies. ok is false when every strategy
// came up short, which sends the pipeline to the proxy.
func (p *Pipeline) extractLocal(rawURL string, result FetchResult) (string, bool) {
	if strings.TrimSpace(result.Body) == "" {
		return "", false
	}

	contentType := mediaType(result.ContentType)
	if isPassthrough(contentType) {
		return result.Body, true
	}

	if contentType == "text/x-component" {
		if text := ExtractFlightText(result.Body); len(text) > minPayloadLen {
			return text, true
		}
		// Component payloads sometimes wrap a full HTML document; keep going
		// with the HTML strategies below.
	} else if !isHTML(contentType) {
		return "", false
	}

	if outcome := ExtractArticle(result.Body, rawURL); outcome.Kind == OutcomeText {
		return outcome.Text, true
	}

	if script, ok := findFlightScript(result.Body); ok {
		if text := ExtractFlightText(script); len(text) > minPayloadLen {
			return text, true
		}
	}

	return "", false
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	}
	return mt
}

func isPassthrough(contentType string) bool {
	switch contentType {
	case "application/json", "text/json", "text/plain", "text/markdown", "text/x-markdown":
		return true
	}
	return strings.HasSuffix(contentType, "+json")
}

func isHTML(contentType string) bool {
	return contentType == "text/html" || contentType == "application/xhtml+xml"
}
