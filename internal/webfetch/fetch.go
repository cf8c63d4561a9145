package webfetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const (
	// DefaultMaxRedirects is the hop budget for a single tool invocation.
	DefaultMaxRedirects = 5

	// maxBodyBytes caps how much of a response body is read (10 MB).
	maxBodyBytes = 10 * 1024 * 1024

	defaultUserAgent = "mypi-webtools/1.0 (+https://github.com/mypihq/webtools)"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,application/json;q=0.7,*/*;q=0.5"
)

// FetchResult is the terminal response of a fetch. StatusCode is 0 only when
// the transport itself failed, which Fetch reports as an error instead.
type FetchResult struct {
	Body        string
	ContentType string
	StatusCode  int
}

// Fetcher performs GET requests with manual redirect handling. Redirects are
// followed one hop at a time so the hop budget and per-hop Location
// resolution stay under the caller's control; the underlying client never
// follows redirects on its own.
type Fetcher struct {
	logger *slog.Logger
	client *http.Client
}

func NewFetcher(log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		logger: log.With(slog.String("component", "fetcher")),
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch issues a GET for rawURL with the default header set merged with
// headers (caller values win). Responses with status in [300,400) carrying a
// Location header are followed recursively, decrementing maxRedirects; a
// redirect arriving with no budget left fails with ErrTooManyRedirects. Any
// other response is returned whole regardless of status so callers can
// inspect challenge pages. A context that is already done aborts before any
// network I/O.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers map[string]string, maxRedirects int) (FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return FetchResult{}, fmt.Errorf("%w: %v", ErrAborted, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchResult{}, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", defaultAccept)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
		}
		return FetchResult{}, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if location := resp.Header.Get("Location"); location != "" {
			if maxRedirects <= 0 {
				return FetchResult{}, ErrTooManyRedirects
			}
			next, err := resp.Request.URL.Parse(location)
			if err != nil {
				return FetchResult{}, &NetworkError{URL: rawURL, Err: fmt.Errorf("invalid redirect location %q: %w", location, err)}
			}
			f.logger.Debug("following redirect",
				slog.String("from", rawURL),
				slog.String("to", next.String()),
				slog.Int("remaining_hops", maxRedirects-1),
			)
			return f.Fetch(ctx, next.String(), headers, maxRedirects-1)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return FetchResult{}, &NetworkError{URL: rawURL, Err: err}
	}

	return FetchResult{
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
