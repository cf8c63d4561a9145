package webfetch

import (
	"errors"
	"fmt"
)

// ErrTooManyRedirects is returned when a redirect chain exhausts the hop
// budget before reaching a non-redirect response.
var ErrTooManyRedirects = errors.New("too many redirects")

// ErrAborted is returned when the cancellation signal is observed before a
// request is issued.
var ErrAborted = errors.New("fetch aborted")

// NetworkError wraps a transport-level failure for a specific URL.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamStatusError reports a non-2xx response from the rendering proxy.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("rendering proxy returned HTTP %d", e.StatusCode)
}

// BlockedError reports that both the direct fetch and the rendering proxy
// served challenge pages.
type BlockedError struct {
	URL string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("both direct fetch and rendering proxy were blocked by bot protection for %s", e.URL)
}
