package webfetch

import (
	"net/http"
	"strings"
)

var challengeKeywords = []string{
	"challenge",
	"captcha",
	"cloudflare",
	"just a moment...",
}

// IsBlocked reports whether a response looks like an anti-bot challenge page.
// Heuristic only; false negatives are acceptable because the fallback chain
// compensates.
func IsBlocked(statusCode int, body string) bool {
	switch statusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	lowered := strings.ToLower(body)
	for _, keyword := range challengeKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
