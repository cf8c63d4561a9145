package webfetch

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// minFragmentLen is the shortest string fragment worth keeping. Shorter
// values are almost always tag names, class lists, or framework tokens.
const minFragmentLen = 20

var quotedLiteralRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

// ExtractFlightText recovers human-readable text from a line-oriented
// streaming component payload (rows of the form "<index>:<value>"). It is a
// best-effort scan, not a parser: the payload grammar is unstable, so every
// row is attempted independently and failures degrade to a raw scan for
// quoted string literals. The result is the kept fragments joined by blank
// lines in encounter order; it is empty when nothing qualifies, never an
// error.
//
// The numeric row index is only validated, not consumed: fragments keep
// line-encounter order even for out-of-order or duplicated rows.
func ExtractFlightText(raw string) string {
	var fragments []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sep := strings.Index(line, ":")
		if sep <= 0 || !allDigits(line[:sep]) {
			continue
		}
		fragments = append(fragments, extractRowText(line[sep+1:])...)
	}
	return strings.Join(fragments, "\n\n")
}

func extractRowText(payload string) []string {
	var value any
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		// Second tier: repair the row before giving up on structure. Only a
		// repair that lands on a string or sequence counts; anything else is
		// treated as a failed parse.
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &value) != nil {
			return scanQuotedLiterals(payload)
		}
		switch value.(type) {
		case string, []any:
		default:
			return scanQuotedLiterals(payload)
		}
	}

	switch v := value.(type) {
	case string:
		if keepFragment(v, false) {
			return []string{v}
		}
	case []any:
		var kept []string
		for _, element := range v {
			if s, ok := element.(string); ok && keepFragment(s, true) {
				kept = append(kept, s)
			}
		}
		return kept
	}
	return nil
}

// keepFragment filters out framework-internal strings: short values,
// reference/marker sentinels ("$", "@"), and, inside arrays, strings that are
// nested arrays serialized as text.
func keepFragment(s string, inArray bool) bool {
	if len(s) <= minFragmentLen {
		return false
	}
	if strings.HasPrefix(s, "$") || strings.HasPrefix(s, "@") {
		return false
	}
	if inArray && strings.HasPrefix(s, "[") {
		return false
	}
	return true
}

// scanQuotedLiterals is the last-resort tier: find every quoted literal in
// the row, decode each one on its own, and keep whatever passes the fragment
// filter. Undecodable literals are skipped silently.
func scanQuotedLiterals(payload string) []string {
	var kept []string
	for _, literal := range quotedLiteralRe.FindAllString(payload, -1) {
		var s string
		if err := json.Unmarshal([]byte(literal), &s); err != nil {
			continue
		}
		if keepFragment(s, false) {
			kept = append(kept, s)
		}
	}
	return kept
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
