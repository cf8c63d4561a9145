package webfetch

import (
	"strings"

	"golang.org/x/net/html"
)

// flightScriptMarker identifies inline scripts that push streaming component
// payload rows into the page at hydration time.
const flightScriptMarker = "self.__next_f.push"

// findFlightScript scans all inline <script> elements of doc and returns the
// text content of the first one containing the embedded-payload marker.
// Parse errors on garbled markup are swallowed; x/net/html is tolerant and
// still yields whatever tree it could build.
func findFlightScript(doc string) (string, bool) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", false
	}

	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			var text strings.Builder
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					text.WriteString(child.Data)
				}
			}
			if content := text.String(); strings.Contains(content, flightScriptMarker) {
				found = content
				return true
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}

	if walk(root) {
		return found, true
	}
	return "", false
}
