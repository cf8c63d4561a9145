package webfetch

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	readability "github.com/go-shiori/go-readability"
)

// minArticleChars is the smallest main-content text size considered a real
// article rather than boilerplate scraps.
const minArticleChars = 100

// OutcomeKind tags an extraction result.
type OutcomeKind int

const (
	// OutcomeText carries extracted content.
	OutcomeText OutcomeKind = iota
	// OutcomeNotApplicable means the strategy found nothing; the caller
	// should try the next one.
	OutcomeNotApplicable
)

// Outcome is the tagged result of an extraction strategy.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// ExtractArticle runs readability extraction on rawHTML rooted at sourceURL
// (needed so relative links resolve during extraction) and converts the main
// content region to Markdown, prefixed with the article title as a level-1
// heading. It returns OutcomeNotApplicable when no qualifying article is
// found; extractor-internal failures never escape.
func ExtractArticle(rawHTML, sourceURL string) Outcome {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return Outcome{Kind: OutcomeNotApplicable}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return Outcome{Kind: OutcomeNotApplicable}
	}

	title := strings.TrimSpace(article.Title)
	if title == "" || len(strings.TrimSpace(article.TextContent)) <= minArticleChars {
		return Outcome{Kind: OutcomeNotApplicable}
	}

	markdown, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil {
		return Outcome{Kind: OutcomeNotApplicable}
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return Outcome{Kind: OutcomeNotApplicable}
	}

	return Outcome{
		Kind: OutcomeText,
		Text: "# " + title + "\n\n" + markdown,
	}
}
