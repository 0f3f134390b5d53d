package scraper

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExtractText concatenates the text nodes under n, skipping script and style.
func ExtractText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(ExtractText(c))
	}
	return sb.String()
}

// CleanText returns the text under n with runs of whitespace collapsed.
func CleanText(n *html.Node) string {
	return strings.Join(strings.Fields(ExtractText(n)), " ")
}

// lower folds text for keyword matching. A Caser is not safe for concurrent
// use, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
