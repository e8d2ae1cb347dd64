package widget

import (
	"html"
	"regexp"
	"strings"
)

// Inline patterns, applied independently. This is deliberately not a full
// markdown parser: overlapping or nested spans are not guaranteed to nest
// correctly, matching what the embed script does in the browser.
var (
	boldRE   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRE = regexp.MustCompile(`\*(.*?)\*`)
	codeRE   = regexp.MustCompile("`(.*?)`")
)

// RenderMarkdown converts assistant-authored text to HTML markup: **bold**,
// *italic*, `code`, and newline-to-break. The input is HTML-escaped first;
// the escape set does not touch asterisks or backticks, so the inline
// patterns still match.
func RenderMarkdown(text string) string {
	out := html.EscapeString(text)
	out = boldRE.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRE.ReplaceAllString(out, "<em>$1</em>")
	out = codeRE.ReplaceAllString(out, "<code>$1</code>")
	return strings.ReplaceAll(out, "\n", "<br>")
}

// RenderPlain converts user-authored text: escaping plus newline-to-break
// only. User text is never markdown-interpreted so the user's own literal
// asterisks are not restyled.
func RenderPlain(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
