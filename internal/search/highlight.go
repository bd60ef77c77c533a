package search

import (
	"html"
	"regexp"
	"strings"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"

	// SnippetLength is the number of characters of content shown per hit.
	SnippetLength = 200
)

// Highlighter wraps keyword occurrences in <mark> tags using one
// case-insensitive alternation over all keywords.
type Highlighter struct {
	re *regexp.Regexp
}

func NewHighlighter(keywords []string) *Highlighter {
	seen := make(map[string]struct{}, len(keywords))
	alts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		alts = append(alts, regexp.QuoteMeta(kw))
	}
	if len(alts) == 0 {
		return &Highlighter{}
	}
	return &Highlighter{re: regexp.MustCompile("(?i)(?:" + strings.Join(alts, "|") + ")")}
}

// Highlight returns text as HTML with every non-overlapping keyword match
// marked. Everything outside the marks is escaped.
func (h *Highlighter) Highlight(text string) string {
	if h == nil || h.re == nil || text == "" {
		return html.EscapeString(text)
	}

	var b strings.Builder
	last := 0
	for _, loc := range h.re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString(markOpen)
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString(markClose)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// Snippet cuts content to n characters, appending "..." when truncated.
func Snippet(content string, n int) string {
	runes := []rune(content)
	if n <= 0 || len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
