package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	listItemSeparator = regexp.MustCompile(`</li>\s*<li[^>]*>`)
	listWrapper       = regexp.MustCompile(`</?[ou]l>`)
	listItemOpen      = regexp.MustCompile(`<li[^>]*>`)
	anyTag            = regexp.MustCompile(`<[^>]*>`)
	trailingSpace     = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRuns         = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// CleanHTMLArtifacts removes HTML list markup and stray tags that rich-text
// editors leave behind in markdown content. List items become bullet lines;
// any remaining tags are dropped and common entities are decoded.
func CleanHTMLArtifacts(text string) string {
	if text == "" {
		return ""
	}
	text = listItemSeparator.ReplaceAllString(text, "\n* ")
	text = listWrapper.ReplaceAllString(text, "")
	text = listItemOpen.ReplaceAllString(text, "* ")
	text = strings.ReplaceAll(text, "</li>", "")
	text = anyTag.ReplaceAllString(text, "")
	return entityReplacer.Replace(text)
}

// NormalizeMarkdown canonicalizes markdown text for storage: NFC unicode
// normalization, HTML artifact cleanup, LF line endings, no trailing line
// whitespace, at most one blank line in a row, no leading blank lines, and a
// single trailing newline.
func NormalizeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)
	text = CleanHTMLArtifacts(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = trailingSpace.ReplaceAllString(text, "")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	text = strings.TrimLeft(text, "\n")
	return strings.TrimRight(text, " \t\n") + "\n"
}
