package utils

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern = regexp.MustCompile(`(?i)<\s*(html|body|div|p|span|a|br|h[1-6]|ul|li|table|section|article)\b`)
	spacePattern   = regexp.MustCompile(`[ \t]+`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

var replacements = strings.NewReplacer(
	"\u0000", "", // Null character
	"\ufffd", "", // Unicode replacement character
	"\u001b", "", // Escape character
	"\r", "",
	"\f", "\n",
	"\u00a0", " ",
)

// CleanText strips control characters and collapses runs of spaces.
func CleanText(text string) string {
	cleaned := replacements.Replace(text)
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	cleaned = blankLines.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// LooksLikeHTML reports whether content contains common block-level markup.
func LooksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}

// PlainText returns the visible text of content. Non-HTML input is only cleaned.
func PlainText(content string) string {
	if !LooksLikeHTML(content) {
		return CleanText(content)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return CleanText(content)
	}
	doc.Find("script, style, noscript, nav, footer, header").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
	})
	if b.Len() == 0 {
		b.WriteString(doc.Text())
	}
	return CleanText(b.String())
}

// Hash returns a short, stable, non-cryptographic digest of s.
func Hash(s string) string {
	h := fnv.New64a()
	h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Truncate shortens s to at most maxLength runes, appending "..." when cut.
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength]) + "..."
}
