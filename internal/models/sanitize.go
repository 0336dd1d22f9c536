package models

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes tag-like substrings ("<...>") from s.
// This is not HTML sanitization, only a guard against markup in names.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"`", "&#96;",
)

// EscapeHTML replaces < > " ' and ` with entities. Ampersands are left as-is.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
