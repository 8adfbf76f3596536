package order

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Title compression limits. The compressed title doubles as durable
// matching/audit text, so it has to stay short and tag-safe.
const (
	maxTitleWords = 3
	maxTitleLen   = 32
)

// nonTitleRunes matches every rune that is not a word character,
// whitespace, or hyphen (Unicode-aware).
var nonTitleRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)

// CompressTitle shortens a free-text offer title into a label of at most
// 3 words and 32 characters.
//
// Words are walked left to right and accepted greedily: a word is taken
// only while fewer than 3 words have been accepted and the running length
// (including a separating space) stays within 32 characters; the walk
// stops at the first rejection. Hyphenated parts longer than 2 characters
// are capitalized, shorter ones lowercased.
func CompressTitle(title string) string {
	clean := nonTitleRunes.ReplaceAllString(title, "")

	var result []string
	total := 0

	for _, word := range strings.Fields(clean) {
		formatted := formatTitleWord(word)

		extra := utf8.RuneCountInString(formatted)
		if len(result) > 0 {
			extra++ // separating space
		}

		if len(result) >= maxTitleWords || total+extra > maxTitleLen {
			break
		}
		result = append(result, formatted)
		total += extra
	}

	return strings.Join(result, " ")
}

// formatTitleWord reformats each hyphen-separated part of a word:
// parts longer than 2 characters are capitalized, the rest lowercased.
func formatTitleWord(word string) string {
	parts := strings.Split(word, "-")
	for i, part := range parts {
		if utf8.RuneCountInString(part) > 2 {
			parts[i] = capitalize(part)
		} else {
			parts[i] = strings.ToLower(part)
		}
	}
	return strings.Join(parts, "-")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return string(unicode.ToUpper(r)) + lower[size:]
}
