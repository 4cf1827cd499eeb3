package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle returns the lookup key for a title: trimmed and lower-cased.
func NormalizeTitle(title string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(title))
}

// Tokenize splits text into lower-cased word tokens of at least two
// characters, dropping English stop words.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))

	var out []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := text[start:end]
		start = -1
		if len([]rune(tok)) < 2 {
			return
		}
		if _, stop := stopWords[tok]; stop {
			return
		}
		out = append(out, tok)
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
