package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) within a text.
type Span struct {
	Start int
	End   int
}

// abbreviations never end a sentence when followed by a period.
var abbreviations = map[string]bool{
	"e.g": true, "i.e": true, "etc": true, "vs": true, "cf": true, "al": true,
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true, "st": true,
	"fig": true, "figs": true, "no": true, "vol": true, "pp": true, "approx": true,
	"inc": true, "ltd": true, "jan": true, "feb": true, "mar": true, "apr": true,
	"jun": true, "jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true,
}

// SentenceSpans splits text into sentence ranges. A sentence ends at ., !
// or ? (with any closing quotes or brackets) followed by whitespace and a
// capital, digit or opening quote, at a blank line, or at the end of text.
// Spans exclude surrounding whitespace and together cover every
// non-space character in order.
func SentenceSpans(text string) []Span {
	var spans []Span
	start := skipSpace(text, 0)

	for i := start; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		if r == '\n' && strings.HasPrefix(strings.TrimLeft(text[i+size:], " \t\r"), "\n") {
			if end := trimRight(text, start, i); end > start {
				spans = append(spans, Span{Start: start, End: end})
			}
			start = skipSpace(text, i)
			i = start
			continue
		}

		if r == '.' || r == '!' || r == '?' {
			end := i + size
			for end < len(text) && strings.IndexByte(")]}\"'", text[end]) >= 0 {
				end++
			}
			if isSentenceEnd(text, start, i, end) {
				spans = append(spans, Span{Start: start, End: end})
				start = skipSpace(text, end)
				i = start
				continue
			}
		}
		i += size
	}

	if end := trimRight(text, start, len(text)); end > start {
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

func isSentenceEnd(text string, start, punct, end int) bool {
	if end >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	if !unicode.IsSpace(next) {
		return false
	}
	after := skipSpace(text, end)
	if after >= len(text) {
		return true
	}
	if text[punct] == '.' && isAbbreviation(text[start:punct]) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text[after:])
	return unicode.IsUpper(first) || unicode.IsDigit(first) || strings.ContainsRune("\"'“‘([", first)
}

// isAbbreviation checks the word immediately before a period.
func isAbbreviation(before string) bool {
	idx := strings.LastIndexFunc(before, unicode.IsSpace)
	word := strings.ToLower(strings.TrimLeft(before[idx+1:], "(\"'"))
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsLetter(r) // initials such as "J. Smith"
	}
	return abbreviations[word]
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func trimRight(text string, start, end int) int {
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return end
}
