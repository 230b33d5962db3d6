package normalisers

import (
	"cmp"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

var (
	pageLabel    = regexp.MustCompile(`(?i)^(page|p\.|pg\.?)\s*\d+(\s*(of|/)\s*\d+)?$`)
	versionLabel = regexp.MustCompile(`(?i)^(version|ver\.?|v)\s*\d+(\.\d+)*$`)
	bareNumber   = regexp.MustCompile(`^[\d.,\-–/()]+$`)
	romanNumber  = regexp.MustCompile(`(?i)^[ivx]{1,5}\.?$`)
	fieldLabel   = regexp.MustCompile(`(?i)^(date|created|modified|last modified|updated|contact|email|e-mail|phone|tel|address|website|url)\s*:`)
)

// CollapseWhitespace replaces runs of whitespace with single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount returns the number of whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// IsBoilerplate reports whether a line or block is page furniture that
// carries no content: page numbers, version stamps, dates, contact lines
// and fragments too short to be text.
func IsBoilerplate(s string) bool {
	s = CollapseWhitespace(s)
	if len([]rune(s)) < 3 {
		return true
	}
	if bareNumber.MatchString(s) || romanNumber.MatchString(s) {
		return true
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return true
	}
	return pageLabel.MatchString(s) || versionLabel.MatchString(s) || fieldLabel.MatchString(s)
}

// SplitPages splits text on form feeds. Page i of the result is page i+1.
func SplitPages(s string) []string {
	return strings.Split(s, "\f")
}

// SplitParagraphs splits text on blank lines, dropping empty paragraphs.
func SplitParagraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			if p := CollapseWhitespace(strings.Join(cur, " ")); p != "" {
				paras = append(paras, p)
			}
			cur = cur[:0]
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return paras
}

// TitleFromName derives a human-readable title from a file name or path.
func TitleFromName(name string) string {
	filename := filepath.Base(name)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return strings.TrimSpace(filename)
}

// DocumentTitle is the metadata title when set, else a title made from the
// file name or URI.
func DocumentTitle(raw *domain.RawDocument) string {
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		return title
	}
	return TitleFromName(cmp.Or(raw.Name, raw.URI))
}
