package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxLevel is the deepest heading level carried on blocks.
const maxLevel = 4

var (
	headingLine   = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	fenceLine     = regexp.MustCompile("^\\s*(```|~~~)")
	hrLine        = regexp.MustCompile(`^\s*([-*_]\s*){3,}$`)
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	strong        = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	emphasis      = regexp.MustCompile(`(^|[\s(])[*_]([^*_\s][^*_]*?)[*_]`)
	blockquote    = regexp.MustCompile(`^\s*>\s?`)
	listMarker    = regexp.MustCompile(`^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	htmlTag       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	tableDivider  = regexp.MustCompile(`^\s*\|?\s*:?-{3,}`)
	tablePipes    = regexp.MustCompile(`\s*\|\s*`)
	referenceLink = regexp.MustCompile(`^\s*\[[^\]]+\]:\s+\S+`)
)

// Normaliser reads Markdown into heading and paragraph blocks.
// A form feed advances the page.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts a markdown document into text blocks.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw.Content)
	pages := normalisers.SplitPages(content)

	var blocks []domain.TextBlock
	for i, page := range pages {
		blocks = append(blocks, parsePage(page, i+1)...)
	}

	if len(blocks) == 0 {
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionEmpty, nil)
	}

	return &driven.NormaliseResult{
		Title:     extractMarkdownTitle(content, nameOf(raw)),
		PageCount: len(pages),
		Blocks:    blocks,
	}, nil
}

// parsePage splits one page into heading and paragraph blocks.
func parsePage(page string, pageNum int) []domain.TextBlock {
	var blocks []domain.TextBlock
	var para []string
	inFence := false

	flush := func() {
		if len(para) == 0 {
			return
		}
		if text := normalisers.CollapseWhitespace(strings.Join(para, " ")); text != "" {
			blocks = append(blocks, domain.TextBlock{Text: text, Page: pageNum})
		}
		para = para[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n") {
		if fenceLine.MatchString(line) {
			flush()
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := headingLine.FindStringSubmatch(line); m != nil {
			flush()
			if text := normalisers.CollapseWhitespace(stripInline(m[2])); text != "" {
				blocks = append(blocks, domain.TextBlock{
					Text:  text,
					Page:  pageNum,
					Level: min(len(m[1]), maxLevel),
				})
			}
			continue
		}

		if strings.TrimSpace(line) == "" || hrLine.MatchString(line) || tableDivider.MatchString(line) {
			flush()
			continue
		}
		if referenceLink.MatchString(line) {
			continue
		}

		para = append(para, stripLine(line))
	}
	flush()

	return blocks
}

// stripLine removes block-level markers and inline formatting from one line.
func stripLine(line string) string {
	line = blockquote.ReplaceAllString(line, "")
	line = listMarker.ReplaceAllString(line, "")
	line = numberedList.ReplaceAllString(line, "")
	if strings.Contains(line, "|") {
		line = strings.Trim(tablePipes.ReplaceAllString(line, " "), " ")
	}
	return stripInline(line)
}

// stripInline removes inline markdown formatting, keeping the visible text.
func stripInline(s string) string {
	s = images.ReplaceAllString(s, "")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = strong.ReplaceAllString(s, "$2")
	s = emphasis.ReplaceAllString(s, "$1$2")
	s = htmlTag.ReplaceAllString(s, "")
	return s
}

// stripMarkdown converts a whole markdown text to plain paragraphs.
func stripMarkdown(content string) string {
	blocks := parsePage(content, 1)
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n\n")
}

// extractMarkdownTitle returns the first H1 heading, falling back to the file name.
func extractMarkdownTitle(content, name string) string {
	for _, line := range strings.Split(content, "\n") {
		if m := headingLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil && len(m[1]) == 1 {
			return normalisers.CollapseWhitespace(stripInline(m[2]))
		}
	}

	return normalisers.TitleFromName(name)
}

func nameOf(raw *domain.RawDocument) string {
	if raw.Name != "" {
		return raw.Name
	}
	return raw.URI
}
