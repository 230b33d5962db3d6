package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// MaxResultsCap bounds the number of snippets one analysis can return.
const MaxResultsCap = 50

// scored is a classified candidate awaiting ranking.
type scored struct {
	candidate      domain.Candidate
	classification domain.Classification
}

// AnalysisService turns a text selection into ranked, labelled snippets
// from other documents in the library.
type AnalysisService struct {
	store      *EmbeddingStore
	classifier driven.Classifier
	summariser driven.Summariser
	settings   domain.AnalysisSettings
}

// NewAnalysisService creates a new analysis service.
// The summariser is optional (can be nil); without it a count summary is used.
func NewAnalysisService(
	store *EmbeddingStore,
	classifier driven.Classifier,
	summariser driven.Summariser,
	settings domain.AnalysisSettings,
) *AnalysisService {
	return &AnalysisService{
		store:      store,
		classifier: classifier,
		summariser: summariser,
		settings:   settings,
	}
}

// Analyze runs the selection against every document except the source.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	start := time.Now()
	logger.Section("Analysis")

	text := strings.TrimSpace(req.Text)
	result := &domain.AnalysisResult{
		QueryText:        text,
		SourceDocumentID: req.SourceDocumentID,
		Snippets:         []domain.Snippet{},
	}
	if text == "" {
		logger.Debug("Empty selection, returning no snippets")
		result.Summary = fallbackSummary(nil)
		result.ProcessingTime = time.Since(start)
		return result, nil
	}

	maxResults := s.maxResults(req.MaxResults)
	k := maxResults * max(s.settings.CandidateMultiplier, 2)
	logger.Debug("Selection %q from %s, max=%d k=%d", truncate(text, 60), req.SourceDocumentID, maxResults, k)

	searchCtx := ctx
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	candidates, err := s.retrieve(searchCtx, text, req.SourceDocumentID, k)
	if err != nil {
		logger.Warn("Analysis degraded: %v", err)
		return nil, err
	}

	ranked := s.classify(text, req.SourceDocumentID, candidates)
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	for i, r := range ranked {
		sec := r.candidate.Section
		result.Snippets = append(result.Snippets, domain.Snippet{
			Rank:         i + 1,
			DocumentID:   sec.DocumentID,
			DocumentName: r.candidate.DocumentName,
			SectionID:    sec.ID,
			Title:        sec.DisplayTitle(),
			Page:         sec.Page,
			Extract:      ExtractSentences(sec.Body, s.settings.MinSentences, s.settings.MaxSentences, s.settings.ExtractChars),
			Label:        r.classification.Label,
			Score:        r.classification.Score,
			RawScore:     r.classification.RawScore,
			Signals:      r.classification.Signals,
		})
	}

	result.Summary = s.summarise(ctx, text, result.Snippets)
	result.ProcessingTime = time.Since(start)

	counts := result.CountByLabel()
	logger.Info("Analysis: %d snippets (%d supporting, %d related, %d contradictory) in %s",
		len(result.Snippets), counts[domain.LabelSupporting], counts[domain.LabelRelated],
		counts[domain.LabelContradictory], result.ProcessingTime)
	return result, nil
}

// retrieve embeds the selection and queries the store. Any failure,
// including the deadline, is reported as degraded mode.
func (s *AnalysisService) retrieve(ctx context.Context, text, exclude string, k int) ([]domain.Candidate, error) {
	stop := logger.Timer("embed selection")
	vector, err := s.store.Embed(ctx, text)
	stop()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}

	stop = logger.Timer("query index")
	candidates, err := s.store.Query(ctx, vector, exclude, k)
	stop()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}

	logger.Debug("Retrieved %d candidates", len(candidates))
	return candidates, nil
}

// classify labels, filters, deduplicates and ranks candidates.
func (s *AnalysisService) classify(text, exclude string, candidates []domain.Candidate) []scored {
	seen := make(map[string]bool, len(candidates))
	out := make([]scored, 0, len(candidates))

	for _, c := range candidates {
		sec := c.Section
		if sec.DocumentID == exclude && exclude != "" {
			continue
		}
		key := sec.DocumentID + "/" + sec.ID
		if seen[key] {
			continue
		}

		cls, ok := s.classifier.Classify(text, &sec, c.RawScore)
		if !ok {
			continue
		}
		seen[key] = true
		out = append(out, scored{candidate: c, classification: cls})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.classification.Score != b.classification.Score {
			return a.classification.Score > b.classification.Score
		}
		if pa, pb := a.classification.Label.Priority(), b.classification.Label.Priority(); pa != pb {
			return pa > pb
		}
		if a.candidate.Section.DocumentID != b.candidate.Section.DocumentID {
			return a.candidate.Section.DocumentID < b.candidate.Section.DocumentID
		}
		return a.candidate.Section.Order < b.candidate.Section.Order
	})

	logger.Debug("Classified %d of %d candidates above the floor", len(out), len(candidates))
	return out
}

// summarise asks the summariser for a narrative and falls back to a count
// summary when it is missing, slow or failing.
func (s *AnalysisService) summarise(ctx context.Context, text string, snippets []domain.Snippet) string {
	if s.summariser == nil || len(snippets) == 0 {
		return fallbackSummary(snippets)
	}

	if s.settings.SummaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.SummaryTimeout)
		defer cancel()
	}

	defer logger.Timer("summarise")()
	summary, err := s.summariser.Summarise(ctx, text, snippets)
	if err != nil {
		logger.Warn("Summary unavailable, using counts: %v", err)
		return fallbackSummary(snippets)
	}
	if summary = strings.TrimSpace(summary); summary == "" {
		return fallbackSummary(snippets)
	}
	return summary
}

func (s *AnalysisService) maxResults(requested int) int {
	n := requested
	if n <= 0 {
		n = s.settings.MaxResults
	}
	if n <= 0 {
		n = domain.DefaultAnalysisSettings().MaxResults
	}
	return min(n, MaxResultsCap)
}

// ExtractSentences returns the leading sentences of body, cut at a
// sentence end. The first sentence is always kept. Further sentences are
// added up to maxSentences while the extract stays within maxChars; once
// minSentences are collected, a paragraph break also ends the extract.
// The result is always a substring of body.
func ExtractSentences(body string, minSentences, maxSentences, maxChars int) string {
	spans := domain.SentenceSpans(body)
	if len(spans) == 0 {
		return ""
	}
	if maxSentences <= 0 {
		maxSentences = 1
	}

	start, end := spans[0].Start, spans[0].End
	for i := 1; i < len(spans) && i < maxSentences; i++ {
		if maxChars > 0 && spans[i].End-start > maxChars {
			break
		}
		if i >= minSentences && strings.Count(body[spans[i-1].End:spans[i].Start], "\n") >= 2 {
			break
		}
		end = spans[i].End
	}
	return body[start:end]
}

// fallbackSummary describes the snippets by label counts and top sources.
func fallbackSummary(snippets []domain.Snippet) string {
	if len(snippets) == 0 {
		return "No related content found in your document library."
	}

	counts := make(map[domain.Label]int, 3)
	var sources []string
	seen := make(map[string]bool)
	for i := range snippets {
		counts[snippets[i].Label]++
		id := snippets[i].DocumentID
		if !seen[id] {
			seen[id] = true
			sources = append(sources, snippets[i].DocumentName)
		}
	}

	top := sources
	if len(top) > 3 {
		top = top[:3]
	}

	return fmt.Sprintf("Found %d related %s across %d %s: %d supporting, %d related, %d contradictory. Top sources: %s.",
		len(snippets), plural(len(snippets), "section", "sections"),
		len(sources), plural(len(sources), "document", "documents"),
		counts[domain.LabelSupporting], counts[domain.LabelRelated], counts[domain.LabelContradictory],
		strings.Join(top, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
