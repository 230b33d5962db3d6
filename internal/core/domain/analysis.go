package domain

import "time"

// Label describes how a candidate section relates to the query text.
type Label string

const (
	LabelRelated       Label = "related"       // Same topic, no strong agreement signal
	LabelSupporting    Label = "supporting"    // Reinforces the same claim
	LabelContradictory Label = "contradictory" // Same topic, opposite polarity
)

// Priority orders labels for ranking: contradictory > supporting > related.
func (l Label) Priority() int {
	switch l {
	case LabelContradictory:
		return 2
	case LabelSupporting:
		return 1
	default:
		return 0
	}
}

// IsValid returns true if the label is recognised.
func (l Label) IsValid() bool {
	return l == LabelRelated || l == LabelSupporting || l == LabelContradictory
}

// String returns the string representation.
func (l Label) String() string {
	return string(l)
}

// Classification is the outcome of classifying one candidate.
type Classification struct {
	Label Label

	// Score is the raw score remapped to [0, 1] for presentation.
	Score float64

	// RawScore is the cosine similarity the thresholds were applied to.
	RawScore float64

	// Signals lists the lexical evidence behind a contradictory label.
	Signals []string
}

// AdjustScore remaps a cosine similarity from [-1, 1] to [0, 1].
func AdjustScore(raw float64) float64 {
	if raw < -1 {
		raw = -1
	}
	if raw > 1 {
		raw = 1
	}
	return (raw + 1) / 2
}

// AnalysisRequest is a text selection to analyse against the library.
type AnalysisRequest struct {
	Text             string
	SourceDocumentID string

	// MaxResults limits the snippets returned. Zero uses the configured default.
	MaxResults int
}

// Snippet is a ranked, labelled, navigable excerpt.
// Its DocumentID is never the request's SourceDocumentID.
type Snippet struct {
	Rank         int      `json:"rank"`
	DocumentID   string   `json:"document_id"`
	DocumentName string   `json:"document_name"`
	SectionID    string   `json:"section_id"`
	Title        string   `json:"title"`
	Page         int      `json:"page"`
	Extract      string   `json:"extract"`
	Label        Label    `json:"label"`
	Score        float64  `json:"score"`
	RawScore     float64  `json:"raw_score"`
	Signals      []string `json:"signals,omitempty"`
}

// AnalysisResult is produced fresh for every analysis call and never persisted.
type AnalysisResult struct {
	QueryText        string        `json:"query_text"`
	SourceDocumentID string        `json:"source_document_id"`
	Snippets         []Snippet     `json:"snippets"`
	Summary          string        `json:"summary,omitempty"`
	ProcessingTime   time.Duration `json:"processing_time"`
}

// CountByLabel returns the number of snippets carrying each label.
func (r *AnalysisResult) CountByLabel() map[Label]int {
	counts := make(map[Label]int, 3)
	for i := range r.Snippets {
		counts[r.Snippets[i].Label]++
	}
	return counts
}

// NavigationRequest identifies a location to jump to.
// SectionID and Text are optional hints that disambiguate pages holding
// more than one section.
type NavigationRequest struct {
	DocumentID string
	Page       int
	SectionID  string
	Text       string
}
