// Package heuristic labels candidate sections as related, supporting or
// contradictory from cosine similarity and lexical polarity signals.
package heuristic

import (
	"math"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

// Default thresholds on the raw cosine scale.
const (
	DefaultFloor                  = 0.35
	DefaultSupportingThreshold    = 0.65
	DefaultContradictionThreshold = 0.45
)

// Classifier is a deterministic polarity-aware classifier.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	floor         float64
	supporting    float64
	contradiction float64
	lexicon       *Lexicon
	tolerance     float64
	matcher       *matcher
}

// Option configures the classifier.
type Option func(*Classifier)

// WithFloor sets the minimum raw similarity a candidate needs.
func WithFloor(f float64) Option {
	return func(c *Classifier) {
		c.floor = f
	}
}

// WithSupportingThreshold sets the raw similarity above which agreeing
// candidates are labelled supporting.
func WithSupportingThreshold(t float64) Option {
	return func(c *Classifier) {
		c.supporting = t
	}
}

// WithContradictionThreshold sets the raw similarity a polarity mismatch
// needs before it counts as a contradiction.
func WithContradictionThreshold(t float64) Option {
	return func(c *Classifier) {
		c.contradiction = t
	}
}

// WithLexicon replaces the built-in lexicon.
func WithLexicon(lex *Lexicon) Option {
	return func(c *Classifier) {
		if lex != nil {
			c.lexicon = lex
		}
	}
}

// WithNumericTolerance overrides the lexicon's numeric tolerance.
func WithNumericTolerance(t float64) Option {
	return func(c *Classifier) {
		if t > 0 {
			c.tolerance = t
		}
	}
}

// New creates a classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		floor:         DefaultFloor,
		supporting:    DefaultSupportingThreshold,
		contradiction: DefaultContradictionThreshold,
		lexicon:       DefaultLexicon(),
	}
	for _, opt := range opts {
		opt(c)
	}

	lex := *c.lexicon
	if c.tolerance > 0 {
		lex.NumericTolerance = c.tolerance
	}
	if lex.NumericTolerance <= 0 {
		lex.NumericTolerance = DefaultNumericTolerance
	}
	c.tolerance = lex.NumericTolerance
	c.matcher = newMatcher(&lex)
	return c
}

// NewFromSettings builds a classifier from application settings, loading
// the lexicon file when one is configured.
func NewFromSettings(analysis domain.AnalysisSettings, cfg domain.ClassifierSettings) (*Classifier, error) {
	opts := []Option{
		WithFloor(analysis.SimilarityFloor),
		WithSupportingThreshold(analysis.SupportingThreshold),
		WithContradictionThreshold(analysis.ContradictionThreshold),
		WithNumericTolerance(cfg.NumericTolerance),
	}
	if cfg.LexiconPath != "" {
		lex, err := LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLexicon(lex))
	}
	return New(opts...), nil
}

// Classify labels the candidate against the query text.
//
// Thresholds apply to the raw cosine score. The presentation score is the
// raw score remapped to [0, 1] and never influences the label.
//
// The floor is checked first: a candidate below it is discarded whatever its
// text. A candidate that passes the floor but has an empty body is labelled
// related with score 0.
func (c *Classifier) Classify(queryText string, candidate *domain.Section, rawScore float64) (domain.Classification, bool) {
	rawScore = clamp(rawScore)
	if math.IsNaN(rawScore) || rawScore < c.floor {
		return domain.Classification{}, false
	}

	if candidate == nil || strings.TrimSpace(candidate.Body) == "" {
		return domain.Classification{Label: domain.LabelRelated, RawScore: rawScore}, true
	}

	result := domain.Classification{
		Label:    domain.LabelRelated,
		Score:    domain.AdjustScore(rawScore),
		RawScore: rawScore,
	}

	signals := c.matcher.mismatch(c.matcher.profile(queryText), c.matcher.profile(candidate.Body))
	switch {
	case len(signals) > 0 && rawScore >= c.contradiction:
		result.Label = domain.LabelContradictory
		result.Signals = signals
	case rawScore >= c.supporting:
		result.Label = domain.LabelSupporting
	}
	return result, true
}

// Signals returns the polarity mismatches between two texts.
func (c *Classifier) Signals(a, b string) []string {
	return c.matcher.mismatch(c.matcher.profile(a), c.matcher.profile(b))
}

// Floor returns the configured similarity floor.
func (c *Classifier) Floor() float64 {
	return c.floor
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
