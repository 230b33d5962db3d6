package services

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// config.toml keys.
//
//nolint:gosec // G101: key names, not credentials
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyEmbedBurst      = "embedding.burst"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyMinWords        = "extraction.min_words"
	keyMaxWords        = "extraction.max_words"
	keyTargetWords     = "extraction.target_words"
	keyHeadingRatio    = "extraction.heading_ratio"
	keyProcessors      = "pipeline.processors"
	keyFloor           = "analysis.similarity_floor"
	keySupporting      = "analysis.supporting_threshold"
	keyContradiction   = "analysis.contradiction_threshold"
	keyMultiplier      = "analysis.candidate_multiplier"
	keyMaxResults      = "analysis.max_results"
	keyMinSentences    = "analysis.min_sentences"
	keyMaxSentences    = "analysis.max_sentences"
	keyExtractChars    = "analysis.extract_chars"
	keyTimeout         = "analysis.timeout"
	keySummaryTimeout  = "analysis.summary_timeout"
	keyLexiconPath     = "classifier.lexicon_path"
	keyNumericTol      = "classifier.numeric_tolerance"
	keyLibraryPath     = "library.path"
	keyDefaultCategory = "library.default_category"
)

// parseFunc turns a command-line value into what the store keeps for key.
type parseFunc func(key, value string) (any, error)

func parseString(_, v string) (any, error) { return v, nil }

func parseCount(key, v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
	}
	return n, nil
}

func parseNumber(key, v string) (any, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
	}
	return f, nil
}

// parseDuration stores the canonical form, so "1500ms" is kept as "1.5s".
func parseDuration(key, v string) (any, error) {
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("%w: %s must be a duration such as 10s", domain.ErrInvalidInput, key)
	}
	return d.String(), nil
}

func parseProvider(_, v string) (any, error) {
	p := domain.AIProvider(strings.ToLower(v))
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, v)
	}
	return p.String(), nil
}

func parseCategory(_, v string) (any, error) {
	c, err := domain.ParseCategory(v)
	if err != nil {
		return nil, err
	}
	return c.String(), nil
}

// parseList splits on commas and drops blanks.
func parseList(key, v string) (any, error) {
	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one entry", domain.ErrInvalidInput, key)
	}
	return items, nil
}

var settableKeys = map[string]parseFunc{
	keyEmbedProvider:   parseProvider,
	keyEmbedModel:      parseString,
	keyEmbedBaseURL:    parseString,
	keyEmbedAPIKey:     parseString,
	keyEmbedDims:       parseCount,
	keyEmbedRPS:        parseNumber,
	keyEmbedBurst:      parseCount,
	keyLLMProvider:     parseProvider,
	keyLLMModel:        parseString,
	keyLLMBaseURL:      parseString,
	keyLLMAPIKey:       parseString,
	keyMinWords:        parseCount,
	keyMaxWords:        parseCount,
	keyTargetWords:     parseCount,
	keyHeadingRatio:    parseNumber,
	keyProcessors:      parseList,
	keyFloor:           parseNumber,
	keySupporting:      parseNumber,
	keyContradiction:   parseNumber,
	keyMultiplier:      parseCount,
	keyMaxResults:      parseCount,
	keyMinSentences:    parseCount,
	keyMaxSentences:    parseCount,
	keyExtractChars:    parseCount,
	keyTimeout:         parseDuration,
	keySummaryTimeout:  parseDuration,
	keyLexiconPath:     parseString,
	keyNumericTol:      parseNumber,
	keyLibraryPath:     parseString,
	keyDefaultCategory: parseCategory,
}

// SettableKeys lists, sorted, the keys 'lens settings set' accepts.
func SettableKeys() []string {
	return slices.Sorted(maps.Keys(settableKeys))
}

// processorOptionKeys are the pipeline.<processor>.<option> names read as
// overrides.
var processorOptionKeys = []string{"target_words", "min_words", "max_words"}

// reader reads keys with defaults. An empty or unparsable value counts as
// unset, and so does a zero integer.
type reader struct{ store driven.ConfigStore }

func (r reader) str(key, def string) string {
	if v := r.store.GetString(key); v != "" {
		return v
	}
	return def
}

func (r reader) count(key string, def int) int {
	if v := r.store.GetInt(key); v != 0 {
		return v
	}
	return def
}

func (r reader) number(key string, def float64) float64 {
	if v, ok := r.store.Get(key); !ok || v == "" {
		return def
	}
	return r.store.GetFloat(key)
}

func (r reader) duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(r.store.GetString(key))
	if err != nil {
		return def
	}
	return d
}

func (r reader) provider(key string, def domain.AIProvider) domain.AIProvider {
	if p := domain.AIProvider(r.store.GetString(key)); p.IsValid() {
		return p
	}
	return def
}

func (r reader) category(key string, def domain.Category) domain.Category {
	c, err := domain.ParseCategory(r.store.GetString(key))
	if err != nil {
		return def
	}
	return c
}
