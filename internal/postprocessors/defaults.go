package postprocessors

import (
	"fmt"
	"math"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/postprocessors/sectioner"
	"github.com/custodia-labs/sercha-lens/internal/postprocessors/wordband"
)

// RegisterDefaults adds the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(Processor{Name: "sectioner", Options: []string{"target_words"}, Build: buildSectioner})
	r.Register(Processor{Name: "wordband", Options: []string{"min_words", "max_words"}, Build: buildWordband})
}

// buildSectioner reads target_words, the chunk size for documents without
// headings.
func buildSectioner(cfg map[string]any) (driven.SectionProcessor, error) {
	target, err := intOption(cfg, "target_words")
	if err != nil {
		return nil, fmt.Errorf("sectioner: %w", err)
	}
	var opts []sectioner.Option
	if target > 0 {
		opts = append(opts, sectioner.WithTargetWords(target))
	}
	return sectioner.New(opts...), nil
}

// buildWordband reads min_words and max_words. Zero keeps the default.
func buildWordband(cfg map[string]any) (driven.SectionProcessor, error) {
	minWords, err := intOption(cfg, "min_words")
	if err != nil {
		return nil, fmt.Errorf("wordband: %w", err)
	}
	maxWords, err := intOption(cfg, "max_words")
	if err != nil {
		return nil, fmt.Errorf("wordband: %w", err)
	}
	if minWords < 0 || maxWords < 0 {
		return nil, fmt.Errorf("wordband: word limits must not be negative")
	}
	if minWords > 0 && maxWords > 0 && minWords > maxWords {
		return nil, fmt.Errorf("wordband: min_words %d exceeds max_words %d", minWords, maxWords)
	}

	var opts []wordband.Option
	if minWords > 0 {
		opts = append(opts, wordband.WithMinWords(minWords))
	}
	if maxWords > 0 {
		opts = append(opts, wordband.WithMaxWords(maxWords))
	}
	return wordband.New(opts...), nil
}

// intOption reads an integer option. TOML decodes integers as int64 and JSON
// as float64; a fractional float is an error. A missing key reads as 0.
func intOption(cfg map[string]any, key string) (int, error) {
	val, ok := cfg[key]
	if !ok {
		return 0, nil
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}
