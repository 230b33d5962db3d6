package heuristic

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultNumericTolerance is the relative difference at which two numbers
// attached to the same quantity disagree.
const DefaultNumericTolerance = 0.1

// Lexicon holds the word lists used to detect polarity.
type Lexicon struct {
	// Negators flip the polarity of a statement.
	Negators []string `yaml:"negators"`

	// Markers are words or phrases that announce disagreement.
	Markers []string `yaml:"markers"`

	// Antonyms pairs words sitting on opposite poles.
	Antonyms [][2]string `yaml:"antonyms"`

	// NumericTolerance is a relative difference in [0, 1].
	NumericTolerance float64 `yaml:"numeric_tolerance"`
}

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Negators: []string{
			"not", "no", "never", "none", "nor", "neither", "nobody", "nothing",
			"cannot", "without", "hardly", "barely",
			"lacks", "lacked", "lacking", "fails", "failed",
			"isn't", "aren't", "wasn't", "weren't", "don't", "doesn't", "didn't",
			"won't", "wouldn't", "can't", "couldn't", "shouldn't", "hasn't", "haven't",
		},
		Markers: []string{
			"contrary to", "on the contrary", "in contrast", "disagree", "dispute",
			"incorrect", "wrong", "mistaken", "false", "refute", "debunk",
			"contradict", "disprove", "myth", "misconception", "no evidence",
		},
		Antonyms: [][2]string{
			{"reduce", "increase"},
			{"cut", "increase"},
			{"cut", "raise"},
			{"decrease", "increase"},
			{"lower", "raise"},
			{"lower", "higher"},
			{"less", "more"},
			{"fewer", "more"},
			{"decline", "rise"},
			{"fall", "rise"},
			{"fell", "rose"},
			{"drop", "rise"},
			{"shrink", "grow"},
			{"loss", "gain"},
			{"worsen", "improve"},
			{"harm", "benefit"},
			{"harmful", "beneficial"},
			{"dangerous", "safe"},
			{"negative", "positive"},
			{"failure", "success"},
			{"reject", "accept"},
			{"oppose", "support"},
			{"weak", "strong"},
			{"slow", "fast"},
			{"cheap", "expensive"},
			{"inefficient", "efficient"},
			{"ineffective", "effective"},
			{"decrease", "boost"},
			{"reduce", "boost"},
		},
		NumericTolerance: DefaultNumericTolerance,
	}
}

// ParseLexicon decodes a YAML lexicon document.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if lex.NumericTolerance < 0 || lex.NumericTolerance > 1 {
		return nil, fmt.Errorf("parse lexicon: numeric_tolerance %v outside [0, 1]", lex.NumericTolerance)
	}
	return &lex, nil
}

// LoadLexicon reads a YAML lexicon file and merges it into the built-in one.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	extra, err := ParseLexicon(data)
	if err != nil {
		return nil, err
	}
	return DefaultLexicon().Merge(extra), nil
}

// Merge returns a copy of l extended with the entries of other.
// A non-zero tolerance in other replaces l's.
func (l *Lexicon) Merge(other *Lexicon) *Lexicon {
	out := &Lexicon{
		Negators:         mergeWords(l.Negators, other.Negators),
		Markers:          mergeWords(l.Markers, other.Markers),
		Antonyms:         append([][2]string(nil), l.Antonyms...),
		NumericTolerance: l.NumericTolerance,
	}

	seen := make(map[[2]string]bool, len(out.Antonyms))
	for _, pair := range out.Antonyms {
		seen[pair] = true
	}
	for _, pair := range other.Antonyms {
		pair = [2]string{normaliseWord(pair[0]), normaliseWord(pair[1])}
		if pair[0] == "" || pair[1] == "" || pair[0] == pair[1] || seen[pair] {
			continue
		}
		seen[pair] = true
		out.Antonyms = append(out.Antonyms, pair)
	}

	if other.NumericTolerance > 0 {
		out.NumericTolerance = other.NumericTolerance
	}
	return out
}

func mergeWords(base, extra []string) []string {
	out := append([]string(nil), base...)
	seen := make(map[string]bool, len(base))
	for _, w := range base {
		seen[w] = true
	}
	for _, w := range extra {
		w = normaliseWord(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func normaliseWord(w string) string {
	return strings.Join(strings.Fields(strings.ToLower(w)), " ")
}
