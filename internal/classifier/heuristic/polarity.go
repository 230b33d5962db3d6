package heuristic

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	wordPattern   = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)
	numberPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s*(%|[a-z]+)?`)
)

// unitStopwords never act as the unit attached to a number.
var unitStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "at": true, "by": true,
	"for": true, "in": true, "is": true, "of": true, "on": true, "or": true,
	"the": true, "to": true, "was": true, "were": true, "with": true,
}

// profile is the polarity evidence found in one text.
type profile struct {
	negations int
	markers   map[string]bool
	terms     map[string]bool
	numbers   map[string][]float64
}

// matcher indexes a lexicon for lookup by word form.
type matcher struct {
	negators  map[string]bool
	markers   map[string]string // form -> marker, single words only
	phrases   []string
	poles     map[string]string // form -> antonym term
	antonyms  [][2]string
	tolerance float64
}

func newMatcher(lex *Lexicon) *matcher {
	m := &matcher{
		negators:  make(map[string]bool, len(lex.Negators)),
		markers:   make(map[string]string),
		poles:     make(map[string]string),
		antonyms:  lex.Antonyms,
		tolerance: lex.NumericTolerance,
	}
	for _, w := range lex.Negators {
		m.negators[normaliseWord(w)] = true
	}
	for _, mk := range lex.Markers {
		mk = normaliseWord(mk)
		if strings.Contains(mk, " ") {
			m.phrases = append(m.phrases, mk)
			continue
		}
		for _, f := range forms(mk) {
			if _, ok := m.markers[f]; !ok {
				m.markers[f] = mk
			}
		}
	}
	for _, pair := range lex.Antonyms {
		for _, term := range pair {
			for _, f := range forms(term) {
				if _, ok := m.poles[f]; !ok {
					m.poles[f] = term
				}
			}
		}
	}
	return m
}

// profile scans text for negators, markers, antonym poles and quantities.
func (m *matcher) profile(text string) profile {
	text = strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	p := profile{
		markers: make(map[string]bool),
		terms:   make(map[string]bool),
		numbers: make(map[string][]float64),
	}

	words := wordPattern.FindAllString(text, -1)
	for _, w := range words {
		if m.negators[w] {
			p.negations++
		}
		if mk, ok := m.markers[w]; ok {
			p.markers[mk] = true
		}
		if term, ok := m.poles[w]; ok {
			p.terms[term] = true
		}
	}

	joined := " " + strings.Join(words, " ") + " "
	for _, phrase := range m.phrases {
		if strings.Contains(joined, " "+phrase+" ") {
			p.markers[phrase] = true
		}
	}

	for _, match := range numberPattern.FindAllStringSubmatch(text, -1) {
		unit := match[2]
		if unit == "percent" {
			unit = "%"
		}
		if unit == "" || unitStopwords[unit] {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}
		p.numbers[unit] = append(p.numbers[unit], v)
	}
	return p
}

// mismatch lists the reasons q and c disagree in polarity.
func (m *matcher) mismatch(q, c profile) []string {
	var signals []string

	if q.negations%2 != c.negations%2 {
		signals = append(signals, "negation")
	}

	var markers []string
	for mk := range q.markers {
		if !c.markers[mk] {
			markers = append(markers, mk)
		}
	}
	for mk := range c.markers {
		if !q.markers[mk] {
			markers = append(markers, mk)
		}
	}
	sort.Strings(markers)
	for _, mk := range markers {
		signals = append(signals, "marker:"+mk)
	}

	for _, pair := range m.antonyms {
		a, b := pair[0], pair[1]
		if opposed(q, c, a, b) || opposed(c, q, a, b) {
			signals = append(signals, "antonym:"+a+"/"+b)
		}
	}

	units := make([]string, 0, len(q.numbers))
	for unit := range q.numbers {
		if _, ok := c.numbers[unit]; ok {
			units = append(units, unit)
		}
	}
	sort.Strings(units)
	for _, unit := range units {
		if !m.anyClose(q.numbers[unit], c.numbers[unit]) {
			signals = append(signals, fmt.Sprintf("numeric:%s", unit))
		}
	}

	return signals
}

// opposed reports whether x uses pole a and y pole b, with neither text
// using both.
func opposed(x, y profile, a, b string) bool {
	return x.terms[a] && y.terms[b] && !x.terms[b] && !y.terms[a]
}

func (m *matcher) anyClose(xs, ys []float64) bool {
	for _, x := range xs {
		for _, y := range ys {
			scale := math.Max(math.Abs(x), math.Abs(y))
			if scale == 0 || math.Abs(x-y)/scale <= m.tolerance {
				return true
			}
		}
	}
	return false
}

// forms returns the regular inflections of a lexicon word.
func forms(w string) []string {
	if w == "" || strings.Contains(w, " ") {
		return []string{w}
	}
	out := []string{w, w + "s", w + "es", w + "ed", w + "ing"}

	n := len(w)
	last := w[n-1]
	switch {
	case last == 'e':
		stem := w[:n-1]
		out = append(out, w+"d", stem+"ing")
	case last == 'y' && n > 2 && !isVowel(w[n-2]):
		stem := w[:n-1]
		out = append(out, stem+"ies", stem+"ied")
	case n <= 4 && n >= 3 && !isVowel(last) && isVowel(w[n-2]) && !isVowel(w[n-3]) && !strings.ContainsRune("wxy", rune(last)):
		out = append(out, w+string(last)+"ing", w+string(last)+"ed")
	}
	return out
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}
