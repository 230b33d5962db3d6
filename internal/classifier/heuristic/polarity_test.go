package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForms(t *testing.T) {
	assert.Subset(t, forms("cut"), []string{"cut", "cuts", "cutting"})
	assert.Subset(t, forms("reduce"), []string{"reduce", "reduces", "reduced", "reducing"})
	assert.Subset(t, forms("worsen"), []string{"worsens", "worsened"})
	assert.Subset(t, forms("deny"), []string{"denies", "denied"})
	assert.Equal(t, []string{"contrary to"}, forms("contrary to"))
}

func TestProfile(t *testing.T) {
	m := newMatcher(DefaultLexicon())

	p := m.profile("It doesn’t reduce costs, contrary to claims; costs rose 12 percent and 3,000 jobs.")
	assert.Equal(t, 1, p.negations)
	assert.True(t, p.markers["contrary to"])
	assert.True(t, p.terms["reduce"])
	assert.True(t, p.terms["rose"])
	assert.Equal(t, []float64{12}, p.numbers["%"])
	assert.Equal(t, []float64{3000}, p.numbers["jobs"])
}

func TestMismatch(t *testing.T) {
	m := newMatcher(DefaultLexicon())

	tests := []struct {
		name   string
		a, b   string
		expect []string
	}{
		{"agreement", "prices rise", "prices rise sharply", nil},
		{"double negation parity", "not never", "fine", nil},
		{"negation", "it works", "it does not work", []string{"negation"}},
		{"marker one side", "tea is healthy", "that tea is healthy is a myth", []string{"marker:myth"}},
		{"marker both sides", "a myth", "another myth", nil},
		{"antonym", "costs fall", "costs rise", []string{"antonym:fall/rise"}},
		{"both poles on one side", "costs fall then rise", "costs rise", nil},
		{"numeric", "10 kg", "20 kg", []string{"numeric:kg"}},
		{"numeric other units", "10 kg", "20 km", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.mismatch(m.profile(tt.a), m.profile(tt.b))
			assert.Equal(t, tt.expect, got)
		})
	}
}
