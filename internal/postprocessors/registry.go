package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// BuilderFunc creates a processor from its [pipeline.<name>] options.
type BuilderFunc func(opts map[string]any) (driven.SectionProcessor, error)

// Processor describes a buildable section processor. Options lists the
// keys Build accepts; anything else in the config is rejected.
type Processor struct {
	Name    string
	Options []string
	Build   BuilderFunc
}

// Registry holds the processors a pipeline may be built from.
type Registry struct {
	processors map[string]Processor
}

func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// Register adds p. It panics on an empty or duplicate name.
func (r *Registry) Register(p Processor) {
	if p.Name == "" || p.Build == nil {
		panic("postprocessors: Register needs a name and a builder")
	}
	if _, dup := r.processors[p.Name]; dup {
		panic("postprocessors: processor registered twice: " + p.Name)
	}
	r.processors[p.Name] = p
}

// Build creates the named processor after checking opts against its
// declared keys.
func (r *Registry) Build(name string, opts map[string]any) (driven.SectionProcessor, error) {
	p, ok := r.processors[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor: %s (available: %v)", name, r.Names())
	}
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		if !slices.Contains(p.Options, k) {
			return nil, fmt.Errorf("processor %s: unknown option %q", name, k)
		}
	}
	return p.Build(opts)
}

func (r *Registry) Has(name string) bool {
	_, ok := r.processors[name]
	return ok
}

// Names lists registered processors alphabetically.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.processors))
}
