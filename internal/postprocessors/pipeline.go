// Package postprocessors turns normalised text blocks into indexable sections.
// A pipeline runs named processors in order: the first cuts sections from the
// blocks, later ones reshape them.
package postprocessors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var _ driven.SectionPipeline = (*Pipeline)(nil)

var (
	ErrNilDocument  = errors.New("document is nil")
	ErrNoProcessors = errors.New("pipeline has no processors")
)

type Pipeline struct {
	steps []driven.SectionProcessor
}

func NewPipeline(steps ...driven.SectionProcessor) *Pipeline {
	return &Pipeline{steps: steps}
}

// BuildPipeline instantiates cfg.Processors from r, each with its options.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, ErrNoProcessors
	}
	steps := make([]driven.SectionProcessor, 0, len(cfg.Processors))
	for _, name := range cfg.Processors {
		step, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return NewPipeline(steps...), nil
}

// Process feeds doc through every step. The first step starts from no
// sections. A failing step stops the run and is named in the error.
func (p *Pipeline) Process(ctx context.Context, doc *driven.NormaliseResult) ([]domain.Section, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	var sections []domain.Section
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := step.Process(ctx, doc, sections)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", step.Name(), err)
		}
		logger.Debug("pipeline: %s %d -> %d sections in %s", step.Name(), len(sections), len(out), time.Since(start))
		sections = out
	}
	return sections, nil
}

func (p *Pipeline) Add(step driven.SectionProcessor) {
	p.steps = append(p.steps, step)
}

func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Names lists the steps in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
