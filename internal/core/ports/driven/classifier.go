package driven

import "github.com/custodia-labs/sercha-lens/internal/core/domain"

// Classifier assigns a relationship label to a candidate section.
// Implementations must be pure functions of their inputs. A learned
// entailment model can replace the heuristic behind this contract.
type Classifier interface {
	// Classify labels the candidate. It returns false when rawScore is
	// below the similarity floor and the candidate must be discarded.
	Classify(queryText string, candidate *domain.Section, rawScore float64) (domain.Classification, bool)
}
