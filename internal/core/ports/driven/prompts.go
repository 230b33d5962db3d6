package driven

// PromptStore serves named LLM prompt templates.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload drops cached templates.
	Reload()
}

// Prompt names and the fmt verbs each template is filled with.
const (
	// PromptSummarise takes %d (max length) then %s (content).
	PromptSummarise = "summarise"

	// PromptInsightSummary takes %s (selected passage) then %s (numbered snippets).
	PromptInsightSummary = "insight_summary"
)

// PromptStoreAware is implemented by adapters that render templates from a
// PromptStore.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
