// Package driven declares what the core needs from the outside world. The
// core imports only these interfaces and the domain package; adapters under
// internal/adapters/driven, internal/normalisers and internal/postprocessors
// implement them and are wired together in cmd/lens.
//
// # Ingestion
//
// NormaliserRegistry picks a Normaliser by MIME type. Normaliser turns bytes
// into page-located text blocks and SectionPipeline cuts those into sections.
// ContentStore holds the original files.
//
// # Retrieval
//
// EmbeddingService vectorises sections and passages. DocumentStore persists
// documents, sections and vectors across runs, SectionIndex answers nearest
// neighbour queries in memory and Classifier labels the candidates.
//
// # May be nil
//
// LLMService, Summariser, LibraryWatcher and PromptStore. Lens stays usable
// without them: results just carry a count summary instead of a narrative and
// library changes are picked up on the next start.
package driven
