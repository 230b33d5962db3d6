// Package services is the lens core. SectionExtractor turns documents into
// sections, EmbeddingStore keeps their vectors and answers similarity
// queries, and AnalysisService ranks and labels what it finds.
// LibraryService and SettingsService manage the library and config.toml.
//
// Everything here talks to infrastructure through ports/driven only.
package services
