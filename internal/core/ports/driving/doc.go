// Package driving is the surface the CLI, TUI and MCP server call into:
// LibraryService for documents, AnalysisService for passages and
// SettingsService for configuration. internal/core/services implements all
// three, and drivingtest holds fakes for adapter tests.
package driving
