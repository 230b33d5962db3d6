// Package file keeps user-editable state under ~/.sercha-lens: config.toml,
// stored as nested TOML tables but addressed by dotted keys, and the
// prompts/ directory of LLM templates.
package file
