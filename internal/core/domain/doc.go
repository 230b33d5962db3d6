// Package domain holds the lens data model: documents and their page-located
// sections, the vectors attached to them, and the labelled snippets an
// analysis returns. It also holds the settings tree and the sentinel errors
// the other layers wrap.
//
// domain imports the standard library only.
package domain
