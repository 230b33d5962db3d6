// Package normalisers provides implementations of the Normaliser interface
// for the document formats the library accepts. Each normaliser reads one
// MIME type into ordered, page-located text blocks.
//
// Normalisers are registered with the Registry at startup. The package also
// holds the text helpers shared by normalisers and section processors.
package normalisers
