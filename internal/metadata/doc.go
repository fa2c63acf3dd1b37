// Package metadata derives document- and chunk-level metadata from
// cleaned text. Every document-level field is best-effort: a field whose
// extraction fails or finds nothing is omitted, never fatal to the run.
package metadata
