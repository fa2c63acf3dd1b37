// Package chunker splits cleaned document text into bounded, semantically
// coherent chunks for downstream embedding.
//
// Three strategies are provided, selected by configuration, never by
// runtime type inspection:
//
//   - fixed: sliding character window with constant stride
//   - paragraph: greedy accumulation of whole paragraphs
//   - semantic: cuts at scored boundaries (heading > paragraph > sentence)
//
// Splitting is deterministic: identical (text, config) inputs produce
// byte-identical chunk sequences. Invalid configurations are rejected
// before any chunk is produced.
package chunker
