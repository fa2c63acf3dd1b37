// Package domain defines the core business entities for Docforge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The aggregate tracking one document through the pipeline
//   - Chunk: A bounded slice of cleaned text prepared for embedding
//   - ChunkConfig / CleaningConfig: Pipeline run parameters
//   - DocumentStatus: The processing lifecycle state machine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
