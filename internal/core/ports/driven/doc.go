// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Extractor / ExtractorRegistry: Decode raw upload bytes into text
//   - DocumentStore: Document snapshot persistence
//   - ConceptScorer: Ranks key phrases for metadata extraction
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, Index fails
//     fast with a connection error; processing is unaffected.
//   - VectorStore: Receives chunk/vector upserts. Same degradation as above.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
