// Package sqlite provides a SQLite-backed document store so prepared
// documents survive process restarts. Snapshots are stored as JSON rows;
// the pipeline, not the database, is the source of truth for structure.
package sqlite
