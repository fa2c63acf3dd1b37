package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	snapshot   BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

// DocumentStore persists document snapshots in a SQLite database.
// Each document is stored as one JSON row; created_at is duplicated
// into its own column so listing stays ordered without decoding.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore opens (or creates) the database at dbPath. An empty
// path defaults to ~/.docforge/data/documents.db.
func NewDocumentStore(dbPath string) (*DocumentStore, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".docforge", "data", "documents.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DocumentStore{db: db}, nil
}

// Save stores or replaces a document snapshot.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	snapshot, err := encode(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, created_at, snapshot) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, snapshot = excluded.snapshot`,
		doc.ID, doc.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"), snapshot,
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var snapshot []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM documents WHERE id = ?`, id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return decode(snapshot)
}

// List returns all documents ordered by creation time.
func (s *DocumentStore) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT snapshot FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc, err := decode(snapshot)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Delete removes a document. Deleting an unknown ID is a no-op.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}
