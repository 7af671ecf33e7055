package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store on a local SQLite database. Documents
// are kept as JSON bodies in a single table and field queries use the
// JSON1 extension, which keeps the store schemaless the way a hosted
// document store would be.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		body TEXT NOT NULL,
		seq INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// NewSQLiteStore opens (creating if needed) a SQLite-backed document
// store at the given path. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert stores a document and returns its assigned id.
func (s *SQLiteStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("collection cannot be empty")
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO documents (id, collection, body, seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents))`
	if _, err := s.db.ExecContext(ctx, query, id, collection, string(body)); err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return id, nil
}

// QueryByField returns all documents in the collection whose field
// equals the given value, in insertion order.
func (s *SQLiteStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Stored, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection cannot be empty")
	}
	if field == "" {
		return nil, fmt.Errorf("field cannot be empty")
	}

	query := `
		SELECT id, body
		FROM documents
		WHERE collection = ? AND json_extract(body, '$.' || ?) = ?
		ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var results []Stored
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		var fields Document
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}

		results = append(results, Stored{ID: id, Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return results, nil
}
