// Package store persists finished diagrams. The generation core never
// imports this package; only the gateway consumes it, through the
// domain.DiagramStore contract.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/Rmalnoult/doodlegram/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS diagrams (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	prompt      TEXT NOT NULL DEFAULT '',
	elements    TEXT NOT NULL,
	files       TEXT NOT NULL DEFAULT '{}',
	created_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore implements domain.DiagramStore on a local SQLite database.
// Elements and assets are stored as JSON columns; the store never
// inspects their contents.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements domain.DiagramStore. A fresh id is allocated when the
// diagram has none.
func (s *SQLiteStore) Save(ctx context.Context, d domain.Diagram) (string, error) {
	if d.ID == "" {
		d.ID = newDiagramID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	elements, err := json.Marshal(d.Elements)
	if err != nil {
		return "", domain.WrapOp("SQLiteStore.Save", err)
	}
	files, err := json.Marshal(d.Files)
	if err != nil {
		return "", domain.WrapOp("SQLiteStore.Save", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagrams (id, title, description, category, prompt, elements, files, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Description, string(d.Category), d.Prompt, string(elements), string(files), d.CreatedAt,
	)
	if err != nil {
		return "", domain.WrapOp("SQLiteStore.Save", err)
	}
	return d.ID, nil
}

// Get implements domain.DiagramStore.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Diagram, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, category, prompt, elements, files, created_at
		 FROM diagrams WHERE id = ?`, id,
	)

	var d domain.Diagram
	var category, elements, files string
	err := row.Scan(&d.ID, &d.Title, &d.Description, &category, &d.Prompt, &elements, &files, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewDomainError("SQLiteStore.Get", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, domain.WrapOp("SQLiteStore.Get", err)
	}

	d.Category = domain.Category(category)
	if err := json.Unmarshal([]byte(elements), &d.Elements); err != nil {
		return nil, domain.WrapOp("SQLiteStore.Get", err)
	}
	if err := json.Unmarshal([]byte(files), &d.Files); err != nil {
		return nil, domain.WrapOp("SQLiteStore.Get", err)
	}
	return &d, nil
}

// Close implements domain.DiagramStore.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func newDiagramID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
