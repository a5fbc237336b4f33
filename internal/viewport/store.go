// Package viewport persists per-user navigation state (zoom and pan) for a
// document visualization. Viewports survive reloads and are never touched by
// layout recomputation; only an explicit "fit to screen" resets one.
package viewport

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

// Store keeps viewports in SQLite keyed by (document, user, layout type).
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening viewport database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating viewport schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS viewports (
		document_id TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		layout_type TEXT NOT NULL,
		zoom        REAL NOT NULL,
		pan_x       REAL NOT NULL,
		pan_y       REAL NOT NULL,
		PRIMARY KEY (document_id, user_id, layout_type)
	)`)
	return err
}

// Get returns the saved viewport, or the default (zoom 1, origin pan) when
// the user has never navigated this visualization.
func (s *Store) Get(documentID, userID, layoutType string) (model.Viewport, error) {
	row := s.db.QueryRow(
		`SELECT zoom, pan_x, pan_y FROM viewports
		 WHERE document_id = ? AND user_id = ? AND layout_type = ?`,
		documentID, userID, layoutType)

	var v model.Viewport
	err := row.Scan(&v.Zoom, &v.Pan.X, &v.Pan.Y)
	if err == sql.ErrNoRows {
		return model.Viewport{Zoom: 1}, nil
	}
	if err != nil {
		return model.Viewport{}, fmt.Errorf("reading viewport: %w", err)
	}
	return v, nil
}

func (s *Store) Put(documentID, userID, layoutType string, v model.Viewport) error {
	_, err := s.db.Exec(
		`INSERT INTO viewports (document_id, user_id, layout_type, zoom, pan_x, pan_y)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (document_id, user_id, layout_type)
		 DO UPDATE SET zoom = excluded.zoom, pan_x = excluded.pan_x, pan_y = excluded.pan_y`,
		documentID, userID, layoutType, v.Zoom, v.Pan.X, v.Pan.Y)
	if err != nil {
		return fmt.Errorf("saving viewport: %w", err)
	}
	return nil
}

// Reset implements "fit to screen": drops the saved state so the next Get
// returns the default.
func (s *Store) Reset(documentID, userID, layoutType string) error {
	_, err := s.db.Exec(
		`DELETE FROM viewports WHERE document_id = ? AND user_id = ? AND layout_type = ?`,
		documentID, userID, layoutType)
	if err != nil {
		return fmt.Errorf("resetting viewport: %w", err)
	}
	return nil
}
