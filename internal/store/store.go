// Package store persists generated mockup batches to a local SQLite
// database. The database lives inside the workspace dot directory and is
// safe for concurrent use by the HTTP server.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mocksmith/internal/logging"
	"mocksmith/internal/mockup"
)

// Store wraps the SQLite handle for mockup persistence.
type Store struct {
	db   *sql.DB
	path string
}

// ProjectSummary is the listing view of a stored project. Screen images
// are excluded; fetch the full project for those.
type ProjectSummary struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ScreenCount int       `json:"screen_count"`
}

// StoredScreen is one persisted screen with its image payload.
type StoredScreen struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	MimeType  string `json:"mime_type"`
	Image     []byte `json:"image,omitempty"`
	ReactCode string `json:"react_code"`
	HTMLCode  string `json:"html_code"`
}

// Project is a fully loaded generation run.
type Project struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Palette     *mockup.Palette  `json:"palette,omitempty"`
	Screens     []StoredScreen   `json:"screens"`
	Failures    []mockup.Failure `json:"failures,omitempty"`
}

// Open creates or opens the database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writers instead of failing with SQLITE_BUSY.
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("database ready at %s", path)
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		failures    TEXT NOT NULL DEFAULT '[]',
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS palettes (
		project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		primary_hex   TEXT NOT NULL,
		secondary_hex TEXT NOT NULL,
		accent_hex    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS screens (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		title      TEXT NOT NULL,
		mime_type  TEXT NOT NULL,
		image      BLOB,
		react_code TEXT NOT NULL,
		html_code  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_screens_project ON screens(project_id, position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveProject persists a batch and its optional palette in one
// transaction. Screens are stored in batch order.
func (s *Store) SaveProject(ctx context.Context, description string, batch *mockup.Batch, palette *mockup.Palette) (string, error) {
	failures, err := json.Marshal(batch.Failures)
	if err != nil {
		return "", fmt.Errorf("failed to encode failures: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	projectID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, description, failures, created_at) VALUES (?, ?, ?, ?)`,
		projectID, description, string(failures), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert project: %w", err)
	}

	if palette != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO palettes (project_id, primary_hex, secondary_hex, accent_hex) VALUES (?, ?, ?, ?)`,
			projectID, palette.Primary, palette.Secondary, palette.Accent)
		if err != nil {
			return "", fmt.Errorf("failed to insert palette: %w", err)
		}
	}

	for i, screen := range batch.Screens {
		var mimeType string
		var image []byte
		if screen.Image != nil {
			mimeType = screen.Image.MimeType
			image = screen.Image.Data
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO screens (id, project_id, position, title, mime_type, image, react_code, html_code)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), projectID, i, screen.Title, mimeType, image, screen.ReactCode, screen.HTMLCode)
		if err != nil {
			return "", fmt.Errorf("failed to insert screen %q: %w", screen.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit project: %w", err)
	}

	logging.Store("saved project %s with %d screens, %d failures", projectID, len(batch.Screens), len(batch.Failures))
	return projectID, nil
}

// GetProject loads a full project including screen images.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	var failures string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, failures, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Description, &failures, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if err := json.Unmarshal([]byte(failures), &p.Failures); err != nil {
		return nil, fmt.Errorf("failed to decode failures: %w", err)
	}

	var palette mockup.Palette
	err = s.db.QueryRowContext(ctx,
		`SELECT primary_hex, secondary_hex, accent_hex FROM palettes WHERE project_id = ?`, id).
		Scan(&palette.Primary, &palette.Secondary, &palette.Accent)
	if err == nil {
		p.Palette = &palette
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, title, mime_type, image, react_code, html_code
		 FROM screens WHERE project_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load screens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc StoredScreen
		if err := rows.Scan(&sc.ID, &sc.Position, &sc.Title, &sc.MimeType, &sc.Image, &sc.ReactCode, &sc.HTMLCode); err != nil {
			return nil, fmt.Errorf("failed to scan screen: %w", err)
		}
		p.Screens = append(p.Screens, sc)
	}
	return &p, rows.Err()
}

// ListProjects returns summaries of all stored projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.description, p.created_at, COUNT(s.id)
		FROM projects p LEFT JOIN screens s ON s.project_id = p.id
		GROUP BY p.id ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectSummary
	for rows.Next() {
		var ps ProjectSummary
		if err := rows.Scan(&ps.ID, &ps.Description, &ps.CreatedAt, &ps.ScreenCount); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
