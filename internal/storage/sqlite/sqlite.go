package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/michaelbrown/codepad/internal/storage"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements storage.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: the foreign_keys pragma and ":memory:" databases are
	// both per connection.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p *storage.Project) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, room_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.RoomID, p.Name,
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*storage.Project, error) {
	// Try exact match first, then prefix match
	p, err := scanProject(s.db.QueryRowContext(ctx, `
		SELECT id, room_id, name, created_at, updated_at
		FROM projects WHERE id = ?`, id))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying project: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, name, created_at, updated_at
		FROM projects WHERE id LIKE ? || '%'`, id)
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	defer rows.Close()

	var matches []*storage.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("project %s: %w", id, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous project prefix %q matches %d projects", id, len(matches))
	}
}

func (s *SQLiteStore) ListProjects(ctx context.Context, opts storage.ProjectListOptions) ([]storage.Project, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, room_id, name, created_at, updated_at FROM projects`
	var args []any

	if opts.RoomID != "" {
		query += ` WHERE room_id = ?`
		args = append(args, opts.RoomID)
	}

	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []storage.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	// Resolve prefix first
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}

	// Delete files first (foreign key), then the project
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE project_id = ?`, p.ID); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, p.ID)
	return err
}

func (s *SQLiteStore) SaveFile(ctx context.Context, f *storage.File) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	var id, createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO files (id, project_id, name, type, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, name, type) DO UPDATE SET
			content = excluded.content, updated_at = excluded.updated_at
		RETURNING id, created_at`,
		f.ID, f.ProjectID, f.Name, f.Type, f.Content,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	).Scan(&id, &createdAt)
	if err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	f.ID = id
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339), f.ProjectID)
	return err
}

func (s *SQLiteStore) ListFiles(ctx context.Context, projectID string) ([]storage.File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, type, content, created_at, updated_at
		FROM files WHERE project_id = ? ORDER BY created_at, name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var files []storage.File
	for rows.Next() {
		var f storage.File
		var createdAt, updatedAt string
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Type, &f.Content, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Scanner interface to work with both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*storage.Project, error) {
	var p storage.Project
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.RoomID, &p.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}
