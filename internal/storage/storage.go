package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("not found")

// Project groups the files edited together in a room.
type Project struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File is one source file of a project. Type is "html", "css" or "js" for
// previewable files; other types are stored but never composed.
type File struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectListOptions controls filtering and pagination for ListProjects.
type ProjectListOptions struct {
	RoomID string
	Limit  int
	Offset int
}

// Store is the persistence interface for projects and their files.
type Store interface {
	// CreateProject inserts a new project. The ID field must be set by the caller.
	CreateProject(ctx context.Context, p *Project) error

	// GetProject returns a project by ID or unique ID prefix.
	GetProject(ctx context.Context, id string) (*Project, error)

	// ListProjects returns projects ordered by updated_at descending.
	ListProjects(ctx context.Context, opts ProjectListOptions) ([]Project, error)

	// DeleteProject removes a project and its files.
	DeleteProject(ctx context.Context, id string) error

	// SaveFile inserts or replaces the file with the same project, name and type.
	SaveFile(ctx context.Context, f *File) error

	// ListFiles returns a project's files ordered by creation time.
	ListFiles(ctx context.Context, projectID string) ([]File, error)

	// Close releases resources.
	Close() error
}
