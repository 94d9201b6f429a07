package repositories

import (
	"context"

	"noteshelf/internal/domain/models"
)

// NoteRepository hands out note stores bound to a single owner.
type NoteRepository interface {
	ForOwner(ownerID string) OwnerNoteStore
}

// OwnerNoteStore is the slice of the note collection the folder subsystem needs
type OwnerNoteStore interface {
	// List returns notes matching opts, newest update first
	List(ctx context.Context, opts models.NoteListOptions) ([]models.Note, error)

	// GetByID retrieves a note; wraps domain.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Note, error)

	// SetFolder places a note in folderID (nil = Uncategorized)
	SetFolder(ctx context.Context, noteID string, folderID *string) (*models.Note, error)

	// Create inserts a note, assigning ID, OwnerID and timestamps. Only the
	// seed command creates notes here; uploads go through a separate service.
	Create(ctx context.Context, note *models.Note) error

	// ClearFolder sets folder_id to NULL on every note in folderID and
	// returns how many notes were touched
	ClearFolder(ctx context.Context, folderID string) (int64, error)
}
