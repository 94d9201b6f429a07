package services

import (
	"context"

	"noteshelf/internal/domain/models"
)

// NoteService exposes the folder-facing side of notes: filtering by folder
// selection and placing a note in a folder.
type NoteService interface {
	// ListNotes returns the owner's notes matching the query, newest first
	ListNotes(ctx context.Context, ownerID string, query *ListNotesQuery) ([]models.Note, error)

	// AssignFolder moves a note into folderID, or to Uncategorized when nil
	AssignFolder(ctx context.Context, ownerID, noteID string, folderID *string) (*models.Note, error)
}

// ListNotesQuery is the parsed form of the note listing query string
type ListNotesQuery struct {
	// FolderIDs holds raw selection items: folder ids, "uncategorized" or
	// "null". Malformed ids are dropped.
	FolderIDs []string
	// LegacyFolderID is the single-folder filter used by older clients. It
	// is ignored when FolderIDs is set; a malformed id matches no notes.
	LegacyFolderID string
	// Cascade expands every selected folder to include its descendants
	Cascade bool
	Search  string
}
