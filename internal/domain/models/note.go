package models

import "time"

// Note is the file record that folders organise. Its own CRUD and blob
// storage live outside this service; only folder placement is managed here.
type Note struct {
	ID              string    `json:"id" db:"id"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	FolderID        *string   `json:"folder_id" db:"folder_id"` // NULL = Uncategorized
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	FileName        string    `json:"file_name" db:"file_name"`
	FileURL         *string   `json:"file_url,omitempty" db:"file_url"`
	OriginalName    string    `json:"original_name" db:"original_name"`
	MimeType        string    `json:"mime_type" db:"mime_type"`
	Size            *int64    `json:"size,omitempty" db:"size"`
	IsPublic        bool      `json:"is_public" db:"is_public"`
	ListedOnExplore bool      `json:"listed_on_explore" db:"listed_on_explore"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NoteFolderFilter constrains a note listing by folder.
// The zero value means no folder constraint.
type NoteFolderFilter struct {
	FolderIDs            []string
	IncludeUncategorized bool
}

// Unfiltered reports whether the filter places no constraint on folder_id.
func (f NoteFolderFilter) Unfiltered() bool {
	return len(f.FolderIDs) == 0 && !f.IncludeUncategorized
}

// NoteListOptions are the query constraints for listing an owner's notes.
type NoteListOptions struct {
	Folder NoteFolderFilter
	Search string // case-insensitive substring over title, description, original name
}
