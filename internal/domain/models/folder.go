package models

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	Order     int       `json:"order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderTreeNode is a folder with its nested children, built per request
// from the flat list and never persisted.
type FolderTreeNode struct {
	Folder   Folder            `json:"folder"`
	Children []*FolderTreeNode `json:"children"`
}

// ParentOption is one entry of a "choose parent folder" picker.
// Depth is for indentation only.
type ParentOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}
