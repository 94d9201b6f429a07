package repositories

import (
	"context"

	"noteshelf/internal/domain/models"
)

// FolderRepository hands out stores bound to a single owner. There is no
// unscoped query method: every folder read or write goes through ForOwner.
type FolderRepository interface {
	ForOwner(ownerID string) OwnerFolderStore
}

// OwnerFolderStore defines data access operations for one owner's folders
type OwnerFolderStore interface {
	// OwnerID returns the owner this store is bound to
	OwnerID() string

	// Create inserts a folder, assigning ID, OwnerID and timestamps
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder; wraps domain.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update persists name, parent and order, refreshing UpdatedAt
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a folder record; wraps domain.ErrNotFound when absent
	Delete(ctx context.Context, id string) error

	// List returns the owner's folders ordered by order, then created_at.
	// A non-empty search keeps only names containing it (case-insensitive).
	List(ctx context.Context, search string) ([]models.Folder, error)

	// Count returns how many folders the owner has
	Count(ctx context.Context) (int, error)

	// FindSiblingByName returns a folder under parentID whose name equals name
	// case-insensitively, ignoring excludeID. Returns nil, nil when none.
	FindSiblingByName(ctx context.Context, parentID *string, name, excludeID string) (*models.Folder, error)

	// ReparentChildren moves every child of folderID to newParentID in one
	// statement and returns how many rows moved
	ReparentChildren(ctx context.Context, folderID string, newParentID *string) (int64, error)
}
