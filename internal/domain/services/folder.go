package services

import (
	"context"

	"noteshelf/internal/domain/models"
	"noteshelf/internal/foldertree"
)

// FolderService handles folder business logic. Every method is scoped to
// ownerID; folders of other owners behave as if they did not exist.
type FolderService interface {
	// CreateFolder creates a folder at the root or under an existing parent
	CreateFolder(ctx context.Context, ownerID string, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a single folder
	GetFolder(ctx context.Context, ownerID, folderID string) (*models.Folder, error)

	// RenameFolder changes a folder's name. An empty trimmed name keeps the
	// current name.
	RenameFolder(ctx context.Context, ownerID, folderID, newName string) (*models.Folder, error)

	// MoveFolder re-parents a folder; nil or "" moves it to the root
	MoveFolder(ctx context.Context, ownerID, folderID string, newParentID *string) (*models.Folder, error)

	// UpdateFolder applies a rename and/or move with a single persist
	UpdateFolder(ctx context.Context, ownerID, folderID string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder removes a folder, promotes its children one level and
	// moves its notes to Uncategorized
	DeleteFolder(ctx context.Context, ownerID, folderID string) (*DeleteFolderResult, error)

	// ListFolders returns the owner's folders in persisted order
	ListFolders(ctx context.Context, ownerID, search string) ([]models.Folder, error)

	// GetTree returns the owner's folder forest
	GetTree(ctx context.Context, ownerID string) ([]*models.FolderTreeNode, error)

	// ListParentOptions returns the folders that may receive a new child
	ListParentOptions(ctx context.Context, ownerID string) ([]models.ParentOption, error)

	// ListInTreeOrder returns the owner's folders flattened in display order
	ListInTreeOrder(ctx context.Context, ownerID string) ([]models.Folder, error)

	// ToggleSelection applies a folder-filter click against the owner's tree
	ToggleSelection(ctx context.Context, ownerID string, req *ToggleSelectionRequest) (*ToggleSelectionResult, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null or "" for root folders
}

// OptionalParent is the tri-state parent of an update: absent leaves the
// parent alone, Value nil (or "") moves to the root. Handlers map it from
// httputil.Optional[string].
type OptionalParent struct {
	Present bool
	Value   *string
}

// UpdateFolderRequest represents a combined rename/move request
type UpdateFolderRequest struct {
	Name     *string
	ParentID OptionalParent
}

// DeleteFolderResult reports what the delete cascade touched
type DeleteFolderResult struct {
	Folder           models.Folder `json:"folder"`
	PromotedChildren int64         `json:"promoted_children"`
	RenamedChildren  []string      `json:"renamed_children,omitempty"`
	ClearedNotes     int64         `json:"cleared_notes"`
}

// ToggleSelectionRequest carries the current selection and the clicked item.
// A nil Target clears the selection.
type ToggleSelectionRequest struct {
	Selection foldertree.Selection      `json:"selection"`
	Target    *foldertree.SelectionItem `json:"target"`
}

// SelectionQuery is the note filter a selection resolves to
type SelectionQuery struct {
	FolderIDs            []string `json:"folder_ids"`
	IncludeUncategorized bool     `json:"include_uncategorized"`
	Unfiltered           bool     `json:"unfiltered"`
}

// ToggleSelectionResult is the selection after the toggle plus its query
type ToggleSelectionResult struct {
	Selection foldertree.Selection `json:"selection"`
	Query     SelectionQuery       `json:"query"`
}
