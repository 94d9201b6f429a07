package service

import (
	"context"
	"errors"
	"fmt"

	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
	"noteshelf/internal/foldertree"
)

// HierarchyValidator checks the folder invariants a mutation must preserve
// before anything is written. Each check reads through the owner-scoped
// store, so a folder of another owner is indistinguishable from a missing one.
type HierarchyValidator struct {
	maxDepth int
}

// NewHierarchyValidator creates a validator for trees at most maxDepth levels
// deep (root folders are depth 0).
func NewHierarchyValidator(maxDepth int) *HierarchyValidator {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &HierarchyValidator{maxDepth: maxDepth}
}

// MaxDepth returns the number of levels allowed
func (v *HierarchyValidator) MaxDepth() int {
	return v.maxDepth
}

// ValidateSiblingNameUnique returns a DuplicateName error when another folder
// under parentID (nil = root) has the same name, ignoring case. excludeID is
// the folder being renamed or moved.
func (v *HierarchyValidator) ValidateSiblingNameUnique(ctx context.Context, store repositories.OwnerFolderStore, parentID *string, name, excludeID string) error {
	existing, err := store.FindSiblingByName(ctx, normalizeParentID(parentID), name, excludeID)
	if err != nil {
		return fmt.Errorf("check sibling names: %w", err)
	}
	if existing != nil {
		return domain.NewDuplicateNameError(existing.ID)
	}
	return nil
}

// ValidateNoCycle rejects making candidateParentID the parent of folderID when
// folderID appears on the candidate's ancestor chain (or is the candidate).
// The walk is bounded by the owner's folder count so corrupt data that
// already loops cannot hang the request.
func (v *HierarchyValidator) ValidateNoCycle(ctx context.Context, store repositories.OwnerFolderStore, candidateParentID, folderID string) error {
	if candidateParentID == folderID {
		return domain.NewSelfParentError(folderID)
	}

	limit, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count folders: %w", err)
	}

	current := candidateParentID
	for steps := 0; ; steps++ {
		if steps > limit {
			return domain.NewCycleDetectedError(folderID)
		}
		folder, err := store.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Dangling link: the chain ends here
				return nil
			}
			return fmt.Errorf("walk ancestors: %w", err)
		}
		if folder.ParentID == nil {
			return nil
		}
		if *folder.ParentID == folderID {
			return domain.NewCycleDetectedError(folderID)
		}
		current = *folder.ParentID
	}
}

// ValidateDepthBound rejects placing a subtree of the given height (0 for a
// single folder) under candidateParentID when its deepest folder would reach
// maxDepth. A nil candidate places the subtree at the root.
func (v *HierarchyValidator) ValidateDepthBound(ctx context.Context, store repositories.OwnerFolderStore, candidateParentID *string, subtreeHeight int) error {
	newDepth := 0
	if candidateParentID != nil {
		parentDepth, err := v.depth(ctx, store, *candidateParentID)
		if err != nil {
			return err
		}
		newDepth = parentDepth + 1
	}

	if newDepth+subtreeHeight >= v.maxDepth {
		return domain.NewDepthExceededError(v.maxDepth)
	}
	return nil
}

// depth counts the ancestors of folderID. A dangling parent ends the chain,
// matching how the tree builder promotes such folders to the root.
func (v *HierarchyValidator) depth(ctx context.Context, store repositories.OwnerFolderStore, folderID string) (int, error) {
	limit, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}

	folder, err := store.GetByID(ctx, folderID)
	if err != nil {
		return 0, err
	}

	d := 0
	for folder.ParentID != nil {
		if d >= limit {
			return 0, domain.NewDepthExceededError(v.maxDepth)
		}
		parent, err := store.GetByID(ctx, *folder.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				break
			}
			return 0, fmt.Errorf("walk ancestors: %w", err)
		}
		d++
		folder = parent
	}
	return d, nil
}

// SubtreeHeight returns how many levels sit below folderID in the owner's
// current tree.
func (v *HierarchyValidator) SubtreeHeight(ctx context.Context, store repositories.OwnerFolderStore, folderID string) (int, error) {
	folders, err := store.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list folders: %w", err)
	}
	node := foldertree.FindNode(foldertree.Build(folders), folderID)
	if node == nil {
		return 0, nil
	}
	return foldertree.Height(node), nil
}

// normalizeParentID treats "" as the root
func normalizeParentID(parentID *string) *string {
	if parentID == nil || *parentID == "" {
		return nil
	}
	return parentID
}

// folderLookupError converts a store not-found into the given folder error
func folderLookupError(err error, notFound *domain.FolderError) error {
	if errors.Is(err, domain.ErrNotFound) {
		return notFound
	}
	return err
}

func siblingKeys(folders []models.Folder, parentID *string) map[string]bool {
	keys := make(map[string]bool)
	for _, f := range folders {
		if sameParentID(f.ParentID, parentID) {
			keys[foldertree.NameKey(f.Name)] = true
		}
	}
	return keys
}

func sameParentID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
