package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"noteshelf/internal/config"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
	"noteshelf/internal/domain/services"
	"noteshelf/internal/foldertree"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	noteRepo   repositories.NoteRepository
	txManager  repositories.TransactionManager
	validator  *HierarchyValidator
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	noteRepo repositories.NoteRepository,
	txManager repositories.TransactionManager,
	validator *HierarchyValidator,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		noteRepo:   noteRepo,
		txManager:  txManager,
		validator:  validator,
		logger:     logger,
	}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, ownerID string, req *services.CreateFolderRequest) (*models.Folder, error) {
	name, err := validateFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	parentID := normalizeParentID(req.ParentID)
	store := s.folderRepo.ForOwner(ownerID)

	if parentID != nil {
		if _, err := store.GetByID(ctx, *parentID); err != nil {
			return nil, folderLookupError(err, domain.NewParentNotFoundError(*parentID))
		}
	}
	if err := s.validator.ValidateDepthBound(ctx, store, parentID, 0); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSiblingNameUnique(ctx, store, parentID, name, ""); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		ParentID: parentID,
		Name:     name,
	}
	if err := store.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"owner_id", ownerID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder
func (s *folderService) GetFolder(ctx context.Context, ownerID, folderID string) (*models.Folder, error) {
	folder, err := s.folderRepo.ForOwner(ownerID).GetByID(ctx, folderID)
	if err != nil {
		return nil, folderLookupError(err, domain.NewFolderNotFoundError(folderID))
	}
	return folder, nil
}

// RenameFolder changes the folder's name
func (s *folderService) RenameFolder(ctx context.Context, ownerID, folderID, newName string) (*models.Folder, error) {
	return s.UpdateFolder(ctx, ownerID, folderID, &services.UpdateFolderRequest{Name: &newName})
}

// MoveFolder re-parents the folder
func (s *folderService) MoveFolder(ctx context.Context, ownerID, folderID string, newParentID *string) (*models.Folder, error) {
	return s.UpdateFolder(ctx, ownerID, folderID, &services.UpdateFolderRequest{
		ParentID: services.OptionalParent{Present: true, Value: newParentID},
	})
}

// UpdateFolder applies name then parent, checks the result once, and
// persists once. Nothing is written when a check fails.
func (s *folderService) UpdateFolder(ctx context.Context, ownerID, folderID string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name == nil && !req.ParentID.Present {
		return nil, fmt.Errorf("%w: at least one of name or parent_id must be provided", domain.ErrValidation)
	}

	store := s.folderRepo.ForOwner(ownerID)
	folder, err := store.GetByID(ctx, folderID)
	if err != nil {
		return nil, folderLookupError(err, domain.NewFolderNotFoundError(folderID))
	}

	changed := false

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			// Blank rename keeps the current name
			s.logger.Debug("ignoring blank folder rename", "id", folderID)
		} else {
			name, err := validateFolderName(*req.Name)
			if err != nil {
				return nil, err
			}
			changed = changed || name != folder.Name
			folder.Name = name
		}
	}

	if req.ParentID.Present {
		newParentID := normalizeParentID(req.ParentID.Value)
		if err := s.validateMove(ctx, store, folder, newParentID); err != nil {
			return nil, err
		}
		changed = changed || !sameParentID(folder.ParentID, newParentID)
		folder.ParentID = newParentID
	}

	if !changed {
		return folder, nil
	}

	if err := s.validator.ValidateSiblingNameUnique(ctx, store, folder.ParentID, folder.Name, folder.ID); err != nil {
		return nil, err
	}

	if err := store.Update(ctx, folder); err != nil {
		return nil, folderLookupError(err, domain.NewFolderNotFoundError(folderID))
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"owner_id", ownerID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// validateMove runs the move checks in order: parent exists, not self, no
// cycle, depth bound for the whole subtree. Moving to the root only ever
// makes a subtree shallower, so it needs no checks.
func (s *folderService) validateMove(ctx context.Context, store repositories.OwnerFolderStore, folder *models.Folder, newParentID *string) error {
	if newParentID == nil {
		return nil
	}

	if _, err := store.GetByID(ctx, *newParentID); err != nil {
		return folderLookupError(err, domain.NewParentNotFoundError(*newParentID))
	}
	if err := s.validator.ValidateNoCycle(ctx, store, *newParentID, folder.ID); err != nil {
		return err
	}

	height, err := s.validator.SubtreeHeight(ctx, store, folder.ID)
	if err != nil {
		return err
	}
	return s.validator.ValidateDepthBound(ctx, store, newParentID, height)
}

// DeleteFolder removes the folder in one transaction: promote children to
// the folder's parent, move its notes to Uncategorized, delete the record.
//
// A promoted child whose name is already taken at the destination gets a
// " (n)" suffix so sibling names stay unique.
func (s *folderService) DeleteFolder(ctx context.Context, ownerID, folderID string) (*services.DeleteFolderResult, error) {
	folderStore := s.folderRepo.ForOwner(ownerID)
	noteStore := s.noteRepo.ForOwner(ownerID)

	result := &services.DeleteFolderResult{}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := folderStore.GetByID(txCtx, folderID)
		if err != nil {
			return folderLookupError(err, domain.NewFolderNotFoundError(folderID))
		}
		result.Folder = *folder

		renamed, err := s.renameCollidingChildren(txCtx, folderStore, folder)
		if err != nil {
			return err
		}
		result.RenamedChildren = renamed

		promoted, err := folderStore.ReparentChildren(txCtx, folder.ID, folder.ParentID)
		if err != nil {
			return fmt.Errorf("promote children: %w", err)
		}
		result.PromotedChildren = promoted

		cleared, err := noteStore.ClearFolder(txCtx, folder.ID)
		if err != nil {
			return fmt.Errorf("clear notes: %w", err)
		}
		result.ClearedNotes = cleared

		if err := folderStore.Delete(txCtx, folder.ID); err != nil {
			return folderLookupError(err, domain.NewFolderNotFoundError(folderID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"owner_id", ownerID,
		"promoted_children", result.PromotedChildren,
		"renamed_children", len(result.RenamedChildren),
		"cleared_notes", result.ClearedNotes,
	)

	return result, nil
}

// renameCollidingChildren gives each child of folder that would clash at the
// destination level a free "name (n)" and returns the renamed ids. The
// folder's own name counts as taken because it is still stored while the
// children move.
func (s *folderService) renameCollidingChildren(ctx context.Context, store repositories.OwnerFolderStore, folder *models.Folder) ([]string, error) {
	all, err := store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	taken := siblingKeys(all, folder.ParentID)
	for key := range siblingKeys(all, &folder.ID) {
		taken[key] = true
	}

	var children []models.Folder
	for _, f := range all {
		if f.ParentID != nil && *f.ParentID == folder.ID {
			children = append(children, f)
		}
	}
	slices.SortFunc(children, func(a, b models.Folder) int { return strings.Compare(a.ID, b.ID) })

	destination := siblingKeys(all, folder.ParentID)
	var renamed []string
	for i := range children {
		child := &children[i]
		if !destination[foldertree.NameKey(child.Name)] {
			continue
		}
		newName := freeName(child.Name, taken)
		s.logger.Warn("renaming promoted folder to avoid a name clash",
			"id", child.ID,
			"deleted_parent_id", folder.ID,
		)
		child.Name = newName
		if err := store.Update(ctx, child); err != nil {
			return nil, fmt.Errorf("rename promoted folder: %w", err)
		}
		taken[foldertree.NameKey(newName)] = true
		destination[foldertree.NameKey(newName)] = true
		renamed = append(renamed, child.ID)
	}
	return renamed, nil
}

// freeName returns "name (n)" for the smallest n >= 2 not in taken, cutting
// name so the result fits MaxFolderNameLength runes
func freeName(name string, taken map[string]bool) string {
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := truncateRunes(name, config.MaxFolderNameLength-utf8.RuneCountInString(suffix)) + suffix
		if !taken[foldertree.NameKey(candidate)] {
			return candidate
		}
	}
}

// truncateRunes returns at most maxRunes runes of s
func truncateRunes(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

// ListFolders returns the owner's folders in persisted order
func (s *folderService) ListFolders(ctx context.Context, ownerID, search string) ([]models.Folder, error) {
	search = strings.TrimSpace(search)
	if err := validation.Validate(search,
		validation.RuneLength(0, config.MaxFolderSearchLength).Error(fmt.Sprintf("must be at most %d characters", config.MaxFolderSearchLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: search %v", domain.ErrValidation, err)
	}
	return s.folderRepo.ForOwner(ownerID).List(ctx, search)
}

// GetTree builds the owner's folder forest
func (s *folderService) GetTree(ctx context.Context, ownerID string) ([]*models.FolderTreeNode, error) {
	folders, err := s.folderRepo.ForOwner(ownerID).List(ctx, "")
	if err != nil {
		return nil, err
	}

	for _, f := range foldertree.DanglingParents(folders) {
		s.logger.Warn("folder parent does not resolve, showing at root",
			"folder_id", f.ID,
			"parent_id", f.ParentID,
			"owner_id", ownerID,
		)
	}

	return foldertree.Build(folders), nil
}

// ListParentOptions returns the folders a new child may be placed under
func (s *folderService) ListParentOptions(ctx context.Context, ownerID string) ([]models.ParentOption, error) {
	tree, err := s.GetTree(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return foldertree.ParentOptions(tree, s.validator.MaxDepth()), nil
}

// ListInTreeOrder returns folders in display order
func (s *folderService) ListInTreeOrder(ctx context.Context, ownerID string) ([]models.Folder, error) {
	tree, err := s.GetTree(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return foldertree.Flatten(tree), nil
}

// ToggleSelection applies a click to the selection using the owner's tree
func (s *folderService) ToggleSelection(ctx context.Context, ownerID string, req *services.ToggleSelectionRequest) (*services.ToggleSelectionResult, error) {
	tree, err := s.GetTree(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// A folder deleted since it was selected can still be toggled off
	if req.Target != nil && req.Target.Kind == foldertree.KindFolder {
		if foldertree.FindNode(tree, req.Target.FolderID) == nil && !req.Selection.Has(*req.Target) {
			return nil, domain.NewFolderNotFoundError(req.Target.FolderID)
		}
	}

	selection := foldertree.Toggle(tree, req.Selection, req.Target)
	return &services.ToggleSelectionResult{
		Selection: selection,
		Query:     selectionQuery(foldertree.ResolveQuery(selection)),
	}, nil
}

func selectionQuery(filter models.NoteFolderFilter) services.SelectionQuery {
	ids := filter.FolderIDs
	if ids == nil {
		ids = []string{}
	}
	return services.SelectionQuery{
		FolderIDs:            ids,
		IncludeUncategorized: filter.IncludeUncategorized,
		Unfiltered:           filter.Unfiltered(),
	}
}

// validateFolderName trims name and checks it is non-empty and fits the column
func validateFolderName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.NewInvalidNameError()
	}
	if err := validation.Validate(name,
		validation.RuneLength(1, config.MaxFolderNameLength).Error(fmt.Sprintf("must be at most %d characters", config.MaxFolderNameLength)),
	); err != nil {
		return "", &domain.FolderError{
			Kind:    domain.KindInvalidName,
			Message: fmt.Sprintf("Folder name %v", err),
		}
	}
	return name, nil
}
