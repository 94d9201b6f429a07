package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"noteshelf/internal/config"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
	"noteshelf/internal/domain/services"
	"noteshelf/internal/foldertree"
)

type noteService struct {
	noteRepo   repositories.NoteRepository
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	logger *slog.Logger,
) services.NoteService {
	return &noteService{
		noteRepo:   noteRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// ListNotes filters the owner's notes by folder selection and search text
func (s *noteService) ListNotes(ctx context.Context, ownerID string, query *services.ListNotesQuery) ([]models.Note, error) {
	search := strings.TrimSpace(query.Search)
	err := validation.ValidateStruct(query,
		validation.Field(&query.FolderIDs,
			validation.Length(0, config.MaxNoteFolderFilter).Error(fmt.Sprintf("must list at most %d folders", config.MaxNoteFolderFilter)),
		),
	)
	if err == nil {
		err = validation.Validate(search,
			validation.RuneLength(0, config.MaxFolderSearchLength).Error(fmt.Sprintf("must be at most %d characters", config.MaxFolderSearchLength)),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	selection := parseSelection(query.FolderIDs)
	if len(query.FolderIDs) == 0 && strings.TrimSpace(query.LegacyFolderID) != "" {
		// The single-folder filter is applied as given: an id no folder can
		// have matches no notes
		selection = parseSelection([]string{query.LegacyFolderID})
		if selection.IsEmpty() {
			return []models.Note{}, nil
		}
	}

	if query.Cascade && !selection.IsEmpty() {
		folders, err := s.folderRepo.ForOwner(ownerID).List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list folders: %w", err)
		}
		selection = foldertree.Expand(foldertree.Build(folders), selection)
	}

	return s.noteRepo.ForOwner(ownerID).List(ctx, models.NoteListOptions{
		Folder: foldertree.ResolveQuery(selection),
		Search: search,
	})
}

// parseSelection reads raw selection items, dropping folder ids that are not
// UUIDs. When nothing valid remains the selection is empty (no filter).
func parseSelection(raw []string) foldertree.Selection {
	items := make([]foldertree.SelectionItem, 0, len(raw))
	for _, r := range raw {
		item, ok := foldertree.ParseSelectionItem(strings.TrimSpace(r))
		if !ok {
			continue
		}
		if item.Kind == foldertree.KindFolder && uuid.Validate(item.FolderID) != nil {
			continue
		}
		items = append(items, item)
	}
	return foldertree.NewSelection(items...)
}

// AssignFolder places a note in one of the owner's folders or in Uncategorized
func (s *noteService) AssignFolder(ctx context.Context, ownerID, noteID string, folderID *string) (*models.Note, error) {
	folderID = normalizeParentID(folderID)
	if folderID != nil {
		if _, err := s.folderRepo.ForOwner(ownerID).GetByID(ctx, *folderID); err != nil {
			return nil, folderLookupError(err, domain.NewFolderNotFoundError(*folderID))
		}
	}

	note, err := s.noteRepo.ForOwner(ownerID).SetFolder(ctx, noteID, folderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note folder assigned",
		"note_id", noteID,
		"owner_id", ownerID,
		"folder_id", folderID,
	)

	return note, nil
}
