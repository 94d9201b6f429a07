package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
)

// NoteRepository implements repositories.NoteRepository over a Store.
type NoteRepository struct {
	store *Store
}

var _ repositories.NoteRepository = (*NoteRepository)(nil)

func (r *NoteRepository) ForOwner(ownerID string) repositories.OwnerNoteStore {
	return &ownerNoteStore{store: r.store, ownerID: ownerID}
}

type ownerNoteStore struct {
	store   *Store
	ownerID string
}

func (s *ownerNoteStore) List(ctx context.Context, opts models.NoteListOptions) ([]models.Note, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	var folderSet map[string]bool
	if !opts.Folder.Unfiltered() {
		folderSet = make(map[string]bool, len(opts.Folder.FolderIDs))
		for _, id := range opts.Folder.FolderIDs {
			folderSet[id] = true
		}
	}
	needle := strings.ToLower(opts.Search)

	out := make([]models.Note, 0)
	for _, n := range st.notes {
		if n.OwnerID != s.ownerID {
			continue
		}
		if folderSet != nil {
			inFolder := n.FolderID != nil && folderSet[*n.FolderID]
			uncategorized := n.FolderID == nil && opts.Folder.IncludeUncategorized
			if !inFolder && !uncategorized {
				continue
			}
		}
		if needle != "" && !noteMatches(n, needle) {
			continue
		}
		n.FolderID = cloneString(n.FolderID)
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func noteMatches(n models.Note, needle string) bool {
	for _, field := range []string{n.Title, n.Description, n.OriginalName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *ownerNoteStore) GetByID(ctx context.Context, id string) (*models.Note, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	n, ok := st.notes[id]
	if !ok || n.OwnerID != s.ownerID {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	n.FolderID = cloneString(n.FolderID)
	return &n, nil
}

func (s *ownerNoteStore) SetFolder(ctx context.Context, noteID string, folderID *string) (*models.Note, error) {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	n, ok := st.notes[noteID]
	if !ok || n.OwnerID != s.ownerID {
		return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}
	if folderID != nil {
		if rec, ok := st.folders[*folderID]; !ok || rec.folder.OwnerID != s.ownerID {
			return nil, domain.NewFolderNotFoundError(*folderID)
		}
	}

	st.recordNoteLocked(ctx, noteID)
	n.FolderID = cloneString(folderID)
	n.UpdatedAt = st.now()
	st.notes[noteID] = n

	n.FolderID = cloneString(folderID)
	return &n, nil
}

func (s *ownerNoteStore) ClearFolder(ctx context.Context, folderID string) (int64, error) {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	var cleared int64
	for id, n := range st.notes {
		if n.OwnerID != s.ownerID || n.FolderID == nil || *n.FolderID != folderID {
			continue
		}
		st.recordNoteLocked(ctx, id)
		n.FolderID = nil
		st.notes[id] = n
		cleared++
	}
	return cleared, nil
}

// Create inserts a note, assigning ID, OwnerID and timestamps.
func (s *ownerNoteStore) Create(ctx context.Context, note *models.Note) error {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if note.FolderID != nil {
		if rec, ok := st.folders[*note.FolderID]; !ok || rec.folder.OwnerID != s.ownerID {
			return domain.NewFolderNotFoundError(*note.FolderID)
		}
	}

	now := st.now()
	note.ID = uuid.NewString()
	note.OwnerID = s.ownerID
	note.FolderID = cloneString(note.FolderID)
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = now
	}
	st.recordNoteLocked(ctx, note.ID)
	st.notes[note.ID] = *note
	return nil
}
