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
	"noteshelf/internal/foldertree"
)

// FolderRepository implements repositories.FolderRepository over a Store.
type FolderRepository struct {
	store *Store
}

var _ repositories.FolderRepository = (*FolderRepository)(nil)

func (r *FolderRepository) ForOwner(ownerID string) repositories.OwnerFolderStore {
	return &ownerFolderStore{store: r.store, ownerID: ownerID}
}

type ownerFolderStore struct {
	store   *Store
	ownerID string
}

func (s *ownerFolderStore) OwnerID() string {
	return s.ownerID
}

func (s *ownerFolderStore) Create(ctx context.Context, folder *models.Folder) error {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := s.checkParentLocked(folder.ParentID); err != nil {
		return err
	}
	if existing := s.siblingLocked(folder.ParentID, folder.Name, ""); existing != nil {
		return domain.NewDuplicateNameError(existing.ID)
	}

	now := st.now()
	folder.ID = uuid.NewString()
	folder.OwnerID = s.ownerID
	folder.ParentID = cloneString(folder.ParentID)
	folder.CreatedAt = now
	folder.UpdatedAt = now

	st.recordFolderLocked(ctx, folder.ID)
	st.seq++
	st.folders[folder.ID] = folderRecord{folder: *folder, seq: st.seq}
	return nil
}

func (s *ownerFolderStore) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	rec, ok := st.folders[id]
	if !ok || rec.folder.OwnerID != s.ownerID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f := rec.folder
	f.ParentID = cloneString(f.ParentID)
	return &f, nil
}

func (s *ownerFolderStore) Update(ctx context.Context, folder *models.Folder) error {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.folders[folder.ID]
	if !ok || rec.folder.OwnerID != s.ownerID {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	if err := s.checkParentLocked(folder.ParentID); err != nil {
		return err
	}
	if existing := s.siblingLocked(folder.ParentID, folder.Name, folder.ID); existing != nil {
		return domain.NewDuplicateNameError(existing.ID)
	}

	st.recordFolderLocked(ctx, folder.ID)
	rec.folder.ParentID = cloneString(folder.ParentID)
	rec.folder.Name = folder.Name
	rec.folder.Order = folder.Order
	rec.folder.UpdatedAt = st.now()
	st.folders[folder.ID] = rec

	folder.UpdatedAt = rec.folder.UpdatedAt
	return nil
}

func (s *ownerFolderStore) Delete(ctx context.Context, id string) error {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.folders[id]
	if !ok || rec.folder.OwnerID != s.ownerID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	for _, other := range st.folders {
		if other.folder.ParentID != nil && *other.folder.ParentID == id {
			return fmt.Errorf("folder %s still has subfolders: %w", id, domain.ErrConflict)
		}
	}
	st.recordFolderLocked(ctx, id)
	delete(st.folders, id)
	return nil
}

func (s *ownerFolderStore) List(ctx context.Context, search string) ([]models.Folder, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	needle := strings.ToLower(search)
	recs := make([]folderRecord, 0)
	for _, rec := range st.folders {
		if rec.folder.OwnerID != s.ownerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.folder.Name), needle) {
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.folder.Order != b.folder.Order {
			return a.folder.Order < b.folder.Order
		}
		if !a.folder.CreatedAt.Equal(b.folder.CreatedAt) {
			return a.folder.CreatedAt.Before(b.folder.CreatedAt)
		}
		return a.seq < b.seq
	})

	out := make([]models.Folder, len(recs))
	for i, rec := range recs {
		out[i] = rec.folder
		out[i].ParentID = cloneString(rec.folder.ParentID)
	}
	return out, nil
}

func (s *ownerFolderStore) Count(ctx context.Context) (int, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	n := 0
	for _, rec := range st.folders {
		if rec.folder.OwnerID == s.ownerID {
			n++
		}
	}
	return n, nil
}

func (s *ownerFolderStore) FindSiblingByName(ctx context.Context, parentID *string, name, excludeID string) (*models.Folder, error) {
	st := s.store
	st.mu.RLock()
	defer st.mu.RUnlock()

	if existing := s.siblingLocked(parentID, name, excludeID); existing != nil {
		f := *existing
		f.ParentID = cloneString(existing.ParentID)
		return &f, nil
	}
	return nil, nil
}

func (s *ownerFolderStore) ReparentChildren(ctx context.Context, folderID string, newParentID *string) (int64, error) {
	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	var moved []string
	for id, rec := range st.folders {
		if rec.folder.OwnerID != s.ownerID || rec.folder.ParentID == nil || *rec.folder.ParentID != folderID {
			continue
		}
		if existing := s.siblingLocked(newParentID, rec.folder.Name, id); existing != nil {
			return 0, domain.NewDuplicateNameError(existing.ID)
		}
		moved = append(moved, id)
	}

	now := st.now()
	for _, id := range moved {
		st.recordFolderLocked(ctx, id)
		rec := st.folders[id]
		rec.folder.ParentID = cloneString(newParentID)
		rec.folder.UpdatedAt = now
		st.folders[id] = rec
	}
	return int64(len(moved)), nil
}

// checkParentLocked mirrors the parent_id foreign key. Caller holds mu.
func (s *ownerFolderStore) checkParentLocked(parentID *string) error {
	if parentID == nil {
		return nil
	}
	rec, ok := s.store.folders[*parentID]
	if !ok || rec.folder.OwnerID != s.ownerID {
		return domain.NewParentNotFoundError(*parentID)
	}
	return nil
}

// siblingLocked mirrors the unique sibling-name index. Caller holds mu.
func (s *ownerFolderStore) siblingLocked(parentID *string, name, excludeID string) *models.Folder {
	key := foldertree.NameKey(name)
	for id, rec := range s.store.folders {
		if id == excludeID || rec.folder.OwnerID != s.ownerID || !sameParent(rec.folder.ParentID, parentID) {
			continue
		}
		if foldertree.NameKey(rec.folder.Name) == key {
			f := rec.folder
			return &f
		}
	}
	return nil
}
