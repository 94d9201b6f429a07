// Package memory is an in-process implementation of the repository
// interfaces. It backs STORE_BACKEND=memory and the service and handler
// tests. State is lost when the process exits.
package memory

import (
	"context"
	"sync"
	"time"

	"noteshelf/internal/domain/models"
)

type folderRecord struct {
	folder models.Folder
	seq    uint64 // insertion order, breaks created_at ties
}

// Store holds folders and notes for every owner.
type Store struct {
	mu      sync.RWMutex
	folders map[string]folderRecord
	notes   map[string]models.Note
	seq     uint64

	// txMu serialises ExecTx. Rollback undoes only the transaction's own
	// writes, so writers outside a transaction never take it.
	txMu sync.Mutex

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		folders: make(map[string]folderRecord),
		notes:   make(map[string]models.Note),
		now:     time.Now,
	}
}

// Folders returns the FolderRepository view of the store.
func (s *Store) Folders() *FolderRepository {
	return &FolderRepository{store: s}
}

// Notes returns the NoteRepository view of the store.
func (s *Store) Notes() *NoteRepository {
	return &NoteRepository{store: s}
}

// Transactions returns a TransactionManager over the store.
func (s *Store) Transactions() *TransactionManager {
	return &TransactionManager{store: s}
}

// undoLog records how to revert each write made inside ExecTx. Entries are
// appended and replayed with mu held.
type undoLog struct {
	entries []func(*Store)
}

func undoLogFrom(ctx context.Context) *undoLog {
	log, _ := ctx.Value(txContextKey{}).(*undoLog)
	return log
}

// rollback replays the log newest first.
func (s *Store) rollback(log *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(log.entries) - 1; i >= 0; i-- {
		log.entries[i](s)
	}
}

// recordFolderLocked saves the current state of folder id so a rollback of
// the transaction in ctx can put it back. Caller holds mu.
func (s *Store) recordFolderLocked(ctx context.Context, id string) {
	log := undoLogFrom(ctx)
	if log == nil {
		return
	}
	prev, existed := s.folders[id]
	log.entries = append(log.entries, func(st *Store) {
		if existed {
			st.folders[id] = prev
		} else {
			delete(st.folders, id)
		}
	})
}

// recordNoteLocked is recordFolderLocked for notes. Caller holds mu.
func (s *Store) recordNoteLocked(ctx context.Context, id string) {
	log := undoLogFrom(ctx)
	if log == nil {
		return
	}
	prev, existed := s.notes[id]
	log.entries = append(log.entries, func(st *Store) {
		if existed {
			st.notes[id] = prev
		} else {
			delete(st.notes, id)
		}
	})
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
