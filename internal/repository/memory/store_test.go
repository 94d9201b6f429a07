package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
)

func TestFolderStoreConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := store.Folders().ForOwner("u1")

	root := &models.Folder{Name: "Notes"}
	require.NoError(t, folders.Create(ctx, root))
	assert.NotEmpty(t, root.ID)
	assert.Equal(t, "u1", root.OwnerID)

	t.Run("sibling names are unique ignoring case", func(t *testing.T) {
		err := folders.Create(ctx, &models.Folder{Name: "NOTES"})
		assert.ErrorIs(t, err, domain.ErrDuplicateName)
	})

	t.Run("same name under another parent is fine", func(t *testing.T) {
		assert.NoError(t, folders.Create(ctx, &models.Folder{Name: "notes", ParentID: &root.ID}))
	})

	t.Run("parent must exist for this owner", func(t *testing.T) {
		missing := "nope"
		assert.ErrorIs(t, folders.Create(ctx, &models.Folder{Name: "X", ParentID: &missing}), domain.ErrParentNotFound)

		other := store.Folders().ForOwner("u2")
		assert.ErrorIs(t, other.Create(ctx, &models.Folder{Name: "X", ParentID: &root.ID}), domain.ErrParentNotFound)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		other := store.Folders().ForOwner("u2")
		_, err := other.GetByID(ctx, root.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, other.Create(ctx, &models.Folder{Name: "Notes"}))

		n, err := other.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("returned folders are copies", func(t *testing.T) {
		got, err := folders.GetByID(ctx, root.ID)
		require.NoError(t, err)
		got.Name = "changed"
		again, err := folders.GetByID(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, "Notes", again.Name)
	})

	t.Run("parent with children cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, folders.Delete(ctx, root.ID), domain.ErrConflict)
	})
}

func TestReparentChildren(t *testing.T) {
	ctx := context.Background()
	folders := NewStore().Folders().ForOwner("u1")

	parent := &models.Folder{Name: "Parent"}
	require.NoError(t, folders.Create(ctx, parent))
	for _, name := range []string{"A", "B"} {
		require.NoError(t, folders.Create(ctx, &models.Folder{Name: name, ParentID: &parent.ID}))
	}

	moved, err := folders.ReparentChildren(ctx, parent.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, moved)

	sibling, err := folders.FindSiblingByName(ctx, nil, "a", "")
	require.NoError(t, err)
	require.NotNil(t, sibling)
	assert.Equal(t, "A", sibling.Name)

	require.NoError(t, folders.Delete(ctx, parent.ID))
}

func TestExecTx(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := store.Transactions()
	folders := store.Folders().ForOwner("u1")

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, folders.Create(ctx, &models.Folder{Name: "Rolled back"}))
		// Nested calls join the outer transaction
		return tm.ExecTx(ctx, func(ctx context.Context) error {
			require.NoError(t, folders.Create(ctx, &models.Folder{Name: "Also rolled back"}))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	n, err := folders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, tm.ExecTx(ctx, func(ctx context.Context) error {
		return folders.Create(ctx, &models.Folder{Name: "Kept"})
	}))
	n, err = folders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecTx_RollbackKeepsOtherWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := store.Transactions()
	u1 := store.Folders().ForOwner("u1")
	u2 := store.Folders().ForOwner("u2")
	notes := store.Notes().ForOwner("u1")

	parent := &models.Folder{Name: "CS101"}
	require.NoError(t, u1.Create(ctx, parent))
	child := &models.Folder{Name: "Midterm", ParentID: &parent.ID}
	require.NoError(t, u1.Create(ctx, child))
	note := &models.Note{Title: "Syllabus", FolderID: &parent.ID}
	require.NoError(t, notes.Create(ctx, note))

	var outside *models.Folder
	boom := errors.New("connection reset")
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		_, err := u1.ReparentChildren(txCtx, parent.ID, nil)
		require.NoError(t, err)
		_, err = notes.ClearFolder(txCtx, parent.ID)
		require.NoError(t, err)
		require.NoError(t, u1.Delete(txCtx, parent.ID))

		// A concurrent request commits while the transaction is open
		outside = &models.Folder{Name: "Other owner"}
		require.NoError(t, u2.Create(ctx, outside))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = u2.GetByID(ctx, outside.ID)
	assert.NoError(t, err, "write outside the transaction must survive the rollback")

	_, err = u1.GetByID(ctx, parent.ID)
	assert.NoError(t, err)
	gotChild, err := u1.GetByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, gotChild.ParentID)
	assert.Equal(t, parent.ID, *gotChild.ParentID)
	gotNote, err := notes.GetByID(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, gotNote.FolderID)
	assert.Equal(t, parent.ID, *gotNote.FolderID)
}

func TestNoteStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := store.Folders().ForOwner("u1")
	notes := store.Notes().ForOwner("u1")

	f := &models.Folder{Name: "CS101"}
	require.NoError(t, folders.Create(ctx, f))

	inFolder := &models.Note{Title: "Syllabus", FolderID: &f.ID}
	loose := &models.Note{Title: "Loose", OriginalName: "scan.JPG"}
	require.NoError(t, notes.Create(ctx, inFolder))
	require.NoError(t, notes.Create(ctx, loose))

	got, err := notes.List(ctx, models.NoteListOptions{Folder: models.NoteFolderFilter{FolderIDs: []string{f.ID}}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inFolder.ID, got[0].ID)

	got, err = notes.List(ctx, models.NoteListOptions{Search: "scan.jpg"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, loose.ID, got[0].ID)

	cleared, err := notes.ClearFolder(ctx, f.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)

	got, err = notes.List(ctx, models.NoteListOptions{Folder: models.NoteFolderFilter{IncludeUncategorized: true}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = store.Notes().ForOwner("u2").GetByID(ctx, loose.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
