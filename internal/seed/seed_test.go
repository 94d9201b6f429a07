package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/repository/memory"
	"noteshelf/internal/service"
)

func newSeeder(maxDepth int) (*Seeder, *memory.Store) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	folders := service.NewFolderService(
		store.Folders(),
		store.Notes(),
		store.Transactions(),
		service.NewHierarchyValidator(maxDepth),
		logger,
	)
	return NewSeeder(folders, store.Notes(), logger), store
}

func TestLoadFixture(t *testing.T) {
	fixture, err := LoadFixture("demo")
	require.NoError(t, err)
	require.NotEmpty(t, fixture.Folders)
	assert.Equal(t, "CS101", fixture.Folders[0].Name)
	assert.Len(t, fixture.Folders[0].Children, 2)
	assert.NotEmpty(t, fixture.Uncategorized)

	_, err = LoadFixture("missing")
	assert.Error(t, err)
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	seeder, store := newSeeder(2)

	fixture, err := LoadFixture("demo")
	require.NoError(t, err)

	result, err := seeder.Seed(ctx, "demo-user", fixture)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Folders)
	assert.Equal(t, 7, result.Notes)

	folders, err := store.Folders().ForOwner("demo-user").List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, folders, 6)

	loose, err := store.Notes().ForOwner("demo-user").List(ctx, models.NoteListOptions{
		Folder: models.NoteFolderFilter{IncludeUncategorized: true},
	})
	require.NoError(t, err)
	assert.Len(t, loose, 2)

	// Seeded data is scoped to its owner
	others, err := store.Folders().ForOwner("someone-else").List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestSeedRejectsInvalidFixture(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "too deep",
			yaml: `
folders:
  - name: A
    children:
      - name: B
        children:
          - name: C
`,
			wantErr: domain.ErrDepthExceeded,
		},
		{
			name: "duplicate siblings",
			yaml: `
folders:
  - name: Notes
  - name: notes
`,
			wantErr: domain.ErrDuplicateName,
		},
		{
			name: "blank name",
			yaml: `
folders:
  - name: "  "
`,
			wantErr: domain.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder, _ := newSeeder(2)
			fixture, err := ParseFixture([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = seeder.Seed(ctx, "u1", fixture)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseFixture_Malformed(t *testing.T) {
	_, err := ParseFixture([]byte("folders: [unterminated"))
	assert.Error(t, err)
}
