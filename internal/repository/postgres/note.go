package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
)

const noteColumns = `id, owner_id, folder_id, title, description, file_name, file_url,
	original_name, mime_type, size, is_public, listed_on_explore, created_at, updated_at`

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ForOwner returns a store whose every query is constrained to ownerID
func (r *PostgresNoteRepository) ForOwner(ownerID string) repositories.OwnerNoteStore {
	return &ownerNoteStore{repo: r, ownerID: ownerID}
}

type ownerNoteStore struct {
	repo    *PostgresNoteRepository
	ownerID string
}

func (s *ownerNoteStore) exec(ctx context.Context) repositories.DBTX {
	return GetExecutor(ctx, s.repo.pool)
}

// List returns the owner's notes matching opts, newest update first
func (s *ownerNoteStore) List(ctx context.Context, opts models.NoteListOptions) ([]models.Note, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{s.ownerID}

	if !opts.Folder.Unfiltered() {
		var folderConds []string
		if len(opts.Folder.FolderIDs) > 0 {
			args = append(args, opts.Folder.FolderIDs)
			folderConds = append(folderConds, fmt.Sprintf("folder_id::text = ANY($%d::text[])", len(args)))
		}
		if opts.Folder.IncludeUncategorized {
			folderConds = append(folderConds, "folder_id IS NULL")
		}
		conditions = append(conditions, "("+strings.Join(folderConds, " OR ")+")")
	}

	if opts.Search != "" {
		args = append(args, opts.Search)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(strpos(lower(title), lower($%[1]d)) > 0 OR strpos(lower(description), lower($%[1]d)) > 0 OR strpos(lower(original_name), lower($%[1]d)) > 0)",
			n,
		))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY updated_at DESC, id ASC
	`, noteColumns, s.repo.tables.Notes, strings.Join(conditions, " AND "))

	rows, err := s.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// GetByID retrieves a note by ID
func (s *ownerNoteStore) GetByID(ctx context.Context, id string) (*models.Note, error) {
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, noteColumns, s.repo.tables.Notes)

	note, err := scanNote(s.exec(ctx).QueryRow(ctx, query, id, s.ownerID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// SetFolder places a note in folderID (nil = Uncategorized)
func (s *ownerNoteStore) SetFolder(ctx context.Context, noteID string, folderID *string) (*models.Note, error) {
	if uuid.Validate(noteID) != nil {
		return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING %s
	`, s.repo.tables.Notes, noteColumns)

	note, err := scanNote(s.exec(ctx).QueryRow(ctx, query, folderID, time.Now(), noteID, s.ownerID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
		}
		if IsPgForeignKeyError(err) && folderID != nil {
			return nil, domain.NewFolderNotFoundError(*folderID)
		}
		return nil, fmt.Errorf("set note folder: %w", err)
	}
	return note, nil
}

// ClearFolder moves every note in folderID to Uncategorized
func (s *ownerNoteStore) ClearFolder(ctx context.Context, folderID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL
		WHERE folder_id = $1 AND owner_id = $2
	`, s.repo.tables.Notes)

	result, err := s.exec(ctx).Exec(ctx, query, folderID, s.ownerID)
	if err != nil {
		return 0, fmt.Errorf("clear note folder: %w", err)
	}
	return result.RowsAffected(), nil
}

// Create inserts a note. Used by the seed command only; note upload is
// handled by a separate service.
func (s *ownerNoteStore) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, folder_id, title, description, file_name, file_url,
			original_name, mime_type, size, is_public, listed_on_explore, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id, created_at, updated_at
	`, s.repo.tables.Notes)

	err := s.exec(ctx).QueryRow(ctx, query,
		s.ownerID,
		note.FolderID,
		note.Title,
		note.Description,
		note.FileName,
		note.FileURL,
		note.OriginalName,
		note.MimeType,
		note.Size,
		note.IsPublic,
		note.ListedOnExplore,
		time.Now(),
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) && note.FolderID != nil {
			return domain.NewFolderNotFoundError(*note.FolderID)
		}
		return fmt.Errorf("create note: %w", err)
	}

	note.OwnerID = s.ownerID
	return nil
}

func scanNote(row pgx.Row) (*models.Note, error) {
	var note models.Note
	err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.FolderID,
		&note.Title,
		&note.Description,
		&note.FileName,
		&note.FileURL,
		&note.OriginalName,
		&note.MimeType,
		&note.Size,
		&note.IsPublic,
		&note.ListedOnExplore,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &note, nil
}
