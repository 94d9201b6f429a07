package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
	"noteshelf/internal/foldertree"
)

const folderColumns = `id, owner_id, parent_id, name, sort_order, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ForOwner returns a store whose every query is constrained to ownerID
func (r *PostgresFolderRepository) ForOwner(ownerID string) repositories.OwnerFolderStore {
	return &ownerFolderStore{repo: r, ownerID: ownerID}
}

type ownerFolderStore struct {
	repo    *PostgresFolderRepository
	ownerID string
}

func (s *ownerFolderStore) OwnerID() string {
	return s.ownerID
}

func (s *ownerFolderStore) exec(ctx context.Context) repositories.DBTX {
	return GetExecutor(ctx, s.repo.pool)
}

// Create inserts a folder
func (s *ownerFolderStore) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, parent_id, name, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`, s.repo.tables.Folders)

	err := s.exec(ctx).QueryRow(ctx, query,
		s.ownerID,
		folder.ParentID,
		folder.Name,
		folder.Order,
		time.Now(),
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		return s.mapWriteError(ctx, folder, err, "create folder")
	}

	folder.OwnerID = s.ownerID
	return nil
}

// GetByID retrieves a folder by ID
func (s *ownerFolderStore) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	// Non-uuid ids cannot exist; avoid a driver encode error
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, folderColumns, s.repo.tables.Folders)

	folder, err := scanFolder(s.exec(ctx).QueryRow(ctx, query, id, s.ownerID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update persists name, parent and order
func (s *ownerFolderStore) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, sort_order = $3, updated_at = $4
		WHERE id = $5 AND owner_id = $6
		RETURNING updated_at
	`, s.repo.tables.Folders)

	err := s.exec(ctx).QueryRow(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Order,
		time.Now(),
		folder.ID,
		s.ownerID,
	).Scan(&folder.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return s.mapWriteError(ctx, folder, err, "update folder")
	}

	return nil
}

// Delete removes a folder record
func (s *ownerFolderStore) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, s.repo.tables.Folders)

	result, err := s.exec(ctx).Exec(ctx, query, id, s.ownerID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s still has subfolders: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns the owner's folders in persisted order
func (s *ownerFolderStore) List(ctx context.Context, search string) ([]models.Folder, error) {
	// strpos keeps the search literal: % and _ are not wildcards
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		  AND ($2 = '' OR strpos(lower(name), lower($2)) > 0)
		ORDER BY sort_order ASC, created_at ASC
	`, folderColumns, s.repo.tables.Folders)

	rows, err := s.exec(ctx).Query(ctx, query, s.ownerID, search)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return collectFolders(rows)
}

// Count returns how many folders the owner has
func (s *ownerFolderStore) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE owner_id = $1`, s.repo.tables.Folders)

	var n int
	if err := s.exec(ctx).QueryRow(ctx, query, s.ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return n, nil
}

// FindSiblingByName loads the siblings under parentID and compares folded
// names, so the rule matches the in-memory store exactly. The unique index
// on lower(name) backs it up against concurrent writers.
func (s *ownerFolderStore) FindSiblingByName(ctx context.Context, parentID *string, name, excludeID string) (*models.Folder, error) {
	var (
		query string
		args  []interface{}
	)

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND parent_id IS NULL
		`, folderColumns, s.repo.tables.Folders)
		args = append(args, s.ownerID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND parent_id = $2
		`, folderColumns, s.repo.tables.Folders)
		args = append(args, s.ownerID, *parentID)
	}

	rows, err := s.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find sibling by name: %w", err)
	}
	siblings, err := collectFolders(rows)
	if err != nil {
		return nil, err
	}

	key := foldertree.NameKey(name)
	for i := range siblings {
		if siblings[i].ID != excludeID && foldertree.NameKey(siblings[i].Name) == key {
			return &siblings[i], nil
		}
	}
	return nil, nil
}

// ReparentChildren moves every child of folderID to newParentID
func (s *ownerFolderStore) ReparentChildren(ctx context.Context, folderID string, newParentID *string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, updated_at = $2
		WHERE parent_id = $3 AND owner_id = $4
	`, s.repo.tables.Folders)

	result, err := s.exec(ctx).Exec(ctx, query, newParentID, time.Now(), folderID, s.ownerID)
	if err != nil {
		if IsPgDuplicateError(err) {
			return 0, domain.NewDuplicateNameError("")
		}
		return 0, fmt.Errorf("reparent children: %w", err)
	}
	return result.RowsAffected(), nil
}

// mapWriteError turns constraint violations from insert/update into folder errors
func (s *ownerFolderStore) mapWriteError(ctx context.Context, folder *models.Folder, err error, op string) error {
	switch {
	case IsPgDuplicateError(err) && pgConstraintName(err) == s.repo.tables.siblingIndexName():
		existingID := ""
		if existing, findErr := s.FindSiblingByName(ctx, folder.ParentID, folder.Name, folder.ID); findErr == nil && existing != nil {
			existingID = existing.ID
		}
		return domain.NewDuplicateNameError(existingID)
	case IsPgForeignKeyError(err) && folder.ParentID != nil:
		return domain.NewParentNotFoundError(*folder.ParentID)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&folder.Order,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
