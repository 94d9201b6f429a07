package postgres

import (
	"context"
	"fmt"
)

// siblingIndexName is the unique index behind case-insensitive sibling names.
// The zero uuid stands in for NULL so root folders collide with each other.
func (t *TableNames) siblingIndexName() string {
	return t.Folders + "_owner_parent_name_key"
}

// EnsureSchema creates the folder and note tables if they do not exist.
func EnsureSchema(ctx context.Context, config *RepositoryConfig) error {
	t := config.Tables
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				owner_id    TEXT NOT NULL,
				parent_id   UUID REFERENCES %[1]s (id),
				name        VARCHAR(255) NOT NULL CHECK (btrim(name) <> ''),
				sort_order  INTEGER NOT NULL DEFAULT 0,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				CHECK (parent_id IS NULL OR parent_id <> id)
			)`, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_owner_idx ON %[1]s (owner_id)`, t.Folders),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (
				owner_id,
				COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid),
				lower(name)
			)`, t.siblingIndexName(), t.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				owner_id           TEXT NOT NULL,
				folder_id          UUID REFERENCES %[2]s (id) ON DELETE SET NULL,
				title              TEXT NOT NULL,
				description        TEXT NOT NULL DEFAULT '',
				file_name          TEXT NOT NULL DEFAULT '',
				file_url           TEXT,
				original_name      TEXT NOT NULL DEFAULT '',
				mime_type          TEXT NOT NULL DEFAULT '',
				size               BIGINT,
				is_public          BOOLEAN NOT NULL DEFAULT false,
				listed_on_explore  BOOLEAN NOT NULL DEFAULT false,
				created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, t.Notes, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_owner_folder_idx ON %[1]s (owner_id, folder_id)`, t.Notes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_owner_updated_idx ON %[1]s (owner_id, updated_at DESC)`, t.Notes),
	}

	for _, stmt := range statements {
		if _, err := config.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the folder and note tables for the configured prefix.
func DropSchema(ctx context.Context, config *RepositoryConfig) error {
	query := fmt.Sprintf(`
		DROP TABLE IF EXISTS %s CASCADE;
		DROP TABLE IF EXISTS %s CASCADE;
	`, config.Tables.Notes, config.Tables.Folders)

	// Multiple statements need the simple protocol
	conn, err := config.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Conn().PgConn().Exec(ctx, query).ReadAll(); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
