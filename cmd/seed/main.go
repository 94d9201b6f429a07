package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"noteshelf/internal/config"
	"noteshelf/internal/repository/postgres"
	"noteshelf/internal/seed"
	"noteshelf/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	ownerID := flag.String("owner", "demo-user", "Owner id (JWT subject) that receives the seed data")
	fixtureName := flag.String("fixture", "demo", "Embedded fixture to load")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	if err := run(cfg, *dropTables, *schemaOnly, *ownerID, *fixtureName); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, dropTables, schemaOnly bool, ownerID, fixtureName string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropSchema(ctx, repoConfig); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, repoConfig); err != nil {
		return fmt.Errorf("run schema: %w", err)
	}
	log.Println("Schema ready")

	if schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return nil
	}

	fixture, err := seed.LoadFixture(fixtureName)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	log.Printf("Clearing existing folders and notes for %s...", ownerID)
	if err := clearOwnerData(ctx, repoConfig, ownerID); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}

	folderRepo := postgres.NewFolderRepository(repoConfig)
	noteRepo := postgres.NewNoteRepository(repoConfig)
	folderService := service.NewFolderService(
		folderRepo,
		noteRepo,
		postgres.NewTransactionManager(repoConfig),
		service.NewHierarchyValidator(cfg.MaxFolderDepth),
		logger,
	)

	result, err := seed.NewSeeder(folderService, noteRepo, logger).Seed(ctx, ownerID, fixture)
	if err != nil {
		return fmt.Errorf("seeding failed after %d folders and %d notes: %w", result.Folders, result.Notes, err)
	}

	log.Printf("Seeding complete: %d folders, %d notes", result.Folders, result.Notes)
	return nil
}

// clearOwnerData removes an owner's notes and folders. Folders go in one
// statement so parent references are only checked once all rows are gone.
func clearOwnerData(ctx context.Context, config *postgres.RepositoryConfig, ownerID string) error {
	if _, err := config.Pool.Exec(ctx, "DELETE FROM "+config.Tables.Notes+" WHERE owner_id = $1", ownerID); err != nil {
		return err
	}
	if _, err := config.Pool.Exec(ctx, "DELETE FROM "+config.Tables.Folders+" WHERE owner_id = $1", ownerID); err != nil {
		return err
	}
	return nil
}
