package seed

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"noteshelf/internal/domain/models"
	"noteshelf/internal/domain/repositories"
	"noteshelf/internal/domain/services"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture is a folder forest plus notes, as written in a fixture file
type Fixture struct {
	Folders       []FolderFixture `yaml:"folders"`
	Uncategorized []NoteFixture   `yaml:"uncategorized"`
}

type FolderFixture struct {
	Name     string          `yaml:"name"`
	Notes    []NoteFixture   `yaml:"notes"`
	Children []FolderFixture `yaml:"children"`
}

type NoteFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	FileName    string `yaml:"file_name"`
	MimeType    string `yaml:"mime_type"`
}

// Result counts what a Seed call created
type Result struct {
	Folders int
	Notes   int
}

// LoadFixture reads an embedded fixture by name (without extension)
func LoadFixture(name string) (*Fixture, error) {
	filename := fmt.Sprintf("fixtures/%s.yaml", name)
	data, err := fixtureFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixture: %w", err)
	}
	return &fixture, nil
}

// Seeder loads fixtures for one owner. Folders go through the folder service,
// so fixture data obeys the same name, depth and uniqueness rules as the API.
type Seeder struct {
	folders services.FolderService
	notes   repositories.NoteRepository
	logger  *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(folders services.FolderService, notes repositories.NoteRepository, logger *slog.Logger) *Seeder {
	return &Seeder{
		folders: folders,
		notes:   notes,
		logger:  logger,
	}
}

// Seed creates every folder and note of fixture for ownerID. It stops at the
// first rejected folder.
func (s *Seeder) Seed(ctx context.Context, ownerID string, fixture *Fixture) (*Result, error) {
	result := &Result{}

	for _, f := range fixture.Folders {
		if err := s.seedFolder(ctx, ownerID, nil, f, result); err != nil {
			return result, err
		}
	}

	for _, n := range fixture.Uncategorized {
		if err := s.seedNote(ctx, ownerID, nil, n); err != nil {
			return result, err
		}
		result.Notes++
	}

	s.logger.Info("seed complete",
		"owner_id", ownerID,
		"folders", result.Folders,
		"notes", result.Notes,
	)

	return result, nil
}

func (s *Seeder) seedFolder(ctx context.Context, ownerID string, parentID *string, f FolderFixture, result *Result) error {
	folder, err := s.folders.CreateFolder(ctx, ownerID, &services.CreateFolderRequest{
		Name:     f.Name,
		ParentID: parentID,
	})
	if err != nil {
		return fmt.Errorf("seed folder %q: %w", f.Name, err)
	}
	result.Folders++

	for _, n := range f.Notes {
		if err := s.seedNote(ctx, ownerID, &folder.ID, n); err != nil {
			return err
		}
		result.Notes++
	}

	for _, child := range f.Children {
		if err := s.seedFolder(ctx, ownerID, &folder.ID, child, result); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedNote(ctx context.Context, ownerID string, folderID *string, n NoteFixture) error {
	note := &models.Note{
		FolderID:     folderID,
		Title:        n.Title,
		Description:  n.Description,
		FileName:     n.FileName,
		OriginalName: n.FileName,
		MimeType:     n.MimeType,
	}
	if err := s.notes.ForOwner(ownerID).Create(ctx, note); err != nil {
		return fmt.Errorf("seed note %q: %w", n.Title, err)
	}
	return nil
}
