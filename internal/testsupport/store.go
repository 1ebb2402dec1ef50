package testsupport

import (
	"context"
	"database/sql"
	"testing"

	"plume/internal/config"
	"plume/internal/logging"
	"plume/internal/project"
	"plume/internal/storage"
)

// MustOpenDB opens the project database for tests and registers cleanup.
func MustOpenDB(t testing.TB, cfg *config.Config) *sql.DB {
	t.Helper()

	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// MustOpenStore opens a project.Store backed by a fresh database.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	return project.NewStore(MustOpenDB(t, cfg), logging.NewNop())
}

// NewProject creates a project for tests using the provided store.
func NewProject(t testing.TB, store *project.Store, title string) *project.Project {
	t.Helper()

	proj, err := store.CreateProject(context.Background(), "tester", title, "article", "Standard", "Informatique")
	if err != nil {
		t.Fatalf("store.CreateProject: %v", err)
	}
	return proj
}

// NewSection appends a section to the project for tests.
func NewSection(t testing.TB, store *project.Store, projectID, title string) *project.Section {
	t.Helper()

	section, err := store.AddSection(context.Background(), projectID, title, "thesis", "guidance")
	if err != nil {
		t.Fatalf("store.AddSection: %v", err)
	}
	return section
}
