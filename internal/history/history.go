// Package history records immutable snapshots of project state around
// phase transitions and other notable events. Snapshots are append-only;
// Restore returns a read-only view, it never mutates live sections.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"plume/internal/logging"
	"plume/internal/project"
	"plume/internal/services"
	"plume/internal/workflow"
)

// SectionSnapshot is the frozen state of one section at snapshot time.
type SectionSnapshot struct {
	SectionID   int64                  `json:"section_id"`
	Ordinal     int                    `json:"ordinal"`
	Title       string                 `json:"title"`
	Thesis      string                 `json:"thesis"`
	Guidance    string                 `json:"guidance"`
	Body        string                 `json:"body"`
	Citations   []project.Citation     `json:"citations,omitempty"`
	Suggestions *project.Suggestions   `json:"suggestions,omitempty"`
	Status      workflow.SectionStatus `json:"status"`
	Revision    int64                  `json:"revision"`
}

// Snapshot is the frozen state of a project's sections.
type Snapshot struct {
	ProjectID     string            `json:"project_id"`
	ProjectStatus string            `json:"project_status"`
	Sections      []SectionSnapshot `json:"sections"`
}

// VersionRecord is one stored snapshot with its metadata.
type VersionRecord struct {
	ID          string
	ProjectID   string
	SectionID   *int64
	Phase       workflow.Phase
	Description string
	CreatedAt   time.Time
}

// Manager persists and retrieves version records.
type Manager struct {
	db     *sql.DB
	store  *project.Store
	logger *slog.Logger
}

// NewManager wraps an open database handle and the project store it
// snapshots from.
func NewManager(store *project.Store, logger *slog.Logger) *Manager {
	return &Manager{
		db:     store.DB(),
		store:  store,
		logger: logging.NewComponentLogger(logger, "history"),
	}
}

// Record takes a snapshot of the project's current sections and stores it
// under the given phase and description. It returns the new record id.
func (m *Manager) Record(ctx context.Context, projectID string, phase workflow.Phase, description string) (string, error) {
	proj, err := m.store.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	sections, err := m.store.SectionsByProject(ctx, projectID)
	if err != nil {
		return "", err
	}

	snapshot := Snapshot{
		ProjectID:     projectID,
		ProjectStatus: string(proj.Status),
		Sections:      make([]SectionSnapshot, 0, len(sections)),
	}
	for _, section := range sections {
		snapshot.Sections = append(snapshot.Sections, SectionSnapshot{
			SectionID:   section.ID,
			Ordinal:     section.Ordinal,
			Title:       section.Title,
			Thesis:      section.Thesis,
			Guidance:    section.Guidance,
			Body:        section.Body,
			Citations:   section.Citations,
			Suggestions: section.Suggestions,
			Status:      section.Status,
			Revision:    section.Revision,
		})
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", services.Wrap(services.ErrInfrastructure, "history", "record", "encode snapshot", err)
	}

	id := uuid.NewString()
	_, err = m.db.ExecContext(
		ctx,
		`INSERT INTO version_records (id, project_id, phase, description, snapshot_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		projectID,
		string(phase),
		description,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", services.Wrap(services.ErrInfrastructure, "history", "record", "insert version record", err)
	}

	m.logger.Info("snapshot recorded",
		logging.String(logging.FieldProjectID, projectID),
		logging.String(logging.FieldPhase, string(phase)),
		logging.String("version_id", id),
		logging.Int("sections", len(snapshot.Sections)))
	return id, nil
}

// List returns a project's version records, newest first. A limit <= 0
// returns everything.
func (m *Manager) List(ctx context.Context, projectID string, limit int) ([]VersionRecord, error) {
	query := `SELECT id, project_id, section_id, phase, description, created_at
         FROM version_records WHERE project_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{projectID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "history", "list", "query version records", err)
	}
	defer rows.Close()

	var records []VersionRecord
	for rows.Next() {
		var (
			record     VersionRecord
			sectionID  sql.NullInt64
			phaseRaw   string
			createdRaw string
		)
		if err := rows.Scan(&record.ID, &record.ProjectID, &sectionID, &phaseRaw, &record.Description, &createdRaw); err != nil {
			return nil, services.Wrap(services.ErrInfrastructure, "history", "list", "scan version record", err)
		}
		if sectionID.Valid {
			value := sectionID.Int64
			record.SectionID = &value
		}
		record.Phase = workflow.Phase(phaseRaw)
		if created, err := parseTime(createdRaw); err == nil {
			record.CreatedAt = created
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Load returns the stored snapshot for a version record. The caller decides
// what to do with it; nothing is written back.
func (m *Manager) Load(ctx context.Context, versionID string) (*Snapshot, error) {
	row := m.db.QueryRowContext(
		ctx,
		`SELECT snapshot_json FROM version_records WHERE id = ?`,
		versionID,
	)
	var payload string
	if err := row.Scan(&payload); errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "history", "load", fmt.Sprintf("version %s", versionID), nil)
	} else if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "history", "load", "query snapshot", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "history", "load", "decode snapshot", err)
	}
	return &snapshot, nil
}

// Restore reconstructs one section as it stood in the snapshot. The result
// is a preview: nothing is written back, and the caller must reload the live
// section and carry its current revision into an explicit UpsertSection for
// the restore to take effect.
func (m *Manager) Restore(ctx context.Context, versionID string, sectionID int64) (*project.Section, error) {
	snapshot, err := m.Load(ctx, versionID)
	if err != nil {
		return nil, err
	}
	for _, frozen := range snapshot.Sections {
		if frozen.SectionID != sectionID {
			continue
		}
		return &project.Section{
			ID:          frozen.SectionID,
			ProjectID:   snapshot.ProjectID,
			Ordinal:     frozen.Ordinal,
			Title:       frozen.Title,
			Thesis:      frozen.Thesis,
			Guidance:    frozen.Guidance,
			Body:        frozen.Body,
			Citations:   frozen.Citations,
			Suggestions: frozen.Suggestions,
			Status:      frozen.Status,
			Revision:    frozen.Revision,
		}, nil
	}
	return nil, services.Wrap(services.ErrNotFound, "history", "restore",
		fmt.Sprintf("section %d not in version %s", sectionID, versionID), nil)
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
