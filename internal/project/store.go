package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"plume/internal/logging"
	"plume/internal/services"
	"plume/internal/workflow"
)

// Store manages project and section persistence backed by SQLite. All writes
// to sections go through UpsertSection or ReorderSections so the revision
// check and the ordinal invariant hold no matter who the caller is.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logging.NewComponentLogger(logger, "project")}
}

// DB exposes the underlying handle for sibling stores sharing the database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateProject validates inputs and persists a new project with status
// draft and zero sections.
func (s *Store) CreateProject(ctx context.Context, ownerID, title, docType, style, discipline string) (*Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "create", "title must not be empty", nil)
	}
	parsedType, ok := ParseDocumentType(docType)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "project", "create",
			fmt.Sprintf("unrecognized document type %q", docType), nil)
	}
	parsedStyle, ok := ParseStyle(style)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "project", "create",
			fmt.Sprintf("unrecognized style %q", style), nil)
	}
	parsedDiscipline, ok := ParseDiscipline(discipline)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "project", "create",
			fmt.Sprintf("unrecognized discipline %q", discipline), nil)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO projects (id, owner_id, title, doc_type, discipline, style, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(ownerID),
		title,
		string(parsedType),
		string(parsedDiscipline),
		string(parsedStyle),
		string(workflow.ProjectDraft),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "create", "insert project", err)
	}

	s.logger.Info("project created",
		logging.String(logging.FieldProjectID, id),
		logging.String("title", title),
		logging.String("style", string(parsedStyle)))

	return s.GetProject(ctx, id)
}

// GetProject fetches a project by identifier. Soft-deleted projects report
// not found, matching the behavior for unknown ids.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	proj, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "project", "get", fmt.Sprintf("project %s", id), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "get", "query project", err)
	}
	if proj.Deleted() {
		return nil, services.Wrap(services.ErrNotFound, "project", "get", fmt.Sprintf("project %s is deleted", id), nil)
	}
	return proj, nil
}

// ListProjects returns all live projects, optionally filtered by owner,
// ordered by creation time.
func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE deleted_at IS NULL`
	args := []any{}
	if strings.TrimSpace(ownerID) != "" {
		query += ` AND owner_id = ?`
		args = append(args, strings.TrimSpace(ownerID))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "list", "query projects", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrInfrastructure, "project", "list", "scan project", err)
		}
		projects = append(projects, proj)
	}
	return projects, rows.Err()
}

// UpdateProjectStatus persists a new overall status for the project.
func (s *Store) UpdateProjectStatus(ctx context.Context, id string, status workflow.ProjectStatus) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		string(status),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "update status", "update project", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "update status", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "project", "update status", fmt.Sprintf("project %s", id), nil)
	}
	return nil
}

// DeleteProject soft-deletes a project so its history stays valid. Sections
// are retained; they become unreachable through the live queries.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE projects SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "delete", "soft delete project", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "delete", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "project", "delete", fmt.Sprintf("project %s", id), nil)
	}
	s.logger.Info("project soft-deleted", logging.String(logging.FieldProjectID, id))
	return nil
}

// RecordTransition appends one entry to the project's phase transition log.
func (s *Store) RecordTransition(ctx context.Context, projectID string, from, to workflow.Phase, sectionsMoved int) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO project_transitions (project_id, from_phase, to_phase, sections_moved, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		projectID,
		string(from),
		string(to),
		sectionsMoved,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "record transition", "insert transition", err)
	}
	return nil
}

// ListTransitions returns the transition log for a project in insertion order.
func (s *Store) ListTransitions(ctx context.Context, projectID string) ([]Transition, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, project_id, from_phase, to_phase, sections_moved, created_at
         FROM project_transitions WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "list transitions", "query transitions", err)
	}
	defer rows.Close()

	var transitions []Transition
	for rows.Next() {
		var (
			tr         Transition
			fromRaw    string
			toRaw      string
			createdRaw string
		)
		if err := rows.Scan(&tr.ID, &tr.ProjectID, &fromRaw, &toRaw, &tr.SectionsMoved, &createdRaw); err != nil {
			return nil, services.Wrap(services.ErrInfrastructure, "project", "list transitions", "scan transition", err)
		}
		tr.FromPhase = workflow.Phase(fromRaw)
		tr.ToPhase = workflow.Phase(toRaw)
		if created, err := parseTimeString(createdRaw); err == nil {
			tr.CreatedAt = created
		}
		transitions = append(transitions, tr)
	}
	return transitions, rows.Err()
}
