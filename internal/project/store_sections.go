package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"plume/internal/logging"
	"plume/internal/services"
	"plume/internal/workflow"
)

// AddSection appends a new section at the end of the project's order with
// status outlining and revision 1.
func (s *Store) AddSection(ctx context.Context, projectID, title, thesis, guidance string) (*Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "add section", "title must not be empty", nil)
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var ordinal int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sections WHERE project_id = ?`, projectID)
	if err := row.Scan(&ordinal); err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "add section", "count sections", err)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sections (project_id, ordinal, title, thesis, guidance, status, revision, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		projectID,
		ordinal,
		title,
		strings.TrimSpace(thesis),
		strings.TrimSpace(guidance),
		string(workflow.SectionOutlining),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "add section", "insert section", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "add section", "last insert id", err)
	}

	s.logger.Info("section added",
		logging.String(logging.FieldProjectID, projectID),
		logging.Int64(logging.FieldSectionID, id),
		logging.Int("ordinal", ordinal))

	return s.GetSection(ctx, id)
}

// GetSection fetches a section by identifier.
func (s *Store) GetSection(ctx context.Context, id int64) (*Section, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	section, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "project", "get section", fmt.Sprintf("section %d", id), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "get section", "query section", err)
	}
	return section, nil
}

// SectionsByProject returns all sections of a project in ordinal order.
func (s *Store) SectionsByProject(ctx context.Context, projectID string) ([]*Section, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "list sections", "query sections", err)
	}
	defer rows.Close()

	var sections []*Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrInfrastructure, "project", "list sections", "scan section", err)
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

// SectionsForPhase returns the project's sections whose status sits inside
// the given phase, between its entry and completed statuses, in ordinal
// order.
func (s *Store) SectionsForPhase(ctx context.Context, projectID string, phase workflow.Phase) ([]*Section, error) {
	sections, err := s.SectionsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	entry := phase.EntryStatus()
	completed := phase.CompletedStatus()
	filtered := sections[:0]
	for _, section := range sections {
		if section.Status.AtLeast(entry) && completed.AtLeast(section.Status) {
			filtered = append(filtered, section)
		}
	}
	return filtered, nil
}

// UpsertSection persists changes to an existing section under the optimistic
// revision check, or inserts a new one when section.ID is zero. A write
// presenting a revision older than the stored one fails with a conflict; the
// caller reloads and retries. Ordinal changes are rejected here; reordering
// is an explicit, atomic operation.
//
// The body-edit timestamp is maintained inside the same transaction: when
// the incoming body differs from the stored body, the write is a manual edit
// by definition, because enrichment never touches the body.
func (s *Store) UpsertSection(ctx context.Context, section *Section) (*Section, error) {
	if section == nil {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section", "section is nil", nil)
	}
	if strings.TrimSpace(section.Title) == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section", "title must not be empty", nil)
	}

	if section.ID == 0 {
		return s.insertSection(ctx, section)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = ?`, section.ID)
	current, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "project", "upsert section", fmt.Sprintf("section %d", section.ID), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "load current section", err)
	}

	if current.Revision != section.Revision {
		return nil, services.Wrap(services.ErrConflict, "project", "upsert section",
			fmt.Sprintf("section %d revision %d is stale (current %d)", section.ID, section.Revision, current.Revision), nil)
	}
	if current.Ordinal != section.Ordinal {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section",
			"ordinal changes must go through reorder", nil)
	}

	now := time.Now().UTC()
	bodyEditedAt := current.BodyEditedAt
	if section.Body != current.Body {
		bodyEditedAt = &now
	}

	citationsJSON, err := marshalCitations(section.Citations)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section", "encode citations", err)
	}
	suggestionsJSON, err := marshalSuggestions(section.Suggestions)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section", "encode suggestions", err)
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE sections
         SET title = ?, thesis = ?, guidance = ?, body = ?, citations_json = ?, suggestions_json = ?,
             status = ?, coherence = ?, density = ?, revision = revision + 1,
             body_edited_at = ?, enriched_at = ?, updated_at = ?
         WHERE id = ? AND revision = ?`,
		strings.TrimSpace(section.Title),
		strings.TrimSpace(section.Thesis),
		section.Guidance,
		section.Body,
		citationsJSON,
		suggestionsJSON,
		string(section.Status),
		nullableFloat(section.Coherence),
		nullableFloat(section.Density),
		nullableTime(bodyEditedAt),
		nullableTime(section.EnrichedAt),
		now.Format(time.RFC3339Nano),
		section.ID,
		section.Revision,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "update section", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "rows affected", err)
	}
	if affected == 0 {
		// Lost the race between the revision read above and the update.
		return nil, services.Wrap(services.ErrConflict, "project", "upsert section",
			fmt.Sprintf("section %d revision %d is stale", section.ID, section.Revision), nil)
	}

	if err := tx.Commit(); err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "commit", err)
	}

	return s.GetSection(ctx, section.ID)
}

func (s *Store) insertSection(ctx context.Context, section *Section) (*Section, error) {
	if _, err := s.GetProject(ctx, section.ProjectID); err != nil {
		return nil, err
	}

	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sections WHERE project_id = ?`, section.ProjectID)
	if err := row.Scan(&count); err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "count sections", err)
	}
	if section.Ordinal != count {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section",
			fmt.Sprintf("new section ordinal %d breaks contiguity (expected %d)", section.Ordinal, count), nil)
	}

	citationsJSON, err := marshalCitations(section.Citations)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section", "encode citations", err)
	}
	suggestionsJSON, err := marshalSuggestions(section.Suggestions)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "upsert section", "encode suggestions", err)
	}

	status := section.Status
	if status == "" {
		status = workflow.SectionOutlining
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sections (project_id, ordinal, title, thesis, guidance, body, citations_json,
            suggestions_json, status, coherence, density, revision, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		section.ProjectID,
		section.Ordinal,
		strings.TrimSpace(section.Title),
		strings.TrimSpace(section.Thesis),
		section.Guidance,
		section.Body,
		citationsJSON,
		suggestionsJSON,
		string(status),
		nullableFloat(section.Coherence),
		nullableFloat(section.Density),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "insert section", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "upsert section", "last insert id", err)
	}
	return s.GetSection(ctx, id)
}

// ReorderSections atomically renumbers a project's sections to match the
// supplied id order. The id set must be exactly the project's sections.
// Ordinals are shifted out of the way first so the uniqueness of
// (project, ordinal) is never violated mid-transaction.
func (s *Store) ReorderSections(ctx context.Context, projectID string, order []int64) error {
	sections, err := s.SectionsByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(order) != len(sections) {
		return services.Wrap(services.ErrValidation, "project", "reorder sections",
			fmt.Sprintf("order lists %d sections, project has %d", len(order), len(sections)), nil)
	}
	existing := make(map[int64]struct{}, len(sections))
	for _, section := range sections {
		existing[section.ID] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(order))
	for _, id := range order {
		if _, ok := existing[id]; !ok {
			return services.Wrap(services.ErrValidation, "project", "reorder sections",
				fmt.Sprintf("section %d does not belong to project %s", id, projectID), nil)
		}
		if _, dup := seen[id]; dup {
			return services.Wrap(services.ErrValidation, "project", "reorder sections",
				fmt.Sprintf("section %d listed twice", id), nil)
		}
		seen[id] = struct{}{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "reorder sections", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	// First pass parks every ordinal in negative space.
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE sections SET ordinal = -(ordinal + 1) WHERE project_id = ?`,
		projectID,
	); err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "reorder sections", "park ordinals", err)
	}

	for position, id := range order {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE sections SET ordinal = ?, revision = revision + 1, updated_at = ? WHERE id = ?`,
			position,
			timestamp,
			id,
		); err != nil {
			return services.Wrap(services.ErrInfrastructure, "project", "reorder sections", "assign ordinal", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrInfrastructure, "project", "reorder sections", "commit", err)
	}

	s.logger.Info("sections reordered",
		logging.String(logging.FieldProjectID, projectID),
		logging.Int("count", len(order)))
	return nil
}

// SectionStats returns a count of a project's sections grouped by status.
func (s *Store) SectionStats(ctx context.Context, projectID string) (map[workflow.SectionStatus]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM sections WHERE project_id = ? GROUP BY status`,
		projectID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "project", "section stats", "query stats", err)
	}
	defer rows.Close()

	stats := make(map[workflow.SectionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, services.Wrap(services.ErrInfrastructure, "project", "section stats", "scan stats", err)
		}
		stats[workflow.SectionStatus(status)] = count
	}
	return stats, rows.Err()
}
