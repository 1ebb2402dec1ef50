package project

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"plume/internal/workflow"
)

const projectColumns = `id, owner_id, title, doc_type, discipline, style, status, deleted_at, created_at, updated_at`

const sectionColumns = `id, project_id, ordinal, title, thesis, guidance, body, citations_json, suggestions_json,
    status, coherence, density, revision, body_edited_at, enriched_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		proj         Project
		docType      string
		discipline   string
		style        string
		status       string
		deletedAtRaw sql.NullString
		createdAtRaw string
		updatedAtRaw string
	)
	if err := row.Scan(
		&proj.ID,
		&proj.OwnerID,
		&proj.Title,
		&docType,
		&discipline,
		&style,
		&status,
		&deletedAtRaw,
		&createdAtRaw,
		&updatedAtRaw,
	); err != nil {
		return nil, err
	}
	proj.DocType = DocumentType(docType)
	proj.Discipline = Discipline(discipline)
	proj.Style = Style(style)
	proj.Status = workflow.ProjectStatus(status)
	proj.DeletedAt = parseNullableTime(deletedAtRaw)
	proj.CreatedAt = mustParseTime(createdAtRaw)
	proj.UpdatedAt = mustParseTime(updatedAtRaw)
	return &proj, nil
}

func scanSection(row rowScanner) (*Section, error) {
	var (
		section         Section
		citationsRaw    sql.NullString
		suggestionsRaw  sql.NullString
		status          string
		coherence       sql.NullFloat64
		density         sql.NullFloat64
		bodyEditedAtRaw sql.NullString
		enrichedAtRaw   sql.NullString
		createdAtRaw    string
		updatedAtRaw    string
	)
	if err := row.Scan(
		&section.ID,
		&section.ProjectID,
		&section.Ordinal,
		&section.Title,
		&section.Thesis,
		&section.Guidance,
		&section.Body,
		&citationsRaw,
		&suggestionsRaw,
		&status,
		&coherence,
		&density,
		&section.Revision,
		&bodyEditedAtRaw,
		&enrichedAtRaw,
		&createdAtRaw,
		&updatedAtRaw,
	); err != nil {
		return nil, err
	}
	section.Status = workflow.SectionStatus(status)
	if coherence.Valid {
		value := coherence.Float64
		section.Coherence = &value
	}
	if density.Valid {
		value := density.Float64
		section.Density = &value
	}
	section.BodyEditedAt = parseNullableTime(bodyEditedAtRaw)
	section.EnrichedAt = parseNullableTime(enrichedAtRaw)
	section.CreatedAt = mustParseTime(createdAtRaw)
	section.UpdatedAt = mustParseTime(updatedAtRaw)

	if citationsRaw.Valid && citationsRaw.String != "" {
		if err := json.Unmarshal([]byte(citationsRaw.String), &section.Citations); err != nil {
			return nil, fmt.Errorf("decode citations for section %d: %w", section.ID, err)
		}
	}
	if suggestionsRaw.Valid && suggestionsRaw.String != "" {
		var suggestions Suggestions
		if err := json.Unmarshal([]byte(suggestionsRaw.String), &suggestions); err != nil {
			return nil, fmt.Errorf("decode suggestions for section %d: %w", section.ID, err)
		}
		section.Suggestions = &suggestions
	}
	return &section, nil
}

func marshalCitations(citations []Citation) (any, error) {
	if len(citations) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(citations)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func marshalSuggestions(suggestions *Suggestions) (any, error) {
	if suggestions == nil {
		return nil, nil
	}
	data, err := json.Marshal(suggestions)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseNullableTime(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	parsed, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func mustParseTime(raw string) time.Time {
	parsed, err := parseTimeString(raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func parseTimeString(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
