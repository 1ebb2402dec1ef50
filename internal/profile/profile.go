// Package profile persists per-user writing preferences, usage counters, and
// the suggestion feedback log consumed by the adaptive engine.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"plume/internal/logging"
	"plume/internal/project"
	"plume/internal/services"
)

// DefaultPreferredLength is the target word count assumed for users who have
// never stated one.
const DefaultPreferredLength = 3000

// UserProfile holds one user's writing preferences and usage counters.
type UserProfile struct {
	UserID          string
	DisplayName     string
	Style           project.Style
	Discipline      project.Discipline
	CitationStyle   project.CitationStyle
	PreferredLength int
	ProjectsCreated int
	TransfersRun    int
	WordsDrafted    int
	LastActiveAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Feedback is one accepted or rejected suggestion, keyed by the suggestion
// kind it was drawn from.
type Feedback struct {
	ID        int64
	UserID    string
	Kind      string
	Accepted  bool
	CreatedAt time.Time
}

// Store manages user profile persistence.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logging.NewComponentLogger(logger, "profile")}
}

// defaultProfile returns the preferences assumed before a user has saved any.
func defaultProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:          userID,
		Style:           project.StyleStandard,
		Discipline:      project.DisciplineSocialSciences,
		CitationStyle:   project.CitationAPA,
		PreferredLength: DefaultPreferredLength,
	}
}

// Get returns the stored profile, or the default preferences when the user
// has never saved one. The default is not persisted until the first Save.
func (s *Store) Get(ctx context.Context, userID string) (*UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, services.Wrap(services.ErrValidation, "profile", "get", "user id must not be empty", nil)
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT user_id, display_name, style, discipline, citation_style, preferred_length,
            projects_created, transfers_run, words_drafted, last_active_at, created_at, updated_at
         FROM user_profiles WHERE user_id = ?`,
		userID,
	)
	prof, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultProfile(userID), nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "profile", "get", "query profile", err)
	}
	return prof, nil
}

// Save upserts the user's preferences. Usage counters are not writable here;
// they only move through the Record* methods.
func (s *Store) Save(ctx context.Context, prof *UserProfile) error {
	if prof == nil || strings.TrimSpace(prof.UserID) == "" {
		return services.Wrap(services.ErrValidation, "profile", "save", "user id must not be empty", nil)
	}
	if _, ok := project.ParseStyle(string(prof.Style)); !ok {
		return services.Wrap(services.ErrValidation, "profile", "save",
			fmt.Sprintf("unrecognized style %q", prof.Style), nil)
	}
	if _, ok := project.ParseDiscipline(string(prof.Discipline)); !ok {
		return services.Wrap(services.ErrValidation, "profile", "save",
			fmt.Sprintf("unrecognized discipline %q", prof.Discipline), nil)
	}
	if _, ok := project.ParseCitationStyle(string(prof.CitationStyle)); !ok {
		return services.Wrap(services.ErrValidation, "profile", "save",
			fmt.Sprintf("unrecognized citation style %q", prof.CitationStyle), nil)
	}
	if prof.PreferredLength <= 0 {
		prof.PreferredLength = DefaultPreferredLength
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_profiles (user_id, display_name, style, discipline, citation_style, preferred_length, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET
            display_name = excluded.display_name,
            style = excluded.style,
            discipline = excluded.discipline,
            citation_style = excluded.citation_style,
            preferred_length = excluded.preferred_length,
            updated_at = excluded.updated_at`,
		strings.TrimSpace(prof.UserID),
		strings.TrimSpace(prof.DisplayName),
		string(prof.Style),
		string(prof.Discipline),
		string(prof.CitationStyle),
		prof.PreferredLength,
		timestamp,
		timestamp,
	)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "profile", "save", "upsert profile", err)
	}
	s.logger.Info("profile saved", logging.String(logging.FieldUserID, prof.UserID))
	return nil
}

// RecordProjectCreated bumps the user's project counter and activity marker.
func (s *Store) RecordProjectCreated(ctx context.Context, userID string) error {
	return s.bump(ctx, userID, "projects_created", 1)
}

// RecordTransfer bumps the user's sedimentation transfer counter.
func (s *Store) RecordTransfer(ctx context.Context, userID string) error {
	return s.bump(ctx, userID, "transfers_run", 1)
}

// RecordWordsDrafted adds to the user's drafted word tally.
func (s *Store) RecordWordsDrafted(ctx context.Context, userID string, words int) error {
	if words <= 0 {
		return nil
	}
	return s.bump(ctx, userID, "words_drafted", words)
}

func (s *Store) bump(ctx context.Context, userID, column string, delta int) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	if err := s.ensureRow(ctx, userID); err != nil {
		return err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf(
		`UPDATE user_profiles SET %s = %s + ?, last_active_at = ?, updated_at = ? WHERE user_id = ?`,
		column, column)
	if _, err := s.db.ExecContext(ctx, query, delta, timestamp, timestamp, userID); err != nil {
		return services.Wrap(services.ErrInfrastructure, "profile", "record usage", "update counter", err)
	}
	return nil
}

func (s *Store) ensureRow(ctx context.Context, userID string) error {
	defaults := defaultProfile(userID)
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_profiles (user_id, style, discipline, citation_style, preferred_length, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(user_id) DO NOTHING`,
		userID,
		string(defaults.Style),
		string(defaults.Discipline),
		string(defaults.CitationStyle),
		defaults.PreferredLength,
		timestamp,
		timestamp,
	)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "profile", "record usage", "ensure profile row", err)
	}
	return nil
}

// RecordFeedback appends one accepted or rejected suggestion to the
// feedback log.
func (s *Store) RecordFeedback(ctx context.Context, userID, kind string, accepted bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(kind) == "" {
		return services.Wrap(services.ErrValidation, "profile", "record feedback", "user id and kind must not be empty", nil)
	}
	acceptedInt := 0
	if accepted {
		acceptedInt = 1
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO suggestion_feedback (user_id, kind, accepted, created_at) VALUES (?, ?, ?, ?)`,
		userID,
		strings.TrimSpace(kind),
		acceptedInt,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return services.Wrap(services.ErrInfrastructure, "profile", "record feedback", "insert feedback", err)
	}
	return nil
}

// RecentFeedback returns the user's newest feedback entries, most recent
// first, bounded by limit.
func (s *Store) RecentFeedback(ctx context.Context, userID string, limit int) ([]Feedback, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, kind, accepted, created_at
         FROM suggestion_feedback WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		strings.TrimSpace(userID),
		limit,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrInfrastructure, "profile", "recent feedback", "query feedback", err)
	}
	defer rows.Close()

	var entries []Feedback
	for rows.Next() {
		var (
			entry       Feedback
			acceptedInt int
			createdRaw  string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Kind, &acceptedInt, &createdRaw); err != nil {
			return nil, services.Wrap(services.ErrInfrastructure, "profile", "recent feedback", "scan feedback", err)
		}
		entry.Accepted = acceptedInt != 0
		if created, err := parseTime(createdRaw); err == nil {
			entry.CreatedAt = created
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanProfile(row *sql.Row) (*UserProfile, error) {
	var (
		prof          UserProfile
		style         string
		discipline    string
		citationStyle string
		lastActiveRaw sql.NullString
		createdRaw    string
		updatedRaw    string
	)
	if err := row.Scan(
		&prof.UserID,
		&prof.DisplayName,
		&style,
		&discipline,
		&citationStyle,
		&prof.PreferredLength,
		&prof.ProjectsCreated,
		&prof.TransfersRun,
		&prof.WordsDrafted,
		&lastActiveRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	prof.Style = project.Style(style)
	prof.Discipline = project.Discipline(discipline)
	prof.CitationStyle = project.CitationStyle(citationStyle)
	if lastActiveRaw.Valid && lastActiveRaw.String != "" {
		if parsed, err := parseTime(lastActiveRaw.String); err == nil {
			prof.LastActiveAt = &parsed
		}
	}
	if parsed, err := parseTime(createdRaw); err == nil {
		prof.CreatedAt = parsed
	}
	if parsed, err := parseTime(updatedRaw); err == nil {
		prof.UpdatedAt = parsed
	}
	return &prof, nil
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
