package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/dberrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

var sessionColumns = []string{
	"id", "kind", "owner_id", "subject_id", "current_step", "status",
	"form_data", "pending_uploads", "version", "created_at", "updated_at",
}

// SessionRepository is the PostgreSQL SessionStore
type SessionRepository struct {
	DB *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Create inserts a new session with version 1
func (r *SessionRepository) Create(ctx context.Context, s *models.WizardSession) error {
	pending, err := encodePending(s)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.Version = 1
	s.CreatedAt, s.UpdatedAt = now, now

	sql, args, err := squirrel.Insert("wizard_sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.Kind, s.OwnerID, s.SubjectID, s.CurrentStep, s.Status,
			string(s.FormData), pending, s.Version, s.CreatedAt, s.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return err
	}

	if _, err := r.DB.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("sessionID", s.ID.String()).Msg("Error executing create session query")
		return dberrors.Wrap(err, "error creating wizard session")
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.WizardSession, error) {
	sql, args, err := squirrel.Select(sessionColumns...).
		From("wizard_sessions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, err
	}

	var (
		s       models.WizardSession
		form    []byte
		pending []byte
	)
	err = r.DB.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.Kind, &s.OwnerID, &s.SubjectID, &s.CurrentStep, &s.Status,
		&form, &pending, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if dberrors.IsNotFound(err) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, dberrors.Wrap(err, "error retrieving wizard session")
	}

	s.FormData = json.RawMessage(form)
	if err := decodePending(pending, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update writes the mutable fields of s when the stored version still matches
func (r *SessionRepository) Update(ctx context.Context, s *models.WizardSession) error {
	sql, args, updatedAt, err := buildUpdateSession(s)
	if err != nil {
		logger.Error().Err(err).Msg("Error building update session SQL")
		return err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sessionID", s.ID.String()).Msg("Error executing update session query")
		return dberrors.Wrap(err, "error updating wizard session")
	}

	if cmdTag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, s.ID)
	}

	s.Version++
	s.UpdatedAt = updatedAt
	return nil
}

func buildUpdateSession(s *models.WizardSession) (string, []interface{}, time.Time, error) {
	pending, err := encodePending(s)
	if err != nil {
		return "", nil, time.Time{}, err
	}
	updatedAt := time.Now().UTC()

	sql, args, err := squirrel.Update("wizard_sessions").
		Set("current_step", s.CurrentStep).
		Set("form_data", string(s.FormData)).
		Set("pending_uploads", pending).
		Set("version", s.Version+1).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": s.ID, "version": s.Version}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	return sql, args, updatedAt, err
}

// TransitionStatus implements SessionStore
func (r *SessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.SessionStatus) (bool, error) {
	sql, args, err := squirrel.Update("wizard_sessions").
		Set("status", to).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building session status SQL")
		return false, err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		return false, dberrors.Wrap(err, "error changing wizard session status")
	}
	return cmdTag.RowsAffected() == 1, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := squirrel.Delete("wizard_sessions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete session SQL")
		return err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		return dberrors.Wrap(err, "error deleting wizard session")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// DeleteIdleBefore implements SessionStore
func (r *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := squirrel.Delete("wizard_sessions").
		Where(squirrel.Lt{"updated_at": cutoff}).
		Where(squirrel.NotEq{"status": models.SessionSubmitting}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	cmdTag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		return 0, dberrors.Wrap(err, "error purging idle wizard sessions")
	}
	return cmdTag.RowsAffected(), nil
}

func (r *SessionRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wizard_sessions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return dberrors.Wrap(err, "error checking wizard session existence")
	}
	if !exists {
		return apperrors.ErrSessionNotFound
	}
	return apperrors.NewConflictError("the session was changed by another request")
}

// pendingUpload is the stored form of one in-flight upload
type pendingUpload struct {
	Key       string    `json:"key"`
	StartedAt time.Time `json:"startedAt"`
}

func encodePending(s *models.WizardSession) (string, error) {
	pending := make([]pendingUpload, 0, len(s.PendingUploads))
	for _, key := range s.PendingUploads {
		pending = append(pending, pendingUpload{Key: key, StartedAt: s.PendingSince[key]})
	}
	raw, err := json.Marshal(pending)
	if err != nil {
		return "", fmt.Errorf("error encoding pending uploads: %w", err)
	}
	return string(raw), nil
}

func decodePending(raw []byte, s *models.WizardSession) error {
	var pending []pendingUpload
	if err := json.Unmarshal(raw, &pending); err != nil {
		return fmt.Errorf("error decoding pending uploads: %w", err)
	}
	s.PendingUploads = make([]string, 0, len(pending))
	if len(pending) > 0 {
		s.PendingSince = make(map[string]time.Time, len(pending))
	}
	for _, p := range pending {
		s.PendingUploads = append(s.PendingUploads, p.Key)
		s.PendingSince[p.Key] = p.StartedAt
	}
	return nil
}
