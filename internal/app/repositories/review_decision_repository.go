package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/dberrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

const reviewDecisionSessionKey = "review_decisions_session_key"

// DecisionLog records admin decisions on instructor applications
type DecisionLog interface {
	Record(ctx context.Context, d *models.ReviewDecision) error
	ListByRegistration(ctx context.Context, registrationID int64) ([]models.ReviewDecision, error)
}

// ReviewDecisionRepository is the PostgreSQL DecisionLog
type ReviewDecisionRepository struct {
	DB *pgxpool.Pool
}

// NewReviewDecisionRepository creates a new review decision repository
func NewReviewDecisionRepository(db *pgxpool.Pool) *ReviewDecisionRepository {
	return &ReviewDecisionRepository{DB: db}
}

// Record inserts d. A second decision from the same wizard session is a conflict.
func (r *ReviewDecisionRepository) Record(ctx context.Context, d *models.ReviewDecision) error {
	sql, args, err := squirrel.Insert("review_decisions").
		Columns("registration_id", "reviewer_id", "session_id", "decision", "reason").
		Values(d.RegistrationID, d.ReviewerID, d.SessionID, d.Decision, d.Reason).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building record decision SQL")
		return err
	}

	err = r.DB.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt)
	if dberrors.IsDuplicateConstraintError(err, reviewDecisionSessionKey) {
		return apperrors.NewConflictError("a decision was already recorded for this review")
	}
	if err != nil {
		logger.Error().Err(err).Int64("registrationID", d.RegistrationID).Msg("Error executing record decision query")
		return dberrors.Wrap(err, "error recording review decision")
	}
	return nil
}

// ListByRegistration returns the decisions of one application, newest first
func (r *ReviewDecisionRepository) ListByRegistration(ctx context.Context, registrationID int64) ([]models.ReviewDecision, error) {
	sql, args, err := squirrel.Select("id", "registration_id", "reviewer_id", "session_id", "decision", "COALESCE(reason, '')", "created_at").
		From("review_decisions").
		Where(squirrel.Eq{"registration_id": registrationID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.Wrap(err, "error listing review decisions")
	}
	defer rows.Close()

	decisions := []models.ReviewDecision{}
	for rows.Next() {
		var d models.ReviewDecision
		if err := rows.Scan(&d.ID, &d.RegistrationID, &d.ReviewerID, &d.SessionID, &d.Decision, &d.Reason, &d.CreatedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// MemoryDecisionLog keeps decisions in memory for the memory session store
type MemoryDecisionLog struct {
	mu        sync.Mutex
	decisions []models.ReviewDecision
}

// NewMemoryDecisionLog creates an empty log
func NewMemoryDecisionLog() *MemoryDecisionLog {
	return &MemoryDecisionLog{}
}

// Record implements DecisionLog
func (m *MemoryDecisionLog) Record(_ context.Context, d *models.ReviewDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.decisions {
		if existing.SessionID == d.SessionID {
			return apperrors.NewConflictError("a decision was already recorded for this review")
		}
	}
	d.ID = int64(len(m.decisions) + 1)
	d.CreatedAt = time.Now().UTC()
	m.decisions = append(m.decisions, *d)
	return nil
}

// ListByRegistration implements DecisionLog
func (m *MemoryDecisionLog) ListByRegistration(_ context.Context, registrationID int64) ([]models.ReviewDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.ReviewDecision{}
	for i := len(m.decisions) - 1; i >= 0; i-- {
		if m.decisions[i].RegistrationID == registrationID {
			out = append(out, m.decisions[i])
		}
	}
	return out, nil
}
