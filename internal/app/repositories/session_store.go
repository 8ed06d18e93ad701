package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
)

// SessionStore persists wizard sessions.
//
// Update is a compare-and-swap on Version: it succeeds only when the stored version equals
// s.Version, then increments both. A stale write fails with apperrors.ErrConflict.
type SessionStore interface {
	Create(ctx context.Context, s *models.WizardSession) error
	Get(ctx context.Context, id uuid.UUID) (*models.WizardSession, error)
	Update(ctx context.Context, s *models.WizardSession) error
	// TransitionStatus atomically moves a session from one status to another and reports
	// whether this call performed the move
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.SessionStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteIdleBefore purges sessions not touched since cutoff, except those mid-submission
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
