package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

const (
	msgReviewUnavailable = "The AI review service is unavailable right now. You can submit without an AI review or try again."
	msgReviewFailed      = "The AI review could not be completed for this application."
	msgReviewSkipped     = "Submitted without an AI review."
)

// AIReviewService runs the AI verification step. Every outcome, including upstream
// failures, is expressed as a review state rather than an error.
type AIReviewService struct {
	api    ReviewAPI
	now    func() time.Time
	flight singleflight.Group
}

// NewAIReviewService creates a new AI review service instance
func NewAIReviewService(api ReviewAPI) *AIReviewService {
	return &AIReviewService{api: api, now: time.Now}
}

// Evaluate checks the service health and, when healthy, sends req for review
func (s *AIReviewService) Evaluate(ctx context.Context, req models.AIProfileReviewRequest) models.AIReview {
	reviewedAt := s.now().UTC()

	if !s.api.AIHealthy(ctx) {
		logger.Ctx(ctx).Warn().Msg("AI review service is unavailable")
		return models.AIReview{State: models.AIReviewUnavailable, Message: msgReviewUnavailable, ReviewedAt: &reviewedAt}
	}

	result, err := s.api.ReviewProfile(ctx, req)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("AI profile review failed")
		return models.AIReview{State: models.AIReviewFailed, Message: msgReviewFailed, ReviewedAt: &reviewedAt}
	}

	state := models.AIReviewRejected
	if result.IsAccepted {
		state = models.AIReviewAccepted
	}
	return models.AIReview{State: state, Result: result, Message: result.Summary, ReviewedAt: &reviewedAt}
}

// ensure reviews session unless a review outcome is already stored. Concurrent calls for
// one session share a single upstream call.
func (s *AIReviewService) ensure(ctx context.Context, w *WizardService, actor models.Actor, session *models.WizardSession, def wizards.Definition) (*models.WizardSession, error) {
	review, err := def.Review(session.FormData)
	if err != nil {
		return nil, err
	}
	if review.State != models.AIReviewNone {
		return session, nil
	}

	v, err, _ := s.flight.Do(session.ID.String(), func() (interface{}, error) {
		// a flight that finished after session was read may already have stored an outcome
		current, _, err := w.load(ctx, actor, session.ID)
		if err != nil {
			return nil, err
		}
		if stored, err := def.Review(current.FormData); err != nil {
			return nil, err
		} else if stored.State != models.AIReviewNone {
			return current, nil
		}

		req, err := def.ReviewRequest(current.FormData)
		if err != nil {
			return nil, err
		}
		outcome := s.Evaluate(ctx, req)

		updated, _, err := w.mutate(ctx, actor, session.ID, func(current *models.WizardSession, def wizards.Definition) error {
			stored, err := def.Review(current.FormData)
			if err != nil {
				return err
			}
			if stored.State != models.AIReviewNone {
				// another request stored an outcome first
				return errUnchanged
			}
			form, err := def.SetReview(current.FormData, outcome)
			if err != nil {
				return err
			}
			current.FormData = form
			return nil
		})
		if err != nil {
			return nil, err
		}

		logger.Ctx(ctx).Info().
			Str("sessionID", session.ID.String()).
			Str("state", string(outcome.State)).
			Msg("AI review stored")
		return updated, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.WizardSession), nil
}

// StartReview runs the AI review of a session that sits on the review step
func (s *WizardService) StartReview(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error) {
	session, def, err := s.reviewSession(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	session, err = s.reviews.ensure(ctx, s, actor, session, def)
	if err != nil {
		return nil, err
	}
	return s.view(def, session)
}

// SkipReview opens the review gate without a review after the service was unavailable
func (s *WizardService) SkipReview(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error) {
	if _, _, err := s.reviewSession(ctx, actor, id); err != nil {
		return nil, err
	}

	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		return s.transitionReview(session, def, models.AIReviewSkipped)
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("sessionID", id.String()).Msg("AI review skipped")
	return s.view(def, session)
}

// RetryReview runs the review again after the service was unavailable
func (s *WizardService) RetryReview(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error) {
	if _, _, err := s.reviewSession(ctx, actor, id); err != nil {
		return nil, err
	}

	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		return s.transitionReview(session, def, models.AIReviewNone)
	})
	if err != nil {
		return nil, err
	}

	session, err = s.reviews.ensure(ctx, s, actor, session, def)
	if err != nil {
		return nil, err
	}
	return s.view(def, session)
}

// transitionReview leaves the UNAVAILABLE state. No other state can be left.
func (s *WizardService) transitionReview(session *models.WizardSession, def wizards.Definition, to models.AIReviewState) error {
	current, err := def.Review(session.FormData)
	if err != nil {
		return err
	}
	if current.State != models.AIReviewUnavailable {
		return apperrors.NewCustomError(apperrors.ErrReviewLocked,
			fmt.Sprintf("the AI review is %s and cannot be skipped or retried", current.State))
	}

	next := models.AIReview{State: to}
	if to == models.AIReviewSkipped {
		next.Message = msgReviewSkipped
		skippedAt := s.reviews.now().UTC()
		next.ReviewedAt = &skippedAt
	}
	form, err := def.SetReview(session.FormData, next)
	if err != nil {
		return err
	}
	session.FormData = form
	return nil
}

// reviewSession loads a session that has a review step and currently sits on it
func (s *WizardService) reviewSession(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.WizardSession, wizards.Definition, error) {
	session, def, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if def.ReviewStep() == 0 {
		return nil, nil, apperrors.ErrReviewNotAvailable
	}
	if session.Status != models.SessionActive {
		return nil, nil, closedError(session)
	}
	if session.CurrentStep != def.ReviewStep() {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrBadRequest,
			fmt.Sprintf("the AI review runs on step %d", def.ReviewStep()))
	}
	return session, def, nil
}
