package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/app/repositories"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/email"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

// Submit sends the form record to the backend once. The session status is the latch:
// only the request that moves it from ACTIVE to SUBMITTING calls the submitter. A failed
// submission re-opens the session; a successful one closes it for good.
func (s *WizardService) Submit(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.SubmitResponse, error) {
	session, def, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, closedError(session)
	}
	if err := submittable(def, session); err != nil {
		return nil, err
	}
	submitter, ok := s.submitters[session.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no submitter for %q", apperrors.ErrUnknownWizard, session.Kind)
	}

	won, err := s.sessions.TransitionStatus(ctx, id, models.SessionActive, models.SessionSubmitting)
	if err != nil {
		return nil, fmt.Errorf("latch session: %w", err)
	}
	if !won {
		return nil, apperrors.NewCustomError(apperrors.ErrSessionClosed, "this wizard is already being submitted")
	}

	// Past the latch the session is frozen; re-read it so the checked record is the sent one
	release := context.WithoutCancel(ctx)
	session, err = s.sessions.Get(ctx, id)
	if err == nil {
		s.expireUploads(ctx, session)
		err = submittable(def, session)
	}
	if err != nil {
		s.reopen(release, id)
		return nil, err
	}

	result, err := submitter.Submit(ctx, actor, session)
	if err != nil {
		s.reopen(release, id)
		logger.Ctx(ctx).Error().Err(err).Str("sessionID", id.String()).Str("kind", string(session.Kind)).
			Msg("Wizard submission failed")
		return nil, fmt.Errorf("submit %s wizard: %w", session.Kind, err)
	}

	if _, err := s.sessions.TransitionStatus(release, id, models.SessionSubmitting, models.SessionSubmitted); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("sessionID", id.String()).Msg("Failed to close submitted session")
	}

	logger.Ctx(ctx).Info().Str("sessionID", id.String()).Str("kind", string(session.Kind)).
		Int64("userID", actor.UserID).Msg("Wizard submitted")
	return &dto.SubmitResponse{Kind: session.Kind, Result: result}, nil
}

func submittable(def wizards.Definition, session *models.WizardSession) error {
	if len(session.PendingUploads) > 0 {
		return apperrors.NewCustomError(apperrors.ErrUploadPending, "wait for every upload to finish before submitting")
	}
	decision, err := def.CanSubmit(session.FormData, session.CurrentStep)
	if err != nil {
		return err
	}
	if !decision.Accepted {
		return apperrors.NewCustomError(apperrors.ErrSubmitBlocked, decision.Reason)
	}
	return nil
}

func (s *WizardService) reopen(ctx context.Context, id uuid.UUID) {
	if _, err := s.sessions.TransitionStatus(ctx, id, models.SessionSubmitting, models.SessionActive); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("sessionID", id.String()).Msg("Failed to re-open session after submission error")
	}
}

// NewSubmitters returns the submitter of every wizard kind
func NewSubmitters(registrations RegistrationAPI, courses CourseAPI, decisions repositories.DecisionLog, mailer email.EmailService) map[models.WizardKind]Submitter {
	return map[models.WizardKind]Submitter{
		models.WizardRegistration:      &RegistrationSubmitter{api: registrations},
		models.WizardCourse:            &CourseSubmitter{api: courses},
		models.WizardApplicationReview: &DecisionSubmitter{api: registrations, decisions: decisions, mailer: mailer},
	}
}

// RegistrationSubmitter creates or resubmits an instructor application
type RegistrationSubmitter struct {
	api RegistrationAPI
}

// Submit implements Submitter
func (r *RegistrationSubmitter) Submit(ctx context.Context, _ models.Actor, session *models.WizardSession) (interface{}, error) {
	var form models.RegistrationForm
	if err := json.Unmarshal(session.FormData, &form); err != nil {
		return nil, fmt.Errorf("decode registration form: %w", err)
	}

	payload := wizards.RegistrationPayload(&form)
	if session.SubjectID != nil {
		return r.api.UpdateRegistration(ctx, *session.SubjectID, payload)
	}
	return r.api.CreateRegistration(ctx, payload)
}

// CourseSubmitter publishes a new course
type CourseSubmitter struct {
	api CourseAPI
}

// Submit implements Submitter
func (c *CourseSubmitter) Submit(ctx context.Context, _ models.Actor, session *models.WizardSession) (interface{}, error) {
	var form models.CourseForm
	if err := json.Unmarshal(session.FormData, &form); err != nil {
		return nil, fmt.Errorf("decode course form: %w", err)
	}
	return c.api.CreateCourse(ctx, wizards.CoursePayload(&form))
}

// DecisionSubmitter applies an admin decision, records it and notifies the applicant.
// Once the backend accepted the decision, audit and email failures are only logged.
type DecisionSubmitter struct {
	api       RegistrationAPI
	decisions repositories.DecisionLog
	mailer    email.EmailService
}

// Submit implements Submitter
func (d *DecisionSubmitter) Submit(ctx context.Context, actor models.Actor, session *models.WizardSession) (interface{}, error) {
	var form models.ApplicationReviewForm
	if err := json.Unmarshal(session.FormData, &form); err != nil {
		return nil, fmt.Errorf("decode review form: %w", err)
	}
	regID := form.Application.ID

	var (
		reg *models.Registration
		err error
	)
	switch form.Decision {
	case models.DecisionApprove:
		reg, err = d.api.ApproveRegistration(ctx, regID)
	case models.DecisionReject:
		reg, err = d.api.RejectRegistration(ctx, regID, form.Reason)
	default:
		return nil, apperrors.NewCustomError(apperrors.ErrSubmitBlocked, "a decision is required").WithField("decision")
	}
	if err != nil {
		return nil, err
	}

	record := &models.ReviewDecision{
		RegistrationID: regID,
		ReviewerID:     actor.UserID,
		SessionID:      session.ID,
		Decision:       form.Decision,
		Reason:         form.Reason,
	}
	if err := d.decisions.Record(ctx, record); err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("registrationID", regID).Msg("Failed to record review decision")
	}

	if reg.Email == "" {
		// upstream responses may omit the applicant details
		reg.RegistrationPayload = form.Application.RegistrationPayload
	}
	if err := d.mailer.SendApplicationDecision(ctx, reg, form.Decision, form.Reason); err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("registrationID", regID).Msg("Failed to send decision email")
	}

	return reg, nil
}
