package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/auth"
	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/app/repositories"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

// maxMutationAttempts bounds the optimistic retry loop of a session write
const maxMutationAttempts = 3

// defaultUploadExpiry is twice the default upstream upload timeout
const defaultUploadExpiry = 10 * time.Minute

// errUnchanged lets a mutation skip the write when nothing changed
var errUnchanged = errors.New("session unchanged")

// Submitter sends a completed session across the persistence boundary
type Submitter interface {
	Submit(ctx context.Context, actor models.Actor, session *models.WizardSession) (interface{}, error)
}

// WizardService handles wizard session operations
type WizardService struct {
	sessions      repositories.SessionStore
	registry      *wizards.Registry
	authz         *auth.AuthorizationService
	registrations RegistrationAPI
	reviews       *AIReviewService
	uploads       *UploadService
	submitters    map[models.WizardKind]Submitter
	uploadExpiry  time.Duration
	now           func() time.Time
}

// NewWizardService creates a new wizard service instance
func NewWizardService(
	sessions repositories.SessionStore,
	registry *wizards.Registry,
	authz *auth.AuthorizationService,
	registrations RegistrationAPI,
	reviews *AIReviewService,
	uploads *UploadService,
	submitters map[models.WizardKind]Submitter,
) *WizardService {
	return &WizardService{
		sessions:      sessions,
		registry:      registry,
		authz:         authz,
		registrations: registrations,
		reviews:       reviews,
		uploads:       uploads,
		submitters:    submitters,
		uploadExpiry:  defaultUploadExpiry,
		now:           time.Now,
	}
}

// SetUploadExpiry sets how long an upload may stay pending before its mark is dropped.
// It must exceed the upload timeout so that a live upload never loses its mark.
func (s *WizardService) SetUploadExpiry(d time.Duration) {
	if d > 0 {
		s.uploadExpiry = d
	}
}

// Create opens a new wizard session. registrationID pre-fills the registration wizard for
// editing and names the application under review for the review wizard.
func (s *WizardService) Create(ctx context.Context, actor models.Actor, kind models.WizardKind, registrationID *int64) (*dto.WizardSessionResponse, error) {
	if err := s.authz.CanStartWizard(actor, kind); err != nil {
		return nil, err
	}
	def, err := s.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}

	form, err := s.initialForm(ctx, actor, def, registrationID)
	if err != nil {
		return nil, err
	}

	session := &models.WizardSession{
		ID:             uuid.New(),
		Kind:           kind,
		OwnerID:        actor.UserID,
		SubjectID:      registrationID,
		CurrentStep:    1,
		Status:         models.SessionActive,
		FormData:       form,
		PendingUploads: []string{},
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create %s session: %w", kind, err)
	}

	logger.Ctx(ctx).Info().
		Str("sessionID", session.ID.String()).
		Str("kind", string(kind)).
		Int64("userID", actor.UserID).
		Msg("Wizard session created")

	return s.view(def, session)
}

func (s *WizardService) initialForm(ctx context.Context, actor models.Actor, def wizards.Definition, registrationID *int64) (json.RawMessage, error) {
	switch def.Kind() {
	case models.WizardRegistration:
		if registrationID == nil {
			if actor.Email == "" {
				return def.Blank(), nil
			}
			partial, _ := json.Marshal(map[string]string{"email": actor.Email})
			return def.Merge(def.Blank(), partial)
		}
		reg, err := s.registrations.GetRegistration(ctx, *registrationID)
		if err != nil {
			return nil, fmt.Errorf("load registration %d: %w", *registrationID, err)
		}
		if err := s.authz.CanEditRegistration(actor, reg); err != nil {
			return nil, err
		}
		form := wizards.RegistrationPrefill(reg)
		return json.Marshal(&form)

	case models.WizardApplicationReview:
		if registrationID == nil {
			return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, "registrationId is required to review an application").
				WithField("registrationId")
		}
		reg, err := s.registrations.GetRegistration(ctx, *registrationID)
		if err != nil {
			return nil, fmt.Errorf("load registration %d: %w", *registrationID, err)
		}
		if err := s.authz.CanReviewRegistration(actor, reg); err != nil {
			return nil, err
		}
		form := wizards.ApplicationReviewFor(reg)
		return json.Marshal(&form)

	default:
		if registrationID != nil {
			return nil, apperrors.NewCustomError(apperrors.ErrBadRequest,
				fmt.Sprintf("registrationId is not supported by the %s wizard", def.Kind())).WithField("registrationId")
		}
		return def.Blank(), nil
	}
}

// Get returns the session view with derived step validity
func (s *WizardService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error) {
	session, def, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.view(def, session)
}

// Merge shallow-merges partial into the form record
func (s *WizardService) Merge(ctx context.Context, actor models.Actor, id uuid.UUID, partial json.RawMessage) (*dto.WizardSessionResponse, error) {
	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		if list := pendingListIn(def, partial, session.PendingUploads); list != "" {
			return apperrors.NewCustomError(apperrors.ErrUploadPending,
				fmt.Sprintf("%s cannot be replaced while one of its uploads is in progress", list)).WithField(list)
		}
		form, err := def.Merge(session.FormData, partial)
		if err != nil {
			return err
		}
		session.FormData = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(def, session)
}

// Navigate moves the step pointer to target when the gate allows it. Landing on the
// AI review step runs the review.
func (s *WizardService) Navigate(ctx context.Context, actor models.Actor, id uuid.UUID, target int) (*dto.NavigationResponse, error) {
	return s.navigate(ctx, actor, id, func(int) int { return target })
}

// Next moves to the following step
func (s *WizardService) Next(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.NavigationResponse, error) {
	return s.navigate(ctx, actor, id, func(current int) int { return current + 1 })
}

// Back moves to the previous step
func (s *WizardService) Back(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.NavigationResponse, error) {
	return s.navigate(ctx, actor, id, func(current int) int { return current - 1 })
}

func (s *WizardService) navigate(ctx context.Context, actor models.Actor, id uuid.UUID, target func(current int) int) (*dto.NavigationResponse, error) {
	var decision wizard.Decision
	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		d, err := def.Navigate(session.FormData, session.CurrentStep, target(session.CurrentStep))
		if err != nil {
			return err
		}
		decision = d
		if !d.Accepted || d.To == session.CurrentStep {
			return errUnchanged
		}
		session.CurrentStep = d.To
		return nil
	})
	if err != nil {
		return nil, err
	}

	if decision.Accepted && decision.To != decision.From && decision.To == def.ReviewStep() {
		session, err = s.reviews.ensure(ctx, s, actor, session, def)
		if err != nil {
			return nil, err
		}
	}

	logger.Ctx(ctx).Debug().
		Str("sessionID", id.String()).
		Int("from", decision.From).
		Int("to", decision.To).
		Bool("accepted", decision.Accepted).
		Msg("Wizard navigation")

	view, err := s.view(def, session)
	if err != nil {
		return nil, err
	}
	return &dto.NavigationResponse{Decision: decision, Session: *view}, nil
}

// AddItem appends a blank record to list
func (s *WizardService) AddItem(ctx context.Context, actor models.Actor, id uuid.UUID, list string) (*dto.AddItemResponse, error) {
	var index int
	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		form, i, err := def.AddItem(session.FormData, list)
		if err != nil {
			return err
		}
		session.FormData, index = form, i
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.view(def, session)
	if err != nil {
		return nil, err
	}
	return &dto.AddItemResponse{Index: index, Session: *view}, nil
}

// UpdateItem replaces one field of one record of list
func (s *WizardService) UpdateItem(ctx context.Context, actor models.Actor, id uuid.UUID, list string, index int, field string, value json.RawMessage) (*dto.WizardSessionResponse, error) {
	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		if wizards.UpdateBlocked(def, list, index, field, session.PendingUploads) {
			return apperrors.NewCustomError(apperrors.ErrUploadPending,
				fmt.Sprintf("%s cannot be replaced while one of its uploads is in progress", field)).WithField(field)
		}
		form, err := def.UpdateItem(session.FormData, list, index, field, value)
		if err != nil {
			return err
		}
		session.FormData = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(def, session)
}

// RemoveItem deletes the record at index of list. Records with an upload in flight, and
// records before one, cannot be removed because the upload result is addressed by position.
func (s *WizardService) RemoveItem(ctx context.Context, actor models.Actor, id uuid.UUID, list string, index int) (*dto.WizardSessionResponse, error) {
	session, def, err := s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		if wizards.RemovalBlocked(def, list, index, session.PendingUploads) {
			return apperrors.NewCustomError(apperrors.ErrUploadPending,
				"wait for the upload of this item to finish before removing it")
		}
		if shiftsPending(def, list, index, session.PendingUploads) {
			return apperrors.NewCustomError(apperrors.ErrUploadPending,
				"wait for the uploads of the following items to finish before removing this one")
		}
		form, err := def.RemoveItem(session.FormData, list, index)
		if err != nil {
			return err
		}
		session.FormData = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(def, session)
}

// shiftsPending reports whether removing index would move a pending upload of list
func shiftsPending(def wizards.Definition, list string, index int, pending []string) bool {
	for _, key := range pending {
		ref, ok := wizards.ParseSlotKey(key)
		if !ok {
			continue
		}
		if sd, ok := def.Slot(ref.Name); ok && sd.List == list && ref.Index > index {
			return true
		}
	}
	return false
}

// pendingListIn returns the first list replaced by partial that owns a pending upload
func pendingListIn(def wizards.Definition, partial json.RawMessage, pending []string) string {
	if len(pending) == 0 {
		return ""
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(partial, &keys); err != nil {
		// def.Merge reports malformed input
		return ""
	}
	for _, key := range pending {
		ref, ok := wizards.ParseSlotKey(key)
		if !ok {
			continue
		}
		if sd, ok := def.Slot(ref.Name); ok && sd.List != "" {
			if _, replaced := keys[sd.List]; replaced {
				return sd.List
			}
		}
	}
	return ""
}

// Abandon discards a session that is not being submitted
func (s *WizardService) Abandon(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	session, _, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if session.Status == models.SessionSubmitting {
		return closedError(session)
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}

	logger.Ctx(ctx).Info().Str("sessionID", id.String()).Str("kind", string(session.Kind)).Msg("Wizard session abandoned")
	return nil
}

// load fetches a session the actor owns, with its definition
func (s *WizardService) load(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.WizardSession, wizards.Definition, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authz.CanAccessSession(actor, session); err != nil {
		return nil, nil, err
	}
	def, err := s.registry.Lookup(session.Kind)
	if err != nil {
		return nil, nil, err
	}
	s.expireUploads(ctx, session)
	return session, def, nil
}

// expireUploads drops pending marks left behind by uploads that never finished, for
// example because the process stopped mid-upload. The next write persists the drop.
func (s *WizardService) expireUploads(ctx context.Context, session *models.WizardSession) {
	expired := session.ExpireUploads(s.now().Add(-s.uploadExpiry))
	if len(expired) > 0 {
		logger.Ctx(ctx).Warn().Str("sessionID", session.ID.String()).Strs("slots", expired).
			Msg("Dropped stale upload marks")
	}
}

// mutate applies fn to a fresh copy of an active session and writes it back.
// A concurrent write makes the store reject the update; fn is then re-applied to the
// newer copy, up to maxMutationAttempts times.
func (s *WizardService) mutate(ctx context.Context, actor models.Actor, id uuid.UUID, fn func(*models.WizardSession, wizards.Definition) error) (*models.WizardSession, wizards.Definition, error) {
	for attempt := 1; ; attempt++ {
		session, def, err := s.load(ctx, actor, id)
		if err != nil {
			return nil, nil, err
		}
		if session.Status != models.SessionActive {
			return nil, nil, closedError(session)
		}

		if err := fn(session, def); err != nil {
			if errors.Is(err, errUnchanged) {
				return session, def, nil
			}
			return nil, nil, err
		}

		err = s.sessions.Update(ctx, session)
		if err == nil {
			return session, def, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) || attempt == maxMutationAttempts {
			return nil, nil, err
		}
		logger.Ctx(ctx).Debug().Str("sessionID", id.String()).Int("attempt", attempt).
			Msg("Wizard session changed concurrently, retrying")
	}
}

func closedError(session *models.WizardSession) error {
	if session.Status == models.SessionSubmitting {
		return apperrors.NewCustomError(apperrors.ErrSessionClosed, "this wizard is being submitted")
	}
	return apperrors.NewCustomError(apperrors.ErrSessionClosed, "this wizard was already submitted")
}

// view renders the client view of a session
func (s *WizardService) view(def wizards.Definition, session *models.WizardSession) (*dto.WizardSessionResponse, error) {
	steps, err := def.Steps(session.FormData)
	if err != nil {
		return nil, err
	}
	submit, err := def.CanSubmit(session.FormData, session.CurrentStep)
	if err != nil {
		return nil, err
	}

	resp := &dto.WizardSessionResponse{
		ID:             session.ID,
		Kind:           session.Kind,
		Status:         session.Status,
		CurrentStep:    session.CurrentStep,
		TotalSteps:     def.TotalSteps(),
		Steps:          steps,
		CanSubmit:      submit.Accepted,
		FormData:       session.FormData,
		PendingUploads: session.PendingUploads,
		Version:        session.Version,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}

	switch {
	case session.Status != models.SessionActive:
		resp.CanSubmit = false
		resp.SubmitBlockReason = "the wizard is no longer active"
	case !submit.Accepted:
		resp.SubmitBlockReason = submit.Reason
	case len(session.PendingUploads) > 0:
		resp.CanSubmit = false
		resp.SubmitBlockReason = apperrors.ErrUploadPending.Error()
	}

	if def.ReviewStep() > 0 {
		review, err := def.Review(session.FormData)
		if err != nil {
			return nil, err
		}
		resp.AIReview = &review
	}
	if resp.PendingUploads == nil {
		resp.PendingUploads = []string{}
	}
	return resp, nil
}
