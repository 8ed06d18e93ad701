package auth

import (
	"fmt"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
)

// wizardRoles lists the roles allowed to open each wizard. A nil entry allows any role.
var wizardRoles = map[models.WizardKind][]models.RoleType{
	models.WizardRegistration:      nil,
	models.WizardCourse:            {models.RoleInstructor},
	models.WizardApplicationReview: {models.RoleAdmin},
}

// AuthorizationService handles authorization decisions for wizard sessions
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanStartWizard checks whether actor may open a wizard of kind
func (s *AuthorizationService) CanStartWizard(actor models.Actor, kind models.WizardKind) error {
	roles, ok := wizardRoles[kind]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownWizard, kind)
	}
	if roles == nil {
		return nil
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	logger.Warn().Int64("userID", actor.UserID).Str("role", string(actor.Role)).Str("kind", string(kind)).
		Msg("Wizard start denied")
	return apperrors.NewForbiddenError(fmt.Sprintf("the %s wizard is not available for %s accounts", kind, actor.Role))
}

// CanAccessSession checks that actor owns the session. Sessions are private to their owner.
func (s *AuthorizationService) CanAccessSession(actor models.Actor, session *models.WizardSession) error {
	if session.OwnerID != actor.UserID {
		logger.Warn().Int64("userID", actor.UserID).Str("sessionID", session.ID.String()).
			Msg("Wizard session access denied")
		return apperrors.NewForbiddenError("you don't have access to this wizard session")
	}
	return nil
}

// CanEditRegistration checks that actor may prefill a wizard from reg
func (s *AuthorizationService) CanEditRegistration(actor models.Actor, reg *models.Registration) error {
	if reg.UserID != actor.UserID {
		return apperrors.NewForbiddenError("you can only edit your own application")
	}
	if reg.Status == models.RegistrationApproved {
		return apperrors.NewConflictError("an approved application cannot be edited")
	}
	return nil
}

// CanReviewRegistration checks that reg is still waiting for a decision
func (s *AuthorizationService) CanReviewRegistration(actor models.Actor, reg *models.Registration) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("only administrators can review applications")
	}
	if reg.Status != models.RegistrationPending {
		return apperrors.NewConflictError(fmt.Sprintf("application %d is already %s", reg.ID, reg.Status))
	}
	return nil
}
