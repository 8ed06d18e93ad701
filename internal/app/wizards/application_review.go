package wizards

import (
	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

// Application review step names
const (
	StepProfileCheck = "profile"
	StepDocuments    = "documents"
	StepDecision     = "decision"
)

var applicationReviewFlow = wizard.NewFlow(
	wizard.Step[models.ApplicationReviewForm]{Name: StepProfileCheck, Valid: func(f *models.ApplicationReviewForm) bool { return f.ProfileChecked }},
	wizard.Step[models.ApplicationReviewForm]{Name: StepDocuments, Valid: documentsValid},
	wizard.Step[models.ApplicationReviewForm]{Name: StepDecision, Valid: decisionValid},
)

func documentsValid(f *models.ApplicationReviewForm) bool {
	if len(f.CertificateChecks) != len(f.Application.Certificates) {
		return false
	}
	for _, c := range f.CertificateChecks {
		if c.Verdict != models.VerdictVerified && c.Verdict != models.VerdictInvalid {
			return false
		}
	}
	return true
}

func decisionValid(f *models.ApplicationReviewForm) bool {
	switch f.Decision {
	case models.DecisionApprove:
		return true
	case models.DecisionReject:
		return runesBetween(f.Reason, "min=10")
	default:
		return false
	}
}

// NewApplicationReview returns the admin application review wizard
func NewApplicationReview() Definition {
	return &definition[models.ApplicationReviewForm]{
		kind: models.WizardApplicationReview,
		flow: applicationReviewFlow,
		lists: wizard.NewLists(
			wizard.NewList("certificateChecks", 0,
				func(f *models.ApplicationReviewForm) *[]models.CertificateCheck { return &f.CertificateChecks },
				func() models.CertificateCheck { return models.CertificateCheck{} },
				wizard.Fixed(),
				wizard.Protected("certificateName", "documentUrl"),
			),
		),
		readOnly: []string{"application", "certificateChecks"},
		blank: func() models.ApplicationReviewForm {
			return models.ApplicationReviewForm{CertificateChecks: []models.CertificateCheck{}}
		},
		slots: map[string]slot[models.ApplicationReviewForm]{},
	}
}

// ApplicationReviewFor builds the review form for a registration, one check per certificate
func ApplicationReviewFor(reg *models.Registration) models.ApplicationReviewForm {
	checks := make([]models.CertificateCheck, len(reg.Certificates))
	for i, c := range reg.Certificates {
		checks[i] = models.CertificateCheck{CertificateName: c.Name, DocumentURL: c.DocumentURL}
	}
	return models.ApplicationReviewForm{Application: *reg, CertificateChecks: checks}
}
