package wizards

import (
	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/validation"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

// Registration step names
const (
	StepPersonal     = "personal"
	StepProfessional = "professional"
	StepEducation    = "education"
	StepCertificates = "certificates"
	StepExperience   = "experience"
	StepPayout       = "payout"
	StepAIReview     = "aiReview"
	StepConfirm      = "confirm"
)

// Registration upload slots
const (
	SlotAvatar      = "avatar"
	SlotCertificate = "certificate"
)

const minStartYear = 1950

var registrationFlow = wizard.NewFlow(
	wizard.Step[models.RegistrationForm]{Name: StepPersonal, Valid: personalValid},
	wizard.Step[models.RegistrationForm]{Name: StepProfessional, Valid: professionalValid},
	wizard.Step[models.RegistrationForm]{Name: StepEducation, Valid: educationValid},
	wizard.Step[models.RegistrationForm]{Name: StepCertificates, Valid: certificatesValid},
	wizard.Step[models.RegistrationForm]{Name: StepExperience, Valid: experienceValid},
	wizard.Step[models.RegistrationForm]{Name: StepPayout, Valid: payoutValid},
	wizard.Step[models.RegistrationForm]{Name: StepAIReview, Valid: func(f *models.RegistrationForm) bool { return f.AIReview.Passed() }},
	wizard.Step[models.RegistrationForm]{Name: StepConfirm, Valid: func(f *models.RegistrationForm) bool { return f.AgreeToTerms }},
)

func personalValid(f *models.RegistrationForm) bool {
	return allPresent(f.FullName, f.PhoneNumber, f.Country) &&
		validation.Check(f.Email, "required,email")
}

func professionalValid(f *models.RegistrationForm) bool {
	return validation.Check(f.Bio, "notblank,min=10") &&
		present(f.Headline) &&
		validation.Check(f.ExpertiseAreas, "min=1,dive,notblank")
}

func educationValid(f *models.RegistrationForm) bool {
	if len(f.Education) == 0 {
		return false
	}
	year := now().Year()
	for _, e := range f.Education {
		if !allPresent(e.Institution, e.Degree, e.FieldOfStudy) {
			return false
		}
		if e.StartYear < minStartYear || e.StartYear > year {
			return false
		}
		if !e.IsCurrent && e.EndYear < e.StartYear {
			return false
		}
	}
	return true
}

func certificatesValid(f *models.RegistrationForm) bool {
	for _, c := range f.Certificates {
		if !allPresent(c.Name, c.Issuer, c.DocumentURL) {
			return false
		}
	}
	return true
}

func experienceValid(f *models.RegistrationForm) bool {
	if len(f.WorkExperience) == 0 {
		return false
	}
	for _, w := range f.WorkExperience {
		if !allPresent(w.Company, w.Position) {
			return false
		}
		start, ok := parseDate(w.StartDate)
		if !ok {
			return false
		}
		if w.IsCurrent {
			continue
		}
		end, ok := parseDate(w.EndDate)
		if !ok || end.Before(start) {
			return false
		}
	}
	return true
}

func payoutValid(f *models.RegistrationForm) bool {
	return validation.Valid(f.BankInfo) && validation.Valid(f.SocialLinks)
}

func blankRegistration() models.RegistrationForm {
	return models.RegistrationForm{
		ExpertiseAreas: []string{},
		Education:      []models.Education{{}},
		Certificates:   []models.Certificate{},
		WorkExperience: []models.WorkExperience{{}},
		AIReview:       models.AIReview{State: models.AIReviewNone},
	}
}

// NewRegistration returns the instructor registration wizard
func NewRegistration() Definition {
	return &definition[models.RegistrationForm]{
		kind: models.WizardRegistration,
		flow: registrationFlow,
		lists: wizard.NewLists(
			wizard.NewList("education", 1,
				func(f *models.RegistrationForm) *[]models.Education { return &f.Education },
				func() models.Education { return models.Education{} },
			),
			wizard.NewList("certificates", 0,
				func(f *models.RegistrationForm) *[]models.Certificate { return &f.Certificates },
				func() models.Certificate { return models.Certificate{} },
				wizard.Protected("documentUrl", "documentFileId", "classifyResult"),
			),
			wizard.NewList("workExperience", 1,
				func(f *models.RegistrationForm) *[]models.WorkExperience { return &f.WorkExperience },
				func() models.WorkExperience { return models.WorkExperience{} },
			),
		),
		// certificates carry upload slots and change through the list operations only
		readOnly: []string{"aiReview", "avatarUrl", "avatarFileId", "certificates"},
		blank:    blankRegistration,
		slots: map[string]slot[models.RegistrationForm]{
			SlotAvatar: {
				def: SlotDef{Name: SlotAvatar, Kind: models.UploadAvatar},
				set: func(f *models.RegistrationForm, _ SlotRef, r models.UploadResult) bool {
					f.AvatarURL, f.AvatarFileID = r.FileURL, r.FileID
					return true
				},
				clear: func(f *models.RegistrationForm, _ SlotRef) {
					f.AvatarURL, f.AvatarFileID = "", ""
				},
			},
			SlotCertificate: {
				def:   SlotDef{Name: SlotCertificate, Kind: models.UploadCertificate, List: "certificates"},
				set:   setCertificateDocument,
				clear: func(f *models.RegistrationForm, ref SlotRef) { setCertificateDocument(f, ref, models.UploadResult{}) },
			},
		},
		review: &review[models.RegistrationForm]{
			step:    registrationFlow.IndexOf(StepAIReview),
			get:     func(f *models.RegistrationForm) models.AIReview { return f.AIReview },
			set:     func(f *models.RegistrationForm, r models.AIReview) { f.AIReview = r },
			request: ProfileReviewRequest,
		},
	}
}

func setCertificateDocument(f *models.RegistrationForm, ref SlotRef, r models.UploadResult) bool {
	if ref.Index < 0 || ref.Index >= len(f.Certificates) {
		return false
	}
	certs := make([]models.Certificate, len(f.Certificates))
	copy(certs, f.Certificates)
	certs[ref.Index].DocumentURL = r.FileURL
	certs[ref.Index].DocumentFileID = r.FileID
	certs[ref.Index].ClassifyResult = r.ClassifyResult
	f.Certificates = certs
	return true
}

// ProfileReviewRequest extracts the profile subset that the AI service scores
func ProfileReviewRequest(f *models.RegistrationForm) models.AIProfileReviewRequest {
	return models.AIProfileReviewRequest{
		FullName:       f.FullName,
		Bio:            f.Bio,
		Headline:       f.Headline,
		ExpertiseAreas: f.ExpertiseAreas,
		Education:      f.Education,
		Certificates:   f.Certificates,
		WorkExperience: f.WorkExperience,
	}
}

// RegistrationPrefill builds the form record for editing an existing application
func RegistrationPrefill(reg *models.Registration) models.RegistrationForm {
	form := reg.ToForm()
	if len(form.Education) == 0 {
		form.Education = []models.Education{{}}
	}
	if len(form.WorkExperience) == 0 {
		form.WorkExperience = []models.WorkExperience{{}}
	}
	if form.Certificates == nil {
		form.Certificates = []models.Certificate{}
	}
	if form.ExpertiseAreas == nil {
		form.ExpertiseAreas = []string{}
	}
	return form
}

// RegistrationPayload converts a completed form into the upstream request body
func RegistrationPayload(f *models.RegistrationForm) models.RegistrationPayload {
	p := models.RegistrationPayload{
		FullName:        f.FullName,
		Email:           f.Email,
		PhoneNumber:     f.PhoneNumber,
		Country:         f.Country,
		AvatarURL:       f.AvatarURL,
		Bio:             f.Bio,
		Headline:        f.Headline,
		ExpertiseAreas:  f.ExpertiseAreas,
		Education:       f.Education,
		Certificates:    f.Certificates,
		WorkExperience:  f.WorkExperience,
		BankInfo:        f.BankInfo,
		SocialLinks:     f.SocialLinks,
		AIReviewSkipped: f.AIReview.State == models.AIReviewSkipped,
	}
	if f.AIReview.Result != nil {
		score := f.AIReview.Result.OverallScore
		p.AIReviewScore = &score
	}
	return p
}
