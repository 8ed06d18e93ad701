package wizards

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func stepValidity(t *testing.T, def Definition, form json.RawMessage) map[string]bool {
	t.Helper()
	states, err := def.Steps(form)
	require.NoError(t, err)
	out := make(map[string]bool, len(states))
	for _, s := range states {
		out[s.Name] = s.Valid
	}
	return out
}

func completeRegistration() models.RegistrationForm {
	return models.RegistrationForm{
		FullName:       "Nguyen Van A",
		Email:          "a@example.com",
		PhoneNumber:    "+84 900 000 000",
		Country:        "VN",
		Bio:            "I teach distributed systems.",
		Headline:       "Backend engineer",
		ExpertiseAreas: []string{"Go"},
		Education: []models.Education{{
			Institution: "HUST", Degree: "BSc", FieldOfStudy: "CS", StartYear: 2012, EndYear: 2016,
		}},
		Certificates: []models.Certificate{},
		WorkExperience: []models.WorkExperience{{
			Company: "Acme", Position: "Engineer", StartDate: "2016-07-01", IsCurrent: true,
		}},
		BankInfo:     models.BankInfo{BankCode: "VCB", AccountHolder: "NGUYEN VAN A", AccountNumber: "0123456789"},
		AIReview:     models.AIReview{State: models.AIReviewAccepted},
		AgreeToTerms: true,
	}
}

func TestProfessionalStepExample(t *testing.T) {
	def := NewRegistration()
	form := blankRegistration()
	form.Bio = ""
	form.Headline = "x"
	form.ExpertiseAreas = []string{}

	raw := mustJSON(t, form)
	assert.False(t, stepValidity(t, def, raw)[StepProfessional])

	raw, err := def.Merge(raw, json.RawMessage(`{"bio":"0123456789","expertiseAreas":["React"]}`))
	require.NoError(t, err)
	assert.True(t, stepValidity(t, def, raw)[StepProfessional])
}

func TestRegistrationWhitespaceCountsAsEmpty(t *testing.T) {
	def := NewRegistration()
	tests := []struct {
		step   string
		mutate func(f *models.RegistrationForm)
	}{
		{StepPersonal, func(f *models.RegistrationForm) { f.FullName = "   " }},
		{StepPersonal, func(f *models.RegistrationForm) { f.Email = "not-an-email" }},
		{StepProfessional, func(f *models.RegistrationForm) { f.Headline = "\t" }},
		{StepProfessional, func(f *models.RegistrationForm) { f.ExpertiseAreas = []string{" "} }},
		{StepProfessional, func(f *models.RegistrationForm) { f.Bio = "too short" }},
		{StepEducation, func(f *models.RegistrationForm) { f.Education[0].Degree = " " }},
		{StepEducation, func(f *models.RegistrationForm) { f.Education[0].StartYear = 1949 }},
		{StepEducation, func(f *models.RegistrationForm) { f.Education[0].StartYear = time.Now().Year() + 1 }},
		{StepEducation, func(f *models.RegistrationForm) { f.Education[0].EndYear = 2010 }},
		{StepEducation, func(f *models.RegistrationForm) { f.Education = nil }},
		{StepCertificates, func(f *models.RegistrationForm) {
			f.Certificates = []models.Certificate{{Name: "AWS", Issuer: "Amazon"}}
		}},
		{StepExperience, func(f *models.RegistrationForm) { f.WorkExperience[0].IsCurrent = false }},
		{StepExperience, func(f *models.RegistrationForm) { f.WorkExperience[0].StartDate = "" }},
		{StepPayout, func(f *models.RegistrationForm) { f.BankInfo.AccountNumber = "12ab5678" }},
		{StepPayout, func(f *models.RegistrationForm) { f.BankInfo.AccountNumber = "12345" }},
		{StepPayout, func(f *models.RegistrationForm) { f.SocialLinks.Github = "github" }},
		{StepAIReview, func(f *models.RegistrationForm) { f.AIReview.State = models.AIReviewRejected }},
		{StepConfirm, func(f *models.RegistrationForm) { f.AgreeToTerms = false }},
	}

	base := stepValidity(t, def, mustJSON(t, completeRegistration()))
	for name, valid := range base {
		require.True(t, valid, "complete form must satisfy step %s", name)
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			form := completeRegistration()
			tt.mutate(&form)
			assert.False(t, stepValidity(t, def, mustJSON(t, form))[tt.step])
		})
	}
}

func TestRegistrationCurrentEducationNeedsNoEndYear(t *testing.T) {
	form := completeRegistration()
	form.Education[0].EndYear = 0
	form.Education[0].IsCurrent = true

	assert.True(t, educationValid(&form))
}

func TestRegistrationNavigation(t *testing.T) {
	def := NewRegistration()
	raw := mustJSON(t, blankRegistration())

	d, err := def.Navigate(raw, 1, 2)
	require.NoError(t, err)
	assert.False(t, d.Accepted)

	form := completeRegistration()
	form.AIReview = models.AIReview{State: models.AIReviewNone}
	raw = mustJSON(t, form)

	d, err = def.Navigate(raw, 1, 7)
	require.NoError(t, err)
	assert.True(t, d.Accepted, "contiguous valid steps allow a multi-step jump")

	d, err = def.Navigate(raw, 1, 8)
	require.NoError(t, err)
	assert.False(t, d.Accepted, "AI review step blocks the jump")

	d, err = def.CanSubmit(raw, 8)
	require.NoError(t, err)
	assert.False(t, d.Accepted)
}

func TestRegistrationMergeGuards(t *testing.T) {
	def := NewRegistration()
	raw := def.Blank()

	_, err := def.Merge(raw, json.RawMessage(`{"aiReview":{"state":"ACCEPTED"}}`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = def.Merge(raw, json.RawMessage(`{"avatarUrl":"http://x"}`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = def.Merge(raw, json.RawMessage(`{"favouriteColour":"red"}`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRegistrationLists(t *testing.T) {
	def := NewRegistration()
	raw := def.Blank()

	_, err := def.RemoveItem(raw, "education", 0)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest, "last education entry is kept")

	raw, idx, err := def.AddItem(raw, "education")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	raw, err = def.UpdateItem(raw, "education", 1, "institution", json.RawMessage(`"MIT"`))
	require.NoError(t, err)

	raw, err = def.RemoveItem(raw, "education", 0)
	require.NoError(t, err)

	var form models.RegistrationForm
	require.NoError(t, json.Unmarshal(raw, &form))
	require.Len(t, form.Education, 1)
	assert.Equal(t, "MIT", form.Education[0].Institution)

	_, err = def.RemoveItem(raw, "hobbies", 0)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCertificateSlot(t *testing.T) {
	def := NewRegistration()
	raw, _, err := def.AddItem(def.Blank(), "certificates")
	require.NoError(t, err)

	_, err = def.UpdateItem(raw, "certificates", 0, "documentUrl", json.RawMessage(`"http://forged"`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	ref := SlotRef{Name: SlotCertificate, Index: 0}
	raw, ok, err := def.SetSlot(raw, ref, models.UploadResult{FileURL: "http://cdn/c.pdf", FileID: "c1"})
	require.NoError(t, err)
	require.True(t, ok)

	var form models.RegistrationForm
	require.NoError(t, json.Unmarshal(raw, &form))
	assert.Equal(t, "http://cdn/c.pdf", form.Certificates[0].DocumentURL)

	_, ok, err = def.SetSlot(raw, SlotRef{Name: SlotCertificate, Index: 3}, models.UploadResult{FileURL: "x"})
	require.NoError(t, err)
	assert.False(t, ok, "result for a removed item is discarded")

	raw, err = def.ClearSlot(raw, ref)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &form))
	assert.Empty(t, form.Certificates[0].DocumentURL)

	assert.True(t, RemovalBlocked(def, "certificates", 0, []string{ref.Key()}))
	assert.False(t, RemovalBlocked(def, "certificates", 1, []string{ref.Key()}))
	assert.False(t, RemovalBlocked(def, "education", 0, []string{ref.Key()}))
}

func TestRegistrationPayloadCarriesSkip(t *testing.T) {
	form := completeRegistration()
	form.AIReview = models.AIReview{State: models.AIReviewSkipped}

	p := RegistrationPayload(&form)
	assert.True(t, p.AIReviewSkipped)
	assert.Nil(t, p.AIReviewScore)
}

func completeCourse() models.CourseForm {
	return models.CourseForm{
		Title:       "Go for backend engineers",
		Description: "Build production services in Go from scratch.",
		CategoryID:  3,
		Level:       models.LevelBeginner,
		Language:    "en",
		Sections: []models.Section{{
			Title: "Intro",
			Lessons: []models.Lesson{
				{Title: "Welcome", Type: models.LessonVideo, VideoURL: "http://cdn/v.mp4"},
				{Title: "Setup", Type: models.LessonArticle, Content: "Install Go."},
			},
		}},
		ThumbnailURL: "http://cdn/t.png",
		Price:        19.99,
		Currency:     "USD",
	}
}

func TestCoursePredicates(t *testing.T) {
	def := NewCourse()
	for name, valid := range stepValidity(t, def, mustJSON(t, completeCourse())) {
		assert.True(t, valid, name)
	}

	tests := []struct {
		step   string
		mutate func(f *models.CourseForm)
	}{
		{StepBasics, func(f *models.CourseForm) { f.Title = "Go  " }},
		{StepBasics, func(f *models.CourseForm) { f.Level = "EXPERT" }},
		{StepBasics, func(f *models.CourseForm) { f.CategoryID = 0 }},
		{StepCurriculum, func(f *models.CourseForm) { f.Sections[0].Lessons = nil }},
		{StepCurriculum, func(f *models.CourseForm) { f.Sections[0].Lessons[0].VideoURL = "" }},
		{StepCurriculum, func(f *models.CourseForm) { f.Sections[0].Lessons[1].Content = " " }},
		{StepCurriculum, func(f *models.CourseForm) { f.Sections[0].Lessons[1].Type = "QUIZ" }},
		{StepMedia, func(f *models.CourseForm) { f.ThumbnailURL = "" }},
		{StepPricing, func(f *models.CourseForm) { f.IsFree = true }},
		{StepPricing, func(f *models.CourseForm) { f.Price = -1 }},
		{StepPricing, func(f *models.CourseForm) { f.Currency = "GBP" }},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			form := completeCourse()
			tt.mutate(&form)
			assert.False(t, stepValidity(t, def, mustJSON(t, form))[tt.step])
		})
	}
}

func TestLessonVideoSlot(t *testing.T) {
	def := NewCourse()
	raw := mustJSON(t, completeCourse())

	raw, ok, err := def.SetSlot(raw, SlotRef{Name: SlotLessonVideo, Index: 0, SubIndex: 0}, models.UploadResult{FileURL: "http://cdn/new.mp4", FileID: "v2"})
	require.NoError(t, err)
	require.True(t, ok)

	var form models.CourseForm
	require.NoError(t, json.Unmarshal(raw, &form))
	assert.Equal(t, "http://cdn/new.mp4", form.Sections[0].Lessons[0].VideoURL)
	assert.Equal(t, "v2", form.Sections[0].Lessons[0].VideoFileID)

	_, ok, err = def.SetSlot(raw, SlotRef{Name: SlotLessonVideo, Index: 0, SubIndex: 9}, models.UploadResult{FileURL: "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = def.SetSlot(raw, SlotRef{Name: "banner"}, models.UploadResult{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestLessonVideosComeFromUploads(t *testing.T) {
	def := NewCourse()
	raw := mustJSON(t, completeCourse())

	forged := `{"sections":[{"title":"Intro","lessons":[{"title":"Hack","type":"VIDEO","videoUrl":"http://evil/x.mp4"}]}]}`
	_, err := def.Merge(raw, json.RawMessage(forged))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	msg, _ := apperrors.MessageOf(err)
	assert.Contains(t, msg, "videoUrl")

	_, err = def.Merge(def.Blank(), json.RawMessage(forged))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = def.UpdateItem(raw, "sections", 0, "lessons",
		json.RawMessage(`[{"title":"Hack","type":"VIDEO","videoUrl":"http://cdn/v.mp4","videoFileId":"other"}]`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	reordered := `{"sections":[{"title":"Intro","lessons":[` +
		`{"title":"Setup","type":"ARTICLE","content":"Install Go."},` +
		`{"title":"Welcome","type":"VIDEO","videoUrl":"http://cdn/v.mp4"}]}]}`
	out, err := def.Merge(raw, json.RawMessage(reordered))
	require.NoError(t, err)
	var form models.CourseForm
	require.NoError(t, json.Unmarshal(out, &form))
	assert.Equal(t, "http://cdn/v.mp4", form.Sections[0].Lessons[1].VideoURL)

	_, err = def.UpdateItem(raw, "sections", 0, "lessons",
		json.RawMessage(`[{"title":"Welcome","type":"VIDEO"}]`))
	assert.NoError(t, err, "a video can be dropped")
}

func TestUpdateBlockedByNestedUpload(t *testing.T) {
	def := NewCourse()
	pending := []string{SlotRef{Name: SlotLessonVideo, Index: 1, SubIndex: 0}.Key()}

	assert.True(t, UpdateBlocked(def, "sections", 1, "lessons", pending))
	assert.False(t, UpdateBlocked(def, "sections", 1, "title", pending))
	assert.False(t, UpdateBlocked(def, "sections", 0, "lessons", pending))
	assert.False(t, UpdateBlocked(NewRegistration(), "certificates", 0, "name",
		[]string{SlotRef{Name: SlotCertificate}.Key()}))
}

func TestCourseHasNoReview(t *testing.T) {
	def := NewCourse()
	assert.Equal(t, 0, def.ReviewStep())
	_, err := def.Review(def.Blank())
	assert.ErrorIs(t, err, apperrors.ErrReviewNotAvailable)
}

func TestApplicationReview(t *testing.T) {
	def := NewApplicationReview()
	reg := &models.Registration{ID: 9, RegistrationPayload: models.RegistrationPayload{
		Certificates: []models.Certificate{{Name: "AWS", DocumentURL: "http://cdn/a.pdf"}, {Name: "CKA"}},
	}}
	raw := mustJSON(t, ApplicationReviewFor(reg))

	raw, err := def.Merge(raw, json.RawMessage(`{"profileChecked":true}`))
	require.NoError(t, err)

	valid := stepValidity(t, def, raw)
	assert.True(t, valid[StepProfileCheck])
	assert.False(t, valid[StepDocuments])

	for i := 0; i < 2; i++ {
		raw, err = def.UpdateItem(raw, "certificateChecks", i, "verdict", json.RawMessage(`"VERIFIED"`))
		require.NoError(t, err)
	}
	assert.True(t, stepValidity(t, def, raw)[StepDocuments])

	_, _, err = def.AddItem(raw, "certificateChecks")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	raw, err = def.Merge(raw, json.RawMessage(`{"decision":"REJECT","reason":"short"}`))
	require.NoError(t, err)
	assert.False(t, stepValidity(t, def, raw)[StepDecision])

	raw, err = def.Merge(raw, json.RawMessage(`{"reason":"Certificates could not be verified."}`))
	require.NoError(t, err)

	d, err := def.CanSubmit(raw, 3)
	require.NoError(t, err)
	assert.True(t, d.Accepted)

	_, err = def.Merge(raw, json.RawMessage(`{"application":{}}`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	def, err := r.Lookup(models.WizardCourse)
	require.NoError(t, err)
	assert.Equal(t, 5, def.TotalSteps())

	_, err = r.Lookup("survey")
	assert.ErrorIs(t, err, apperrors.ErrUnknownWizard)
}

func TestSlotKeyRoundTrip(t *testing.T) {
	ref := SlotRef{Name: SlotLessonVideo, Index: 2, SubIndex: 1}
	parsed, ok := ParseSlotKey(ref.Key())
	require.True(t, ok)
	assert.Equal(t, ref, parsed)

	_, ok = ParseSlotKey("garbage")
	assert.False(t, ok)
}
