package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

// readyRegistration walks a complete registration session to its last step
func readyRegistration(t *testing.T, h *harness, id uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	nav, err := h.svc.Navigate(ctx, instructor, id, 7)
	require.NoError(t, err)
	require.True(t, nav.Decision.Accepted)
	nav, err = h.svc.Next(ctx, instructor, id)
	require.NoError(t, err)
	require.True(t, nav.Decision.Accepted)
	view, err := h.svc.Merge(ctx, instructor, id, json.RawMessage(`{"agreeToTerms": true}`))
	require.NoError(t, err)
	require.True(t, view.CanSubmit, view.SubmitBlockReason)
}

func TestRegistrationSubmit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := startRegistration(t, h)

	_, err := h.svc.Submit(ctx, instructor, id)
	assert.ErrorIs(t, err, apperrors.ErrSubmitBlocked, "submission needs the last step")

	readyRegistration(t, h, id)
	res, err := h.svc.Submit(ctx, instructor, id)
	require.NoError(t, err)
	assert.Equal(t, models.WizardRegistration, res.Kind)

	require.Len(t, h.api.created, 1)
	payload := h.api.created[0]
	assert.Equal(t, "Nguyen Van A", payload.FullName)
	assert.Equal(t, instructor.Email, payload.Email)
	assert.False(t, payload.AIReviewSkipped)
	require.NotNil(t, payload.AIReviewScore)
	assert.Equal(t, 8.5, *payload.AIReviewScore)

	view, err := h.svc.Get(ctx, instructor, id)
	require.NoError(t, err)
	assert.Equal(t, models.SessionSubmitted, view.Status)
	assert.False(t, view.CanSubmit)

	_, err = h.svc.Submit(ctx, instructor, id)
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)
	_, err = h.svc.Merge(ctx, instructor, id, json.RawMessage(`{"country": "US"}`))
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)
	assert.Len(t, h.api.created, 1)
}

func TestFailedSubmitReopensSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := startRegistration(t, h)
	readyRegistration(t, h, id)

	h.api.createErr = apperrors.NewCustomError(apperrors.ErrUpstreamRejected, "duplicate application")
	_, err := h.svc.Submit(ctx, instructor, id)
	require.ErrorIs(t, err, apperrors.ErrUpstreamRejected)

	view, err := h.svc.Get(ctx, instructor, id)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, view.Status)
	assert.True(t, view.CanSubmit)

	h.api.createErr = nil
	_, err = h.svc.Submit(ctx, instructor, id)
	require.NoError(t, err)
	assert.Len(t, h.api.created, 1)
}

func TestConcurrentSubmitSendsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := startRegistration(t, h)
	readyRegistration(t, h, id)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Submit(ctx, instructor, id)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrSessionClosed)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, h.api.created, 1)
}

func TestResubmitUpdatesExistingApplication(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.api.registrations[5] = &models.Registration{ID: 5, UserID: instructor.UserID, Status: models.RegistrationRejected}

	regID := int64(5)
	view, err := h.svc.Create(ctx, instructor, models.WizardRegistration, &regID)
	require.NoError(t, err)
	_, err = h.svc.Merge(ctx, instructor, view.ID, json.RawMessage(completeProfile))
	require.NoError(t, err)
	_, err = h.svc.Merge(ctx, instructor, view.ID, json.RawMessage(`{"email": "a@example.com"}`))
	require.NoError(t, err)
	readyRegistration(t, h, view.ID)

	_, err = h.svc.Submit(ctx, instructor, view.ID)
	require.NoError(t, err)
	assert.Empty(t, h.api.created)
	require.Contains(t, h.api.updated, int64(5))
	assert.Equal(t, "a@example.com", h.api.updated[5].Email)
}

func TestCourseSubmit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	view, err := h.svc.Create(ctx, instructor, models.WizardCourse, nil)
	require.NoError(t, err)
	id := view.ID
	_, err = h.svc.Merge(ctx, instructor, id, json.RawMessage(completeCourse))
	require.NoError(t, err)

	nav, err := h.svc.Navigate(ctx, instructor, id, 5)
	require.NoError(t, err)
	assert.False(t, nav.Decision.Accepted, "the media step needs a thumbnail")
	assert.Equal(t, 1, nav.Session.CurrentStep)

	_, err = h.svc.Upload(ctx, instructor, id, wizards.SlotThumbnail, 0, 0, fileHeader(t, "t.png", pngContent))
	require.NoError(t, err)
	nav, err = h.svc.Navigate(ctx, instructor, id, 5)
	require.NoError(t, err)
	require.True(t, nav.Decision.Accepted)

	res, err := h.svc.Submit(ctx, instructor, id)
	require.NoError(t, err)
	course, ok := res.Result.(*models.Course)
	require.True(t, ok)
	assert.Equal(t, int64(42), course.ID)

	require.Len(t, h.api.courses, 1)
	assert.Equal(t, "http://cdn/thumbnail.png", h.api.courses[0].ThumbnailURL)
	assert.Equal(t, 19.99, h.api.courses[0].Price)
}

func startApplicationReview(t *testing.T, h *harness) uuid.UUID {
	t.Helper()
	h.api.registrations[5] = &models.Registration{
		ID: 5, UserID: instructor.UserID, Status: models.RegistrationPending,
		RegistrationPayload: models.RegistrationPayload{
			FullName:     "Nguyen Van A",
			Email:        "a@example.com",
			Certificates: []models.Certificate{{Name: "AWS SA", Issuer: "Amazon", DocumentURL: "http://cdn/c.pdf"}},
		},
	}
	ctx := context.Background()
	regID := int64(5)
	view, err := h.svc.Create(ctx, admin, models.WizardApplicationReview, &regID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalSteps)

	form := formOf[models.ApplicationReviewForm](t, view.FormData)
	require.Len(t, form.CertificateChecks, 1)
	assert.Equal(t, "AWS SA", form.CertificateChecks[0].CertificateName)

	_, err = h.svc.Merge(ctx, admin, view.ID, json.RawMessage(`{"profileChecked": true}`))
	require.NoError(t, err)
	_, err = h.svc.UpdateItem(ctx, admin, view.ID, "certificateChecks", 0, "verdict", json.RawMessage(`"VERIFIED"`))
	require.NoError(t, err)
	nav, err := h.svc.Navigate(ctx, admin, view.ID, 3)
	require.NoError(t, err)
	require.True(t, nav.Decision.Accepted)
	return view.ID
}

func TestApplicationReviewReject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := startApplicationReview(t, h)

	_, err := h.svc.UpdateItem(ctx, admin, id, "certificateChecks", 0, "certificateName", json.RawMessage(`"x"`))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = h.svc.AddItem(ctx, admin, id, "certificateChecks")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	view, err := h.svc.Merge(ctx, admin, id, json.RawMessage(`{"decision": "REJECT", "reason": "short"}`))
	require.NoError(t, err)
	assert.False(t, view.CanSubmit, "a rejection needs a reason")

	_, err = h.svc.Merge(ctx, admin, id, json.RawMessage(`{"reason": "The certificate could not be verified"}`))
	require.NoError(t, err)
	_, err = h.svc.Submit(ctx, admin, id)
	require.NoError(t, err)

	assert.Equal(t, "The certificate could not be verified", h.api.rejected[5])

	records, err := h.decisions.ListByRegistration(ctx, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, admin.UserID, records[0].ReviewerID)
	assert.Equal(t, models.DecisionReject, records[0].Decision)
	assert.Equal(t, id, records[0].SessionID)

	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "a@example.com", h.mailer.sent[0].email, "applicant details fall back to the snapshot")
	assert.Equal(t, models.DecisionReject, h.mailer.sent[0].decision)
}

func TestApplicationApprovalSurvivesMailFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := startApplicationReview(t, h)
	h.mailer.err = errors.New("smtp down")

	_, err := h.svc.Merge(ctx, admin, id, json.RawMessage(`{"decision": "APPROVE"}`))
	require.NoError(t, err)
	res, err := h.svc.Submit(ctx, admin, id)
	require.NoError(t, err)

	reg, ok := res.Result.(*models.Registration)
	require.True(t, ok)
	assert.Equal(t, models.RegistrationApproved, reg.Status)
	assert.Equal(t, []int64{5}, h.api.approved)

	view, err := h.svc.Get(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.SessionSubmitted, view.Status)
}
