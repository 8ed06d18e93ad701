package services

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/auth"
	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/repositories"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngContent = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

	instructor = models.Actor{UserID: 7, Email: "instructor@example.com", Role: models.RoleInstructor}
	student    = models.Actor{UserID: 8, Email: "student@example.com", Role: models.RoleStudent}
	admin      = models.Actor{UserID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
)

// fakeMarketplace is an in-memory Marketplace
type fakeMarketplace struct {
	mu sync.Mutex

	registrations map[int64]*models.Registration
	created       []models.RegistrationPayload
	updated       map[int64]models.RegistrationPayload
	createErr     error
	approved      []int64
	rejected      map[int64]string

	courses     []models.CoursePayload
	coursePage  models.Page[models.Course]
	courseCalls int32
	lastQuery   url.Values

	categoryCalls int32

	aiHealthy bool
	aiResult  *models.AIReviewResult
	aiErr     error
	aiCalls   int32
	aiGate    chan struct{}

	walletErr error
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		registrations: map[int64]*models.Registration{},
		updated:       map[int64]models.RegistrationPayload{},
		rejected:      map[int64]string{},
		aiHealthy:     true,
		aiResult:      &models.AIReviewResult{IsAccepted: true, OverallScore: 8.5, Summary: "Strong profile"},
	}
}

func (f *fakeMarketplace) CreateRegistration(_ context.Context, p models.RegistrationPayload) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	return &models.Registration{ID: int64(100 + len(f.created)), Status: models.RegistrationPending, RegistrationPayload: p}, nil
}

func (f *fakeMarketplace) UpdateRegistration(_ context.Context, id int64, p models.RegistrationPayload) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = p
	return &models.Registration{ID: id, Status: models.RegistrationPending, RegistrationPayload: p}, nil
}

func (f *fakeMarketplace) GetRegistration(_ context.Context, id int64) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("registration not found")
	}
	cp := *reg
	return &cp, nil
}

func (f *fakeMarketplace) ListRegistrations(_ context.Context, query url.Values) (models.Page[models.RegistrationSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	return models.Page[models.RegistrationSummary]{Items: []models.RegistrationSummary{{ID: 5}}, TotalItems: 1}, nil
}

func (f *fakeMarketplace) ApproveRegistration(_ context.Context, id int64) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, id)
	return &models.Registration{ID: id, Status: models.RegistrationApproved}, nil
}

func (f *fakeMarketplace) RejectRegistration(_ context.Context, id int64, reason string) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected[id] = reason
	return &models.Registration{ID: id, Status: models.RegistrationRejected, RejectionReason: reason}, nil
}

func (f *fakeMarketplace) CreateCourse(_ context.Context, p models.CoursePayload) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courses = append(f.courses, p)
	return &models.Course{ID: 42, Title: p.Title}, nil
}

func (f *fakeMarketplace) ListCourses(_ context.Context, query url.Values) (models.Page[models.Course], error) {
	atomic.AddInt32(&f.courseCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	return f.coursePage, nil
}

func (f *fakeMarketplace) Categories(context.Context) ([]models.Category, error) {
	atomic.AddInt32(&f.categoryCalls, 1)
	return []models.Category{{ID: 3, Name: "Programming"}}, nil
}

func (f *fakeMarketplace) Banks(context.Context) ([]models.Bank, error) {
	return []models.Bank{{Code: "VCB", Name: "Vietcombank"}}, nil
}

func (f *fakeMarketplace) AIHealthy(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aiHealthy
}

func (f *fakeMarketplace) ReviewProfile(ctx context.Context, _ models.AIProfileReviewRequest) (*models.AIReviewResult, error) {
	atomic.AddInt32(&f.aiCalls, 1)
	if f.aiGate != nil {
		select {
		case <-f.aiGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aiErr != nil {
		return nil, f.aiErr
	}
	cp := *f.aiResult
	return &cp, nil
}

func (f *fakeMarketplace) Me(context.Context) (*models.Profile, error) {
	return &models.Profile{ID: 7, Email: "instructor@example.com", FullName: "Ivy Instructor"}, nil
}

func (f *fakeMarketplace) Wallet(ctx context.Context) (*models.Wallet, error) {
	if f.walletErr != nil {
		return nil, f.walletErr
	}
	return &models.Wallet{Balance: 120.5, Currency: "USD"}, nil
}

func (f *fakeMarketplace) Transactions(ctx context.Context, page, size int) (models.Page[models.Transaction], error) {
	return models.Page[models.Transaction]{PageNumber: page, PageSize: size}, nil
}

func (f *fakeMarketplace) setAI(healthy bool, result *models.AIReviewResult, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aiHealthy, f.aiResult, f.aiErr = healthy, result, err
}

// fakeUploader counts calls and can hold an upload until released
type fakeUploader struct {
	calls   int32
	err     error
	started chan struct{}
	release chan struct{}
}

func (u *fakeUploader) Upload(ctx context.Context, file *upload.File) (models.UploadResult, error) {
	atomic.AddInt32(&u.calls, 1)
	if u.started != nil {
		u.started <- struct{}{}
	}
	if u.release != nil {
		<-u.release
	}
	if u.err != nil {
		return models.UploadResult{}, u.err
	}
	return models.UploadResult{FileURL: "http://cdn/" + string(file.Kind) + file.Extension, FileID: "f-" + string(file.Kind)}, nil
}

type sentDecision struct {
	regID    int64
	email    string
	decision models.ReviewDecisionType
	reason   string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentDecision
	err  error
}

func (m *fakeMailer) SendApplicationDecision(_ context.Context, reg *models.Registration, decision models.ReviewDecisionType, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentDecision{regID: reg.ID, email: reg.Email, decision: decision, reason: reason})
	return m.err
}

type harness struct {
	svc       *WizardService
	api       *fakeMarketplace
	uploader  *fakeUploader
	mailer    *fakeMailer
	sessions  *repositories.MemorySessionStore
	decisions *repositories.MemoryDecisionLog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		api:       newFakeMarketplace(),
		uploader:  &fakeUploader{},
		mailer:    &fakeMailer{},
		sessions:  repositories.NewMemorySessionStore(),
		decisions: repositories.NewMemoryDecisionLog(),
	}
	h.svc = NewWizardService(
		h.sessions,
		wizards.NewRegistry(),
		auth.NewAuthorizationService(),
		h.api,
		NewAIReviewService(h.api),
		NewUploadService(h.uploader),
		NewSubmitters(h.api, h.api, h.decisions, h.mailer),
	)
	return h
}

// completeProfile fills every registration step before the AI review
const completeProfile = `{
	"fullName": "Nguyen Van A",
	"phoneNumber": "+84 900 000 000",
	"country": "VN",
	"bio": "I teach distributed systems.",
	"headline": "Backend engineer",
	"expertiseAreas": ["Go"],
	"education": [{"institution": "HUST", "degree": "BSc", "fieldOfStudy": "CS", "startYear": 2012, "endYear": 2016}],
	"workExperience": [{"company": "Acme", "position": "Engineer", "startDate": "2016-07-01", "isCurrent": true}],
	"bankInfo": {"bankCode": "VCB", "accountHolder": "NGUYEN VAN A", "accountNumber": "0123456789"}
}`

const completeCourse = `{
	"title": "Go for backend engineers",
	"description": "Build production services in Go from scratch.",
	"categoryId": 3,
	"level": "BEGINNER",
	"language": "en",
	"sections": [{"title": "Intro", "lessons": [{"title": "Setup", "type": "ARTICLE", "content": "Install Go."}]}],
	"price": 19.99,
	"currency": "USD"
}`

// startRegistration opens a registration session with a complete profile
func startRegistration(t *testing.T, h *harness) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	view, err := h.svc.Create(ctx, instructor, models.WizardRegistration, nil)
	require.NoError(t, err)
	_, err = h.svc.Merge(ctx, instructor, view.ID, json.RawMessage(completeProfile))
	require.NoError(t, err)
	return view.ID
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func formOf[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
