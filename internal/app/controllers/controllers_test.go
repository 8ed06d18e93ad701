package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/middleware"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var sessionID = uuid.MustParse("5f0c6f54-8c1e-4d8f-9a57-3b8a3f0e7d11")

// fakeWizards records the arguments of the last call
type fakeWizards struct {
	actor     models.Actor
	kind      models.WizardKind
	regID     *int64
	partial   json.RawMessage
	target    int
	list      string
	index     int
	field     string
	slot      string
	subIndex  int
	fileName  string
	decision  wizard.Decision
	err       error
	abandoned bool
}

func (f *fakeWizards) view() *dto.WizardSessionResponse {
	return &dto.WizardSessionResponse{ID: sessionID, Kind: models.WizardRegistration, CurrentStep: 1, TotalSteps: 8}
}

func (f *fakeWizards) Create(_ context.Context, actor models.Actor, kind models.WizardKind, regID *int64) (*dto.WizardSessionResponse, error) {
	f.actor, f.kind, f.regID = actor, kind, regID
	return f.view(), f.err
}

func (f *fakeWizards) Get(_ context.Context, actor models.Actor, _ uuid.UUID) (*dto.WizardSessionResponse, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeWizards) Merge(_ context.Context, _ models.Actor, _ uuid.UUID, partial json.RawMessage) (*dto.WizardSessionResponse, error) {
	f.partial = partial
	return f.view(), f.err
}

func (f *fakeWizards) Navigate(_ context.Context, _ models.Actor, _ uuid.UUID, target int) (*dto.NavigationResponse, error) {
	f.target = target
	return &dto.NavigationResponse{Decision: f.decision, Session: *f.view()}, f.err
}

func (f *fakeWizards) Next(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.NavigationResponse, error) {
	return f.Navigate(ctx, actor, id, 2)
}

func (f *fakeWizards) Back(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.NavigationResponse, error) {
	return f.Navigate(ctx, actor, id, 0)
}

func (f *fakeWizards) AddItem(_ context.Context, _ models.Actor, _ uuid.UUID, list string) (*dto.AddItemResponse, error) {
	f.list = list
	return &dto.AddItemResponse{Index: 1, Session: *f.view()}, f.err
}

func (f *fakeWizards) UpdateItem(_ context.Context, _ models.Actor, _ uuid.UUID, list string, index int, field string, value json.RawMessage) (*dto.WizardSessionResponse, error) {
	f.list, f.index, f.field, f.partial = list, index, field, value
	return f.view(), f.err
}

func (f *fakeWizards) RemoveItem(_ context.Context, _ models.Actor, _ uuid.UUID, list string, index int) (*dto.WizardSessionResponse, error) {
	f.list, f.index = list, index
	return f.view(), f.err
}

func (f *fakeWizards) StartReview(context.Context, models.Actor, uuid.UUID) (*dto.WizardSessionResponse, error) {
	return f.view(), f.err
}

func (f *fakeWizards) SkipReview(context.Context, models.Actor, uuid.UUID) (*dto.WizardSessionResponse, error) {
	return f.view(), f.err
}

func (f *fakeWizards) RetryReview(context.Context, models.Actor, uuid.UUID) (*dto.WizardSessionResponse, error) {
	return f.view(), f.err
}

func (f *fakeWizards) Submit(context.Context, models.Actor, uuid.UUID) (*dto.SubmitResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SubmitResponse{Kind: models.WizardRegistration}, nil
}

func (f *fakeWizards) Abandon(context.Context, models.Actor, uuid.UUID) error {
	f.abandoned = f.err == nil
	return f.err
}

func (f *fakeWizards) Upload(_ context.Context, _ models.Actor, _ uuid.UUID, slot string, index, subIndex int, fh *multipart.FileHeader) (*dto.UploadResponse, error) {
	f.slot, f.index, f.subIndex, f.fileName = slot, index, subIndex, fh.Filename
	return &dto.UploadResponse{Stored: true, Session: *f.view()}, f.err
}

// withActor stands in for JWTAuth
func withActor(role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(7))
		c.Set(middleware.ContextEmail, "seven@example.com")
		c.Set(middleware.ContextRoleType, string(role))
		c.Next()
	}
}

func wizardRouter(f *fakeWizards) *gin.Engine {
	wc := NewWizardController(f)
	uc := NewUploadController(f)
	router := gin.New()
	g := router.Group("/wizards", withActor(models.RoleInstructor))
	g.POST("/:id", wc.CreateSession)
	g.GET("/:id", wc.GetSession)
	g.PATCH("/:id", wc.MergeForm)
	g.DELETE("/:id", wc.Abandon)
	g.POST("/:id/navigate", wc.Navigate)
	g.POST("/:id/back", wc.Back)
	g.POST("/:id/lists/:list", wc.AddItem)
	g.PATCH("/:id/lists/:list/:index", wc.UpdateItem)
	g.DELETE("/:id/lists/:list/:index", wc.RemoveItem)
	g.POST("/:id/uploads/:slot", uc.Upload)
	g.POST("/:id/submit", wc.Submit)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var res dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestCreateSession(t *testing.T) {
	f := &fakeWizards{}
	router := wizardRouter(f)

	w := do(router, http.MethodPost, "/wizards/registration?registrationId=12", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.WizardRegistration, f.kind)
	require.NotNil(t, f.regID)
	assert.Equal(t, int64(12), *f.regID)
	assert.Equal(t, models.Actor{UserID: 7, Email: "seven@example.com", Role: models.RoleInstructor}, f.actor)

	w = do(router, http.MethodPost, "/wizards/course", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.WizardCourse, f.kind)
	assert.Nil(t, f.regID)

	w = do(router, http.MethodPost, "/wizards/course?registrationId=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionErrorsUseTheErrorMapping(t *testing.T) {
	f := &fakeWizards{err: apperrors.ErrSessionNotFound}
	router := wizardRouter(f)

	w := do(router, http.MethodGet, "/wizards/"+sessionID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/wizards/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.err = apperrors.ErrSubmitBlocked
	w = do(router, http.MethodPost, "/wizards/"+sessionID.String()+"/submit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMergeForm(t *testing.T) {
	f := &fakeWizards{}
	router := wizardRouter(f)
	path := "/wizards/" + sessionID.String()

	w := do(router, http.MethodPatch, path, `{"fullName": "A"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fullName": "A"}`, string(f.partial))

	w = do(router, http.MethodPatch, path, `{"fullName": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNavigateRejectionIsInformational(t *testing.T) {
	f := &fakeWizards{decision: wizard.Decision{Accepted: false, From: 1, To: 1, Reason: "step 1 (personal) is incomplete"}}
	router := wizardRouter(f)

	w := do(router, http.MethodPost, "/wizards/"+sessionID.String()+"/navigate", `{"target": 3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, f.target)

	res := decode(t, w)
	assert.True(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, dto.ErrorCodeNavigationRejected, res.Error.Code)
	assert.Equal(t, dto.ErrorSeverityInfo, res.Error.Severity)
	assert.Equal(t, "step 1 (personal) is incomplete", res.Error.Message)

	f.decision = wizard.Decision{Accepted: true, From: 2, To: 1}
	w = do(router, http.MethodPost, "/wizards/"+sessionID.String()+"/back", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w).Error)

	w = do(router, http.MethodPost, "/wizards/"+sessionID.String()+"/navigate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListItemRoutes(t *testing.T) {
	f := &fakeWizards{}
	router := wizardRouter(f)
	base := "/wizards/" + sessionID.String() + "/lists/education"

	w := do(router, http.MethodPost, base, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "education", f.list)

	w = do(router, http.MethodPatch, base+"/2", `{"field": "institution", "value": "MIT"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, f.index)
	assert.Equal(t, "institution", f.field)
	assert.JSONEq(t, `"MIT"`, string(f.partial))

	w = do(router, http.MethodDelete, base+"/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.index)

	w = do(router, http.MethodDelete, base+"/-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRoute(t *testing.T) {
	f := &fakeWizards{}
	router := wizardRouter(f)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("index", "1"))
	require.NoError(t, mw.WriteField("subIndex", "2"))
	part, err := mw.CreateFormFile("file", "intro.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("video"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/wizards/"+sessionID.String()+"/uploads/lessonVideo", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lessonVideo", f.slot)
	assert.Equal(t, 1, f.index)
	assert.Equal(t, 2, f.subIndex)
	assert.Equal(t, "intro.mp4", f.fileName)

	// no file part
	empty := &bytes.Buffer{}
	mw = multipart.NewWriter(empty)
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/wizards/"+sessionID.String()+"/uploads/avatar", empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAbandon(t *testing.T) {
	f := &fakeWizards{}
	router := wizardRouter(f)

	w := do(router, http.MethodDelete, "/wizards/"+sessionID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, f.abandoned)
}

func TestMissingActor(t *testing.T) {
	router := gin.New()
	router.GET("/wizards/:id", NewWizardController(&fakeWizards{}).GetSession)

	w := do(router, http.MethodGet, "/wizards/"+sessionID.String(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeLister struct {
	raw     url.Values
	current string
	changes map[string]string
	err     error
}

func (l *fakeLister) List(_ context.Context, raw url.Values) (*dto.PaginatedResponse, error) {
	l.raw = raw
	if l.err != nil {
		return nil, l.err
	}
	return &dto.PaginatedResponse{
		Items: []models.Course{{ID: 1}},
		Query: dto.QueryLinks{Canonical: "level=BEGINNER"},
	}, nil
}

func (l *fakeLister) ChangeQuery(current string, changes map[string]string) dto.QueryChangeResponse {
	l.current, l.changes = current, changes
	return dto.QueryChangeResponse{Query: "level=ADVANCED"}
}

type fakeReferences struct{}

func (fakeReferences) Categories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Programming"}}, nil
}

func (fakeReferences) Banks(context.Context) ([]models.Bank, error) {
	return nil, apperrors.ErrUpstreamUnavailable
}

func TestCatalogRoutes(t *testing.T) {
	courses := &fakeLister{}
	c := NewCatalogController(courses, fakeReferences{})
	router := gin.New()
	router.GET("/courses", c.ListCourses)
	router.POST("/courses/query", c.ChangeCourseQuery)
	router.GET("/categories", c.GetCategories)
	router.GET("/banks", c.GetBanks)

	w := do(router, http.MethodGet, "/courses?level=BEGINNER&pageNumber=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BEGINNER", courses.raw.Get("level"))
	assert.Contains(t, w.Body.String(), `"canonicalQuery":"level=BEGINNER"`)

	w = do(router, http.MethodPost, "/courses/query", `{"query": "level=BEGINNER", "changes": {"level": "ADVANCED"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "level=BEGINNER", courses.current)
	assert.Equal(t, map[string]string{"level": "ADVANCED"}, courses.changes)
	assert.Contains(t, w.Body.String(), `"query":"level=ADVANCED"`)

	w = do(router, http.MethodPost, "/courses/query", `{"query": "level=BEGINNER"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/banks", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	courses.err = apperrors.ErrUpstreamUnavailable
	w = do(router, http.MethodGet, "/courses", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type fakeDashboard struct {
	page, size int
}

func (d *fakeDashboard) Get(_ context.Context, page, size int) (*models.Dashboard, error) {
	d.page, d.size = page, size
	return &models.Dashboard{Wallet: models.Wallet{Balance: 10}}, nil
}

func TestDashboardPaging(t *testing.T) {
	d := &fakeDashboard{}
	router := gin.New()
	router.GET("/me/dashboard", withActor(models.RoleStudent), NewDashboardController(d).GetDashboard)

	w := do(router, http.MethodGet, "/me/dashboard?pageNumber=3&pageSize=500", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, d.page)
	assert.Equal(t, 10, d.size, "oversized pages fall back to the default")
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return apperrors.ErrUpstreamUnavailable }

	router := gin.New()
	router.GET("/health", NewHealthController(
		HealthCheck{Name: "postgres", Probe: up},
		HealthCheck{Name: "ai-review", Optional: true, Probe: down},
	).Health)
	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"DOWN"`)

	router = gin.New()
	router.GET("/health", NewHealthController(HealthCheck{Name: "postgres", Probe: down}).Health)
	w = do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decode(t, w).Success)
}
