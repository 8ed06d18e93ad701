package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, srv.Client())
}

func TestForwardsTokenAndDecodesData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/courses", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("categoryId"))
		writeEnvelope(w, http.StatusOK, true, "", models.Page[models.Course]{
			Items:      []models.Course{{ID: 1, Title: "Go"}},
			PageNumber: 1, PageSize: 12, TotalItems: 1, TotalPages: 1,
		})
	})

	ctx := WithToken(context.Background(), "tok")
	page, err := c.ListCourses(ctx, url.Values{"categoryId": {"3"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Go", page.Items[0].Title)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, apperrors.ErrResourceNotFound},
		{http.StatusForbidden, apperrors.ErrPermissionDenied},
		{http.StatusConflict, apperrors.ErrConflict},
		{http.StatusBadRequest, apperrors.ErrUpstreamRejected},
		{http.StatusBadGateway, apperrors.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, false, "upstream says no", nil)
			})
			_, err := c.GetRegistration(context.Background(), 7)
			assert.ErrorIs(t, err, tt.want)
			msg, _ := apperrors.MessageOf(err)
			assert.Equal(t, "upstream says no", msg)
		})
	}
}

func TestUnsuccessfulEnvelopeWithOKStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, "duplicate application", nil)
	})
	_, err := c.CreateRegistration(context.Background(), models.RegistrationPayload{})
	assert.ErrorIs(t, err, apperrors.ErrUpstreamRejected)
}

func TestUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.Categories(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.False(t, c.AIHealthy(context.Background()))
}

func TestRejectSendsReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/instructor-registrations/5/reject", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "missing documents", body["reason"])
		writeEnvelope(w, http.StatusOK, true, "", models.Registration{ID: 5, Status: models.RegistrationRejected})
	})

	reg, err := c.RejectRegistration(context.Background(), 5, "missing documents")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRejected, reg.Status)
}

func TestUploadStreamsMultipart(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%%EOF\n")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "certificate", r.FormValue("kind"))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, pdf, data)
		writeEnvelope(w, http.StatusOK, true, "", models.UploadResult{FileURL: "http://cdn/x.pdf", FileID: "x"})
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "c.pdf")
	_, _ = part.Write(pdf)
	require.NoError(t, mw.Close())
	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)

	file, err := upload.Inspect(models.UploadCertificate, form.File["file"][0])
	require.NoError(t, err)

	res, err := c.Upload(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "x", res.FileID)
}
