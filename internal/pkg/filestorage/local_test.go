package filestorage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

func inspected(t *testing.T, content []byte) *upload.File {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "cert.pdf")
	require.NoError(t, err)
	_, _ = part.Write(content)
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	f, err := upload.Inspect(models.UploadCertificate, form.File["file"][0])
	require.NoError(t, err)
	return f
}

func TestUploadAndDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)

	content := []byte("%PDF-1.4\n%%EOF\n")
	res, err := ls.Upload(context.Background(), inspected(t, content))
	require.NoError(t, err)
	assert.NotEmpty(t, res.FileID)
	assert.Equal(t, "http://localhost:8080/uploads/certificate/"+res.FileID+".pdf", res.FileURL)

	stored, err := os.ReadFile(ls.GetFullPath(res.FileURL))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	require.NoError(t, ls.DeleteFile(res.FileURL))
	_, err = os.Stat(ls.GetFullPath(res.FileURL))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ls.DeleteFile(res.FileURL), "deleting twice is fine")
}

func TestUploadCancelled(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ls.Upload(ctx, inspected(t, []byte("%PDF-1.4\n%%EOF\n")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetFullPathRejectsTraversal(t *testing.T) {
	ls := &LocalStorage{basePath: "/data", baseURL: "http://h/uploads"}
	assert.Equal(t, "", ls.GetFullPath("http://h/uploads/../etc/passwd"))
	assert.Equal(t, "/data/avatar/x.png", ls.GetFullPath("http://h/uploads/avatar/x.png"))
}
