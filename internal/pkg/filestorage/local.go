// Package filestorage keeps uploaded files on the local filesystem for development setups
// that have no media service.
package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The public URL the base path is served under
}

// NewLocalStorage creates a new LocalStorage instance.
// Files are written below basePath and addressed as baseURL/<kind>/<id><ext>.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload implements upload.Uploader
func (ls *LocalStorage) Upload(ctx context.Context, file *upload.File) (models.UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(ls.basePath, string(file.Kind))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	id := uuid.New().String()
	name := id + file.Extension
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, readerWithContext{ctx: ctx, r: src}); err != nil {
		// Remove the partially written file
		_ = os.Remove(dstPath)
		return models.UploadResult{}, fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Ctx(ctx).Info().
		Str("filename", file.Filename).
		Str("kind", string(file.Kind)).
		Str("saved_as", name).
		Msg("File saved successfully")

	return models.UploadResult{
		FileURL: ls.baseURL + "/" + string(file.Kind) + "/" + name,
		FileID:  id,
	}, nil
}

// DeleteFile removes a stored file by the URL returned from Upload.
// A missing file is not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	path := ls.GetFullPath(fileURL)
	if path == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetFullPath returns the filesystem path of a URL returned from Upload
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.TrimPrefix(rel, "/")
	kind := filepath.Dir(rel)
	name := filepath.Base(rel)
	if kind == "." || strings.Contains(kind, "..") || name == "." || name == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, kind, name)
}

// readerWithContext stops a copy once ctx is done
type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
