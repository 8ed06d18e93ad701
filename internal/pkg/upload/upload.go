// Package upload checks files against the per-kind type and size limits before they are
// handed to a storage collaborator.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

const mb = 1 << 20

// Rule is the limit set of one upload kind
type Rule struct {
	MaxBytes int64
	Types    []string
}

// Rules holds the limits of every upload kind
var Rules = map[models.UploadKind]Rule{
	models.UploadCertificate: {MaxBytes: 5 * mb, Types: []string{"application/pdf", "image/jpeg", "image/png"}},
	models.UploadAvatar:      {MaxBytes: 2 * mb, Types: []string{"image/jpeg", "image/png", "image/webp"}},
	models.UploadThumbnail:   {MaxBytes: 5 * mb, Types: []string{"image/jpeg", "image/png", "image/webp"}},
	models.UploadVideo:       {MaxBytes: 100 * mb, Types: []string{"video/mp4", "video/webm", "video/quicktime"}},
}

// File is an upload that passed inspection
type File struct {
	Kind      models.UploadKind
	Filename  string
	Size      int64
	MIME      string
	Extension string
	header    *multipart.FileHeader
}

// Open returns the content of the file from the start
func (f *File) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// Uploader stores an inspected file and returns its remote location
type Uploader interface {
	Upload(ctx context.Context, file *File) (models.UploadResult, error)
}

// Inspect validates fh against the rule of kind. The MIME type is sniffed from the content;
// the client supplied Content-Type is ignored.
func Inspect(kind models.UploadKind, fh *multipart.FileHeader) (*File, error) {
	rule, ok := Rules[kind]
	if !ok {
		return nil, rejected(fmt.Sprintf("unknown upload kind %q", kind))
	}
	if fh == nil || fh.Size == 0 {
		return nil, rejected("file is empty")
	}
	if fh.Size > rule.MaxBytes {
		return nil, rejected(fmt.Sprintf("file is %s, the limit for %s uploads is %s",
			humanSize(fh.Size), kind, humanSize(rule.MaxBytes))).
			WithDetails(map[string]interface{}{"size": fh.Size, "maxBytes": rule.MaxBytes})
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("sniff upload type: %w", err)
	}
	if !mimetype.EqualsAny(detected.String(), rule.Types...) {
		return nil, rejected(fmt.Sprintf("%s files are not accepted for %s uploads", detected.String(), kind)).
			WithDetails(map[string]interface{}{"detected": detected.String(), "allowed": rule.Types})
	}

	return &File{
		Kind:      kind,
		Filename:  fh.Filename,
		Size:      fh.Size,
		MIME:      detected.String(),
		Extension: detected.Extension(),
		header:    fh,
	}, nil
}

func rejected(message string) *apperrors.CustomError {
	return apperrors.NewCustomError(apperrors.ErrUploadRejected, message)
}

func humanSize(n int64) string {
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d KB", (n+1023)/1024)
}
