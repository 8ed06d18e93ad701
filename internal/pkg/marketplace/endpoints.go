package marketplace

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

const registrationsPath = "/api/instructor-registrations"

// CreateRegistration submits a new instructor application
func (c *Client) CreateRegistration(ctx context.Context, p models.RegistrationPayload) (*models.Registration, error) {
	reg, err := send[models.Registration](ctx, c, http.MethodPost, registrationsPath, p)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateRegistration resubmits an existing instructor application
func (c *Client) UpdateRegistration(ctx context.Context, id int64, p models.RegistrationPayload) (*models.Registration, error) {
	reg, err := send[models.Registration](ctx, c, http.MethodPut, fmt.Sprintf("%s/%d", registrationsPath, id), p)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// GetRegistration returns one instructor application
func (c *Client) GetRegistration(ctx context.Context, id int64) (*models.Registration, error) {
	reg, err := get[models.Registration](ctx, c, fmt.Sprintf("%s/%d", registrationsPath, id), nil)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListRegistrations returns one page of the admin application table
func (c *Client) ListRegistrations(ctx context.Context, query url.Values) (models.Page[models.RegistrationSummary], error) {
	return get[models.Page[models.RegistrationSummary]](ctx, c, registrationsPath, query)
}

// ApproveRegistration approves an application
func (c *Client) ApproveRegistration(ctx context.Context, id int64) (*models.Registration, error) {
	reg, err := send[models.Registration](ctx, c, http.MethodPost, fmt.Sprintf("%s/%d/approve", registrationsPath, id), nil)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// RejectRegistration rejects an application with a reason
func (c *Client) RejectRegistration(ctx context.Context, id int64, reason string) (*models.Registration, error) {
	body := map[string]string{"reason": reason}
	reg, err := send[models.Registration](ctx, c, http.MethodPost, fmt.Sprintf("%s/%d/reject", registrationsPath, id), body)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CreateCourse publishes a new course
func (c *Client) CreateCourse(ctx context.Context, p models.CoursePayload) (*models.Course, error) {
	course, err := send[models.Course](ctx, c, http.MethodPost, "/api/courses", p)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCourses returns one page of the course catalogue
func (c *Client) ListCourses(ctx context.Context, query url.Values) (models.Page[models.Course], error) {
	return get[models.Page[models.Course]](ctx, c, "/api/courses", query)
}

// Categories returns every course category
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	return get[[]models.Category](ctx, c, "/api/categories", nil)
}

// Banks returns the payout bank list
func (c *Client) Banks(ctx context.Context) ([]models.Bank, error) {
	return get[[]models.Bank](ctx, c, "/api/banks", nil)
}

// AIHealthy reports whether the AI review service is up. Any failure counts as unhealthy.
func (c *Client) AIHealthy(ctx context.Context) bool {
	var health struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/ai/health"}, &health)
	return err == nil && (health.Status == "" || health.Status == "ok" || health.Status == "healthy")
}

// ReviewProfile sends an instructor profile to the AI review service
func (c *Client) ReviewProfile(ctx context.Context, p models.AIProfileReviewRequest) (*models.AIReviewResult, error) {
	req, err := c.jsonRequest(http.MethodPost, "/api/ai/profile-review", p)
	if err != nil {
		return nil, err
	}
	req.timeout = c.cfg.AIReviewTimeout

	var result models.AIReviewResult
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the caller's profile
func (c *Client) Me(ctx context.Context) (*models.Profile, error) {
	p, err := get[models.Profile](ctx, c, "/api/users/me", nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Wallet returns the caller's wallet balance
func (c *Client) Wallet(ctx context.Context) (*models.Wallet, error) {
	w, err := get[models.Wallet](ctx, c, "/api/wallet/me", nil)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Transactions returns one page of the caller's wallet transactions
func (c *Client) Transactions(ctx context.Context, page, size int) (models.Page[models.Transaction], error) {
	query := url.Values{}
	query.Set("pageNumber", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(size))
	return get[models.Page[models.Transaction]](ctx, c, "/api/wallet/me/transactions", query)
}

// Upload streams an inspected file to the media endpoint. It implements upload.Uploader.
func (c *Client) Upload(ctx context.Context, file *upload.File) (models.UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("open upload: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer src.Close()
		err := func() error {
			if err := mw.WriteField("kind", string(file.Kind)); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", file.Filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, src); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	var result models.UploadResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/media/upload",
		body:        pr,
		contentType: mw.FormDataContentType(),
		timeout:     c.cfg.UploadTimeout,
	}, &result)
	// unblock the writer goroutine if the request ended early
	_ = pr.Close()
	if err != nil {
		return models.UploadResult{}, err
	}
	return result, nil
}
