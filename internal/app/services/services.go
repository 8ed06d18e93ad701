package services

import (
	"context"
	"net/url"

	"github.com/yigit/skillmart/internal/app/models"
)

// Services defined in this package:
// - WizardService: wizard sessions (create, navigate, merge, list items, submit, abandon)
// - AIReviewService: the AI verification step of the registration wizard
// - UploadService: document and media uploads into wizard slots
// - CourseService / RegistrationService: listings with canonical query strings
// - ReferenceService: cached categories and banks
// - DashboardService: the profile/wallet aggregate
// - SessionSweeper: purges idle wizard sessions

// RegistrationAPI is the upstream instructor application API
type RegistrationAPI interface {
	CreateRegistration(ctx context.Context, p models.RegistrationPayload) (*models.Registration, error)
	UpdateRegistration(ctx context.Context, id int64, p models.RegistrationPayload) (*models.Registration, error)
	GetRegistration(ctx context.Context, id int64) (*models.Registration, error)
	ListRegistrations(ctx context.Context, query url.Values) (models.Page[models.RegistrationSummary], error)
	ApproveRegistration(ctx context.Context, id int64) (*models.Registration, error)
	RejectRegistration(ctx context.Context, id int64, reason string) (*models.Registration, error)
}

// CourseAPI is the upstream course API
type CourseAPI interface {
	CreateCourse(ctx context.Context, p models.CoursePayload) (*models.Course, error)
	ListCourses(ctx context.Context, query url.Values) (models.Page[models.Course], error)
}

// ReferenceAPI serves upstream lookup lists
type ReferenceAPI interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Banks(ctx context.Context) ([]models.Bank, error)
}

// ReviewAPI is the AI review service
type ReviewAPI interface {
	AIHealthy(ctx context.Context) bool
	ReviewProfile(ctx context.Context, p models.AIProfileReviewRequest) (*models.AIReviewResult, error)
}

// AccountAPI serves the caller's account data
type AccountAPI interface {
	Me(ctx context.Context) (*models.Profile, error)
	Wallet(ctx context.Context) (*models.Wallet, error)
	Transactions(ctx context.Context, page, size int) (models.Page[models.Transaction], error)
}

// Marketplace is every upstream API in one, as implemented by marketplace.Client
type Marketplace interface {
	RegistrationAPI
	CourseAPI
	ReferenceAPI
	ReviewAPI
	AccountAPI
}
