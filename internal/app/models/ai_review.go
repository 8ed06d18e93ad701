package models

import "time"

// AIReviewState is the latch of the AI verification step
type AIReviewState string

const (
	AIReviewNone        AIReviewState = "NONE"
	AIReviewAccepted    AIReviewState = "ACCEPTED"
	AIReviewRejected    AIReviewState = "REJECTED"
	AIReviewFailed      AIReviewState = "FAILED"
	AIReviewUnavailable AIReviewState = "UNAVAILABLE"
	AIReviewSkipped     AIReviewState = "SKIPPED"
)

// AIReviewSection is the score of one section of the profile
type AIReviewSection struct {
	Section string   `json:"section" example:"professional"`
	Score   float64  `json:"score" example:"7.5"`
	Issues  []string `json:"issues"`
}

// AIReviewResult is the response of the AI profile-review endpoint
type AIReviewResult struct {
	IsAccepted   bool              `json:"isAccepted"`
	OverallScore float64           `json:"overallScore"`
	Summary      string            `json:"summary"`
	Sections     []AIReviewSection `json:"sections"`
}

// AIReview is the stored outcome of the AI verification step
type AIReview struct {
	State      AIReviewState   `json:"state"`
	Result     *AIReviewResult `json:"result,omitempty"`
	Message    string          `json:"message,omitempty"`
	ReviewedAt *time.Time      `json:"reviewedAt,omitempty"`
}

// Passed reports whether the gate of the AI step is open
func (r AIReview) Passed() bool {
	return r.State == AIReviewAccepted || r.State == AIReviewSkipped
}

// AIProfileReviewRequest is the profile subset sent for review
type AIProfileReviewRequest struct {
	FullName       string           `json:"fullName"`
	Bio            string           `json:"bio"`
	Headline       string           `json:"headline"`
	ExpertiseAreas []string         `json:"expertiseAreas"`
	Education      []Education      `json:"education"`
	Certificates   []Certificate    `json:"certificates"`
	WorkExperience []WorkExperience `json:"workExperience"`
}
