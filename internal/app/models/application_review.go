package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewDecisionType is the admin verdict on an application
type ReviewDecisionType string

const (
	DecisionApprove ReviewDecisionType = "APPROVE"
	DecisionReject  ReviewDecisionType = "REJECT"
)

// CertificateVerdict is the admin verdict on one certificate document
type CertificateVerdict string

const (
	VerdictVerified CertificateVerdict = "VERIFIED"
	VerdictInvalid  CertificateVerdict = "INVALID"
)

// CertificateCheck pairs a certificate of the application with the admin verdict
type CertificateCheck struct {
	CertificateName string             `json:"certificateName"`
	DocumentURL     string             `json:"documentUrl"`
	Verdict         CertificateVerdict `json:"verdict"`
	Note            string             `json:"note"`
}

// ApplicationReviewForm is the form record of the admin review wizard.
// Application is a read-only snapshot of the registration under review.
type ApplicationReviewForm struct {
	Application       Registration       `json:"application"`
	ProfileChecked    bool               `json:"profileChecked"`
	CertificateChecks []CertificateCheck `json:"certificateChecks"`
	Decision          ReviewDecisionType `json:"decision"`
	Reason            string             `json:"reason"`
}

// ReviewDecision defines the audit model based on the 'review_decisions' table
type ReviewDecision struct {
	ID             int64              `json:"id" db:"id"`
	RegistrationID int64              `json:"registrationId" db:"registration_id"`
	ReviewerID     int64              `json:"reviewerId" db:"reviewer_id"`
	SessionID      uuid.UUID          `json:"sessionId" db:"session_id"`
	Decision       ReviewDecisionType `json:"decision" db:"decision"`
	Reason         string             `json:"reason,omitempty" db:"reason"`
	CreatedAt      time.Time          `json:"createdAt" db:"created_at"`
}
