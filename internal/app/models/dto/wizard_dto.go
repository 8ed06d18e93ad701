package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

// WizardSessionResponse is the client view of a wizard session with derived step validity
type WizardSessionResponse struct {
	ID                uuid.UUID            `json:"id"`
	Kind              models.WizardKind    `json:"kind" example:"registration"`
	Status            models.SessionStatus `json:"status" example:"ACTIVE"`
	CurrentStep       int                  `json:"currentStep" example:"2"`
	TotalSteps        int                  `json:"totalSteps" example:"8"`
	Steps             []wizard.StepState   `json:"steps"`
	CanSubmit         bool                 `json:"canSubmit"`
	SubmitBlockReason string               `json:"submitBlockReason,omitempty"`
	FormData          json.RawMessage      `json:"formData" swaggertype:"object"`
	PendingUploads    []string             `json:"pendingUploads"`
	AIReview          *models.AIReview     `json:"aiReview,omitempty"`
	Version           int64                `json:"version"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// CreateWizardRequest optionally names an existing registration to edit or review
type CreateWizardRequest struct {
	RegistrationID *int64 `form:"registrationId" binding:"omitempty,min=1"`
}

// NavigateRequest moves the step pointer
type NavigateRequest struct {
	Target int `json:"target" binding:"required,min=1" example:"3"`
}

// NavigationResponse carries the gate decision and the resulting session
type NavigationResponse struct {
	Decision wizard.Decision       `json:"decision"`
	Session  WizardSessionResponse `json:"session"`
}

// UpdateItemRequest replaces one field of one list item
type UpdateItemRequest struct {
	Field string          `json:"field" binding:"required" example:"institution"`
	Value json.RawMessage `json:"value" binding:"required" swaggertype:"object"`
}

// AddItemResponse carries the index of the appended item
type AddItemResponse struct {
	Index   int                   `json:"index" example:"1"`
	Session WizardSessionResponse `json:"session"`
}

// UploadSlotRequest addresses the slot of a multipart upload
type UploadSlotRequest struct {
	Index    int `form:"index" binding:"min=0"`
	SubIndex int `form:"subIndex" binding:"min=0"`
}

// UploadResponse carries the stored file and the resulting session
type UploadResponse struct {
	Result  models.UploadResult   `json:"result"`
	Stored  bool                  `json:"stored"`
	Session WizardSessionResponse `json:"session"`
}

// SubmitResponse is the outcome of the terminal submission
type SubmitResponse struct {
	Kind   models.WizardKind `json:"kind" example:"course"`
	Result interface{}       `json:"result"`
}
