package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WizardKind names one of the wizard flows
type WizardKind string

const (
	WizardRegistration      WizardKind = "registration"
	WizardCourse            WizardKind = "course"
	WizardApplicationReview WizardKind = "application-review"
)

// SessionStatus is the submission latch of a wizard session
type SessionStatus string

const (
	SessionActive     SessionStatus = "ACTIVE"
	SessionSubmitting SessionStatus = "SUBMITTING"
	SessionSubmitted  SessionStatus = "SUBMITTED"
)

// WizardSession defines the model based on the 'wizard_sessions' table
type WizardSession struct {
	ID             uuid.UUID            `json:"id" db:"id"`
	Kind           WizardKind           `json:"kind" db:"kind"`
	OwnerID        int64                `json:"ownerId" db:"owner_id"`
	SubjectID      *int64               `json:"subjectId,omitempty" db:"subject_id"` // registration being edited or reviewed
	CurrentStep    int                  `json:"currentStep" db:"current_step"`
	Status         SessionStatus        `json:"status" db:"status"`
	FormData       json.RawMessage      `json:"formData" db:"form_data"`
	PendingUploads []string             `json:"pendingUploads" db:"pending_uploads"`
	// PendingSince holds when each pending upload started; stored alongside the keys
	PendingSince   map[string]time.Time `json:"-" db:"-"`
	Version        int64                `json:"version" db:"version"`
	CreatedAt      time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" db:"updated_at"`
}

// HasPending reports whether the upload slot key is in flight
func (s *WizardSession) HasPending(key string) bool {
	for _, k := range s.PendingUploads {
		if k == key {
			return true
		}
	}
	return false
}

// StartUpload marks key as in flight since at
func (s *WizardSession) StartUpload(key string, at time.Time) {
	s.PendingUploads = append(s.PendingUploads, key)
	if s.PendingSince == nil {
		s.PendingSince = make(map[string]time.Time)
	}
	s.PendingSince[key] = at
}

// FinishUpload clears the in-flight mark of key
func (s *WizardSession) FinishUpload(key string) {
	kept := make([]string, 0, len(s.PendingUploads))
	for _, k := range s.PendingUploads {
		if k != key {
			kept = append(kept, k)
		}
	}
	s.PendingUploads = kept
	delete(s.PendingSince, key)
}

// ExpireUploads drops the marks of uploads started before cutoff and returns their keys.
// A mark without a start time is stale.
func (s *WizardSession) ExpireUploads(cutoff time.Time) []string {
	var expired []string
	for _, k := range s.PendingUploads {
		if since, ok := s.PendingSince[k]; !ok || since.Before(cutoff) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		s.FinishUpload(k)
	}
	return expired
}

// Clone returns a deep copy that can be mutated without touching s
func (s *WizardSession) Clone() *WizardSession {
	c := *s
	c.FormData = append(json.RawMessage(nil), s.FormData...)
	c.PendingUploads = make([]string, len(s.PendingUploads))
	copy(c.PendingUploads, s.PendingUploads)
	if s.PendingSince != nil {
		c.PendingSince = make(map[string]time.Time, len(s.PendingSince))
		for k, v := range s.PendingSince {
			c.PendingSince[k] = v
		}
	}
	if s.SubjectID != nil {
		id := *s.SubjectID
		c.SubjectID = &id
	}
	return &c
}
