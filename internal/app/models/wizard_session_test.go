package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUploadMarks(t *testing.T) {
	now := time.Now()
	s := &WizardSession{}
	s.StartUpload("avatar:0:0", now.Add(-time.Hour))
	s.StartUpload("certificate:1:0", now)
	assert.True(t, s.HasPending("avatar:0:0"))

	clone := s.Clone()
	clone.FinishUpload("certificate:1:0")
	assert.True(t, s.HasPending("certificate:1:0"), "clones do not share marks")

	expired := s.ExpireUploads(now.Add(-time.Minute))
	assert.Equal(t, []string{"avatar:0:0"}, expired)
	assert.Equal(t, []string{"certificate:1:0"}, s.PendingUploads)
	assert.NotContains(t, s.PendingSince, "avatar:0:0")

	s.PendingUploads = append(s.PendingUploads, "thumbnail:0:0")
	assert.Equal(t, []string{"thumbnail:0:0"}, s.ExpireUploads(now.Add(-time.Minute)), "a mark without a start time is stale")
}
