package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

// UploadService hands inspected files to the storage collaborator
type UploadService struct {
	uploader upload.Uploader
}

// NewUploadService creates a new upload service instance
func NewUploadService(uploader upload.Uploader) *UploadService {
	return &UploadService{uploader: uploader}
}

// store uploads file. Collaborator failures surface as ErrUpstreamUnavailable.
func (u *UploadService) store(ctx context.Context, file *upload.File) (models.UploadResult, error) {
	start := time.Now()
	result, err := u.uploader.Upload(ctx, file)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("kind", string(file.Kind)).
			Str("filename", file.Filename).
			Int64("size", file.Size).
			Msg("Upload failed")

		message := "the file could not be uploaded, please try again"
		if upstream, ok := apperrors.MessageOf(err); ok {
			message = fmt.Sprintf("%s: %s", message, upstream)
		}
		return models.UploadResult{}, apperrors.NewCustomError(apperrors.ErrUpstreamUnavailable, message)
	}

	logger.Ctx(ctx).Info().
		Str("kind", string(file.Kind)).
		Str("fileID", result.FileID).
		Dur("latency", time.Since(start)).
		Msg("Upload stored")
	return result, nil
}

// Upload validates fh against the slot's limits, stores it and writes the result into the
// slot. A rejected file never reaches the collaborator. While the collaborator runs the slot
// is pending; a failed upload leaves the slot empty.
func (s *WizardService) Upload(ctx context.Context, actor models.Actor, id uuid.UUID, slotName string, index, subIndex int, fh *multipart.FileHeader) (*dto.UploadResponse, error) {
	session, def, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	sd, ok := def.Slot(slotName)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s wizard has no upload slot %q", def.Kind(), slotName))
	}
	if session.Status != models.SessionActive {
		return nil, closedError(session)
	}

	file, err := upload.Inspect(sd.Kind, fh)
	if err != nil {
		return nil, err
	}

	if sd.List == "" {
		index, subIndex = 0, 0
	}
	ref := wizards.SlotRef{Name: slotName, Index: index, SubIndex: subIndex}
	key := ref.Key()

	_, _, err = s.mutate(ctx, actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		if session.HasPending(key) {
			return apperrors.NewCustomError(apperrors.ErrUploadPending, "an upload for this slot is already in progress")
		}
		if _, exists, err := def.SetSlot(session.FormData, ref, models.UploadResult{}); err != nil {
			return err
		} else if !exists {
			return apperrors.NewCustomError(apperrors.ErrBadRequest,
				fmt.Sprintf("%s has no item at index %d/%d", slotName, index, subIndex)).WithField("index")
		}
		session.StartUpload(key, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, uploadErr := s.uploads.store(ctx, file)

	// The pending mark is released even when the client has gone away
	var stored bool
	session, def, err = s.mutate(context.WithoutCancel(ctx), actor, id, func(session *models.WizardSession, def wizards.Definition) error {
		session.FinishUpload(key)
		if uploadErr != nil {
			form, err := def.ClearSlot(session.FormData, ref)
			if err != nil {
				return err
			}
			session.FormData = form
			return nil
		}
		form, ok, err := def.SetSlot(session.FormData, ref, result)
		if err != nil {
			return err
		}
		session.FormData, stored = form, ok
		return nil
	})
	if uploadErr != nil {
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("sessionID", id.String()).Str("slot", key).
				Msg("Failed to release upload slot")
		}
		return nil, uploadErr
	}
	if err != nil {
		return nil, fmt.Errorf("store upload result: %w", err)
	}

	if !stored {
		logger.Ctx(ctx).Warn().Str("sessionID", id.String()).Str("slot", key).
			Msg("Upload finished after its slot was removed")
	}

	view, err := s.view(def, session)
	if err != nil {
		return nil, err
	}
	return &dto.UploadResponse{Result: result, Stored: stored, Session: *view}, nil
}
