package controllers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/middleware"
)

// UploadService stores a file into a wizard upload slot
type UploadService interface {
	Upload(ctx context.Context, actor models.Actor, id uuid.UUID, slotName string, index, subIndex int, fh *multipart.FileHeader) (*dto.UploadResponse, error)
}

// UploadController handles wizard file uploads
type UploadController struct {
	uploadService UploadService
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

// Upload stores a file into a slot
// @Summary Upload a wizard file
// @Description Uploads an avatar, certificate document, course thumbnail or video into the named slot. The file type is detected from its content and checked against the slot's size limit before anything is stored.
// @Tags wizards
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param slot path string true "Slot name" Enums(avatar, certificate, thumbnail, promoVideo, lessonVideo)
// @Param file formData file true "File to upload"
// @Param index formData int false "List item index" minimum(0)
// @Param subIndex formData int false "Nested item index" minimum(0)
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse} "File uploaded"
// @Failure 400 {object} dto.ErrorResponse "File rejected or missing"
// @Failure 404 {object} dto.ErrorResponse "Session or slot not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed or slot already uploading"
// @Failure 502 {object} dto.ErrorResponse "Storage unavailable"
// @Router /wizards/{id}/uploads/{slot} [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	var req dto.UploadSlotRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File is required").WithField("file")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	res, err := c.uploadService.Upload(ctx.Request.Context(), actor, id, ctx.Param("slot"), req.Index, req.SubIndex, fh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(res, "File uploaded successfully"))
}
