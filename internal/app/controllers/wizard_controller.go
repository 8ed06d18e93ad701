package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/middleware"
)

// WizardService is the session API the wizard pages drive
type WizardService interface {
	Create(ctx context.Context, actor models.Actor, kind models.WizardKind, registrationID *int64) (*dto.WizardSessionResponse, error)
	Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error)
	Merge(ctx context.Context, actor models.Actor, id uuid.UUID, partial json.RawMessage) (*dto.WizardSessionResponse, error)
	Navigate(ctx context.Context, actor models.Actor, id uuid.UUID, target int) (*dto.NavigationResponse, error)
	Next(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.NavigationResponse, error)
	Back(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.NavigationResponse, error)
	AddItem(ctx context.Context, actor models.Actor, id uuid.UUID, list string) (*dto.AddItemResponse, error)
	UpdateItem(ctx context.Context, actor models.Actor, id uuid.UUID, list string, index int, field string, value json.RawMessage) (*dto.WizardSessionResponse, error)
	RemoveItem(ctx context.Context, actor models.Actor, id uuid.UUID, list string, index int) (*dto.WizardSessionResponse, error)
	StartReview(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error)
	SkipReview(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error)
	RetryReview(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.WizardSessionResponse, error)
	Submit(ctx context.Context, actor models.Actor, id uuid.UUID) (*dto.SubmitResponse, error)
	Abandon(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

// WizardController handles wizard session operations
type WizardController struct {
	wizardService WizardService
}

// NewWizardController creates a new WizardController
func NewWizardController(wizardService WizardService) *WizardController {
	return &WizardController{
		wizardService: wizardService,
	}
}

// CreateSession opens a wizard session
// @Summary Start a wizard
// @Description Opens a new wizard session. registrationId pre-fills the registration wizard with an existing application, and names the application for the application-review wizard.
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Wizard kind" Enums(registration, course, application-review)
// @Param registrationId query int false "Existing registration ID" minimum(1)
// @Success 201 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Wizard session created"
// @Failure 400 {object} dto.ErrorResponse "Invalid parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Role cannot start this wizard"
// @Failure 404 {object} dto.ErrorResponse "Unknown wizard or registration"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /wizards/{kind} [post]
func (c *WizardController) CreateSession(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateWizardRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	// gin shares the first path segment between the kind and the session id routes
	kind := models.WizardKind(ctx.Param("id"))

	session, err := c.wizardService.Create(ctx.Request.Context(), actor, kind, req.RegistrationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(session, "Wizard session created"))
}

// GetSession returns a wizard session
// @Summary Get wizard session
// @Description Returns the session with its form data and the derived validity of every step
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Wizard session retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not the session owner"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /wizards/{id} [get]
func (c *WizardController) GetSession(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	session, err := c.wizardService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, ""))
}

// MergeForm merges partial form data into the session
// @Summary Update wizard form data
// @Description Shallow-merges the given fields into the form record. Read-only and unknown fields are rejected.
// @Tags wizards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param request body object true "Partial form data"
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Form data updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid form data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed or upload in progress"
// @Router /wizards/{id} [patch]
func (c *WizardController) MergeForm(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil || !json.Valid(body) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format")
		errorDetail = errorDetail.WithDetails("Request body must be a JSON object")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	session, err := c.wizardService.Merge(ctx.Request.Context(), actor, id, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, "Form data updated"))
}

// Navigate moves the step pointer
// @Summary Go to a wizard step
// @Description Moves to the target step. Moving forward requires every step before the target to be valid; a rejected move leaves the pointer in place and carries the reason.
// @Tags wizards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param request body dto.NavigateRequest true "Target step"
// @Success 200 {object} dto.APIResponse{data=dto.NavigationResponse} "Navigation decided"
// @Failure 400 {object} dto.ErrorResponse "Invalid target"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed"
// @Router /wizards/{id}/navigate [post]
func (c *WizardController) Navigate(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	var req dto.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	nav, err := c.wizardService.Navigate(ctx.Request.Context(), actor, id, req.Target)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondNavigation(ctx, nav)
}

// Next moves to the following step
// @Summary Go to the next wizard step
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.NavigationResponse} "Navigation decided"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed"
// @Router /wizards/{id}/next [post]
func (c *WizardController) Next(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	nav, err := c.wizardService.Next(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondNavigation(ctx, nav)
}

// Back moves to the previous step
// @Summary Go to the previous wizard step
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.NavigationResponse} "Navigation decided"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed"
// @Router /wizards/{id}/back [post]
func (c *WizardController) Back(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	nav, err := c.wizardService.Back(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondNavigation(ctx, nav)
}

// AddItem appends a blank item to a repeating list
// @Summary Add a list item
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param list path string true "List name" example(education)
// @Success 201 {object} dto.APIResponse{data=dto.AddItemResponse} "Item added"
// @Failure 400 {object} dto.ErrorResponse "Unknown or fixed list"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed"
// @Router /wizards/{id}/lists/{list} [post]
func (c *WizardController) AddItem(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	res, err := c.wizardService.AddItem(ctx.Request.Context(), actor, id, ctx.Param("list"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(res, "Item added"))
}

// UpdateItem replaces one field of a list item
// @Summary Update a list item field
// @Tags wizards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param list path string true "List name" example(education)
// @Param index path int true "Item index" minimum(0)
// @Param request body dto.UpdateItemRequest true "Field and value"
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Item updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid field, value or index"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed"
// @Router /wizards/{id}/lists/{list}/{index} [patch]
func (c *WizardController) UpdateItem(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}
	index, ok := indexParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	session, err := c.wizardService.UpdateItem(ctx.Request.Context(), actor, id, ctx.Param("list"), index, req.Field, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, "Item updated"))
}

// RemoveItem removes a list item
// @Summary Remove a list item
// @Description Removes the item at index. Lists never shrink below their minimum, and items before or at an upload in progress cannot be removed.
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param list path string true "List name" example(education)
// @Param index path int true "Item index" minimum(0)
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Item removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid index or list at its minimum"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed or upload in progress"
// @Router /wizards/{id}/lists/{list}/{index} [delete]
func (c *WizardController) RemoveItem(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}
	index, ok := indexParam(ctx)
	if !ok {
		return
	}

	session, err := c.wizardService.RemoveItem(ctx.Request.Context(), actor, id, ctx.Param("list"), index)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, "Item removed"))
}

// StartReview runs the AI review
// @Summary Run the AI profile review
// @Description Runs the AI review of the registration profile once. Repeated calls return the stored outcome.
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Review outcome"
// @Failure 400 {object} dto.ErrorResponse "The wizard has no AI review or the profile is incomplete"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed"
// @Router /wizards/{id}/ai-review [post]
func (c *WizardController) StartReview(ctx *gin.Context) {
	c.reviewAction(ctx, c.wizardService.StartReview, "AI review completed")
}

// SkipReview skips an unavailable AI review
// @Summary Skip the AI review
// @Description Allowed only while the AI service is unavailable
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Review skipped"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Review cannot be skipped"
// @Router /wizards/{id}/ai-review/skip [post]
func (c *WizardController) SkipReview(ctx *gin.Context) {
	c.reviewAction(ctx, c.wizardService.SkipReview, "AI review skipped")
}

// RetryReview retries an unavailable AI review
// @Summary Retry the AI review
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.WizardSessionResponse} "Review outcome"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Review cannot be retried"
// @Router /wizards/{id}/ai-review/retry [post]
func (c *WizardController) RetryReview(ctx *gin.Context) {
	c.reviewAction(ctx, c.wizardService.RetryReview, "AI review completed")
}

func (c *WizardController) reviewAction(
	ctx *gin.Context,
	action func(context.Context, models.Actor, uuid.UUID) (*dto.WizardSessionResponse, error),
	message string,
) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	session, err := action(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, message))
}

// Submit sends the completed wizard
// @Summary Submit the wizard
// @Description Sends the completed form to the backend exactly once. A failed submission leaves the session open for another attempt.
// @Tags wizards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SubmitResponse} "Wizard submitted"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed or upload in progress"
// @Failure 422 {object} dto.ErrorResponse "Wizard incomplete or rejected by the backend"
// @Failure 502 {object} dto.ErrorResponse "Backend unavailable"
// @Router /wizards/{id}/submit [post]
func (c *WizardController) Submit(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	res, err := c.wizardService.Submit(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(res, "Wizard submitted successfully"))
}

// Abandon discards a wizard session
// @Summary Abandon the wizard
// @Tags wizards
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 204 "Session abandoned"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Submission in progress"
// @Router /wizards/{id} [delete]
func (c *WizardController) Abandon(ctx *gin.Context) {
	actor, id, ok := sessionTarget(ctx)
	if !ok {
		return
	}

	if err := c.wizardService.Abandon(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// respondNavigation reports a gate rejection as an informational detail next to the
// unchanged session
func respondNavigation(ctx *gin.Context, nav *dto.NavigationResponse) {
	res := dto.NewSuccessResponse(nav, "")
	if !nav.Decision.Accepted {
		res.Message = "Navigation rejected"
		res.Error = dto.NewErrorDetail(dto.ErrorCodeNavigationRejected, nav.Decision.Reason).
			WithSeverity(dto.ErrorSeverityInfo)
	}
	ctx.JSON(http.StatusOK, res)
}

func actorOrAbort(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return actor, ok
}

func sessionTarget(ctx *gin.Context) (models.Actor, uuid.UUID, bool) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return actor, uuid.Nil, false
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid session ID").WithField("id")
		errorDetail = errorDetail.WithDetails("Session ID must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return actor, uuid.Nil, false
	}
	return actor, id, true
}

func indexParam(ctx *gin.Context) (int, bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid item index").WithField("index")
		errorDetail = errorDetail.WithDetails("Index must be a non-negative number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return index, true
}
