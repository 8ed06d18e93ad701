package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/pkg/apperrors"
	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/pkg/reporting"
	"github.com/yigit/skillmart/internal/pkg/validation"
)

const reporterKey = "reporter"

// errorMapping ties a sentinel error to its HTTP status, error code and default message
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Wizard session not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrUnknownWizard, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Unknown wizard"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrUploadRejected, http.StatusBadRequest, dto.ErrorCodeUploadRejected, "Upload rejected"},
	{apperrors.ErrUploadPending, http.StatusConflict, dto.ErrorCodeUploadPending, "An upload is still in progress"},
	{apperrors.ErrSessionClosed, http.StatusConflict, dto.ErrorCodeSessionClosed, "The wizard is no longer active"},
	{apperrors.ErrReviewLocked, http.StatusConflict, dto.ErrorCodeReviewLocked, "The AI review cannot change"},
	{apperrors.ErrReviewNotAvailable, http.StatusBadRequest, dto.ErrorCodeBadRequest, "This wizard has no AI review"},
	{apperrors.ErrSubmitBlocked, http.StatusUnprocessableEntity, dto.ErrorCodeSubmitBlocked, "The wizard cannot be submitted yet"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Conflict"},
	{apperrors.ErrUpstreamRejected, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid, "The request was rejected"},
	{apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "A backend service is unavailable, please try again"},
	{apperrors.ErrDatabase, http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Database error"},
}

// HandleAPIError writes the error response for err. Database failures and unknown errors are
// logged and reported.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		message := m.message
		if msg, ok := apperrors.MessageOf(err); ok {
			message = msg
		}
		errorDetail := dto.NewErrorDetail(m.code, message)

		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			if ce.Field != "" {
				errorDetail = errorDetail.WithField(ce.Field)
			}
			if ce.Details != nil {
				errorDetail = errorDetail.WithDetails(ce.Details)
			}
		}
		if errors.Is(err, apperrors.ErrDatabase) {
			logger.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("Database failure")
			reporterFrom(c).RequestError(c.Request, err, map[string]interface{}{"route": c.FullPath()})
		} else if m.status >= http.StatusInternalServerError {
			logger.Ctx(c.Request.Context()).Warn().Err(err).Int("status", m.status).Msg("Upstream failure")
		}

		c.JSON(m.status, dto.NewErrorResponse(errorDetail))
		return
	}

	logger.Ctx(c.Request.Context()).Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	reporterFrom(c).RequestError(c.Request, err, map[string]interface{}{"route": c.FullPath()})

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

// HandleValidationError writes a 400 response for a request binding failure. Validator
// errors are reported per field.
func HandleValidationError(c *gin.Context, err error) {
	fields := validation.Translate(err)
	if len(fields) == 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format")
		errorDetail = errorDetail.WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	errs := dto.NewValidationErrors()
	for _, f := range fields {
		errs.AddError(f.Field, f.Message)
	}

	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
		WithField(fields[0].Field).
		WithDetails(errs.Errors)
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

func reporterFrom(c *gin.Context) reporting.Reporter {
	if v, ok := c.Get(reporterKey); ok {
		if r, ok := v.(reporting.Reporter); ok {
			return r
		}
	}
	return reporting.Noop{}
}
