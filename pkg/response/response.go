package response

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse is the uniform success body.
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	var def errors.Definition
	if !stderrors.As(err, &def) {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case errors.TooManyRequests.Code:
		return http.StatusTooManyRequests
	case errors.Unauthorized.Code, errors.InvalidCredentials.Code,
		errors.InvalidRefreshToken.Code, errors.UserInactive.Code:
		return http.StatusUnauthorized
	case errors.Forbidden.Code, errors.ComplaintRecipientMismatch.Code:
		return http.StatusForbidden
	case errors.NotFound.Code, errors.UserNotFound.Code,
		errors.FormNotFound.Code, errors.SectionNotFound.Code,
		errors.NotificationNotFound.Code, errors.ComplaintNotFound.Code,
		errors.SurveyNotFound.Code, errors.TaskNotFound.Code:
		return http.StatusNotFound
	case errors.SurveyAlreadySubmitted.Code:
		return http.StatusConflict
	case errors.UploadTooLarge.Code:
		return http.StatusRequestEntityTooLarge
	case errors.Internal.Code:
		return http.StatusInternalServerError
	default:
		// the remaining definitions are validation or state precondition failures
		return http.StatusBadRequest
	}
}

func describe(err error) (string, string) {
	var def errors.Definition
	if stderrors.As(err, &def) {
		return def.Code, def.Message
	}
	return errors.Internal.Code, errors.Internal.Message
}

// Error writes err as an error body. Non-Definition errors are logged and masked.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)
	code, message := describe(err)
	if statusCode == http.StatusInternalServerError {
		logger.Logger.Error("Request failed",
			zap.String("path", string(c.Path())),
			zap.String("method", string(c.Method())),
			zap.Error(err),
		)
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

// Created writes a 201 with data.
func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

// Paginated writes one page of a list with {page, page_size, total} meta.
func Paginated(ctx context.Context, c *app.RequestContext, data interface{}, page, pageSize int, total int64) {
	SuccessWithMeta(ctx, c, data, map[string]interface{}{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}

// NoContent writes 204, used by DELETE.
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
