package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	catalogdomain "github.com/dealdesk/dealdesk/internal/catalog/domain"
	customerdomain "github.com/dealdesk/dealdesk/internal/customer/domain"
	proposaldomain "github.com/dealdesk/dealdesk/internal/proposal/domain"
	taskdomain "github.com/dealdesk/dealdesk/internal/task/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware maps errors attached to the gin context onto a
// uniform JSON error body after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal error",
		}
	}

	var validation *ValidationErrors
	if errors.As(err, &validation) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  validation.Errors,
		}
	}

	if isNotFoundError(err) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	}

	if errors.Is(err, catalogdomain.ErrDuplicateCode) {
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal error",
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, proposaldomain.ErrNotFound),
		errors.Is(err, proposaldomain.ErrEntryNotFound),
		errors.Is(err, proposaldomain.ErrProductNotFound),
		errors.Is(err, proposaldomain.ErrCustomerNotFound),
		errors.Is(err, taskdomain.ErrNotFound):
		return true
	}
	return false
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidCode),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, proposaldomain.ErrInvalidQuantity),
		errors.Is(err, proposaldomain.ErrInvalidDiscount),
		errors.Is(err, proposaldomain.ErrInvalidRate),
		errors.Is(err, proposaldomain.ErrInvalidDays),
		errors.Is(err, proposaldomain.ErrInvalidStatus),
		errors.Is(err, proposaldomain.ErrInvalidName),
		errors.Is(err, taskdomain.ErrInvalidTitle),
		errors.Is(err, activitydomain.ErrInvalidTimeRange):
		return true
	}
	return false
}
