package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/authorization"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	productdomain "github.com/sewtrack/sewtrack/internal/product/domain"
	ratecarddomain "github.com/sewtrack/sewtrack/internal/ratecard/domain"
	reportingdomain "github.com/sewtrack/sewtrack/internal/reporting/domain"
	taskdomain "github.com/sewtrack/sewtrack/internal/task/domain"
	tenantdomain "github.com/sewtrack/sewtrack/internal/tenant/domain"
	workrecorddomain "github.com/sewtrack/sewtrack/internal/workrecord/domain"
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

type payload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error payload `json:"error"`
}

var (
	errInvalidRequest  = errors.New("invalid_request")
	errNoTenantContext = errors.New("no_tenant_context")
)

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

		status, p := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: p})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errorPayload(typ, message string, verrs []ValidationError) errorResponse {
	return errorResponse{Error: payload{Type: typ, Message: message, Errors: verrs}}
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

func mapError(err error) (int, payload) {
	if err == nil {
		return http.StatusInternalServerError, payload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, payload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, payload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, tenantdomain.ErrNoActor),
		errors.Is(err, workrecorddomain.ErrNoActor):
		return http.StatusUnauthorized, payload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, tenantdomain.ErrAccessDenied),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, payload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, payload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, payload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ratecarddomain.ErrNoRateCard):
		return http.StatusUnprocessableEntity, payload{
			Type:    "no_rate_card",
			Message: "no active rate card entry for this product and task",
		}
	case errors.Is(err, workrecorddomain.ErrNoEmployee):
		return http.StatusUnprocessableEntity, payload{
			Type:    "no_employee_profile",
			Message: "actor has no active employee profile in this tenant",
		}
	default:
		return http.StatusInternalServerError, payload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, tenantdomain.ErrInvalidID),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, employeedomain.ErrInvalidID),
		errors.Is(err, employeedomain.ErrInvalidName),
		errors.Is(err, employeedomain.ErrInvalidPosition),
		errors.Is(err, employeedomain.ErrInvalidEmploymentType),
		errors.Is(err, employeedomain.ErrInvalidRate),
		errors.Is(err, employeedomain.ErrInvalidHireDate),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidCode),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidCategory),
		errors.Is(err, taskdomain.ErrInvalidID),
		errors.Is(err, taskdomain.ErrInvalidCode),
		errors.Is(err, taskdomain.ErrInvalidName),
		errors.Is(err, taskdomain.ErrInvalidCategory),
		errors.Is(err, ratecarddomain.ErrInvalidID),
		errors.Is(err, ratecarddomain.ErrInvalidPricing),
		errors.Is(err, ratecarddomain.ErrInvalidTier),
		errors.Is(err, workrecorddomain.ErrInvalidID),
		errors.Is(err, workrecorddomain.ErrInvalidQuantity),
		errors.Is(err, workrecorddomain.ErrInvalidWorkDate),
		errors.Is(err, workrecorddomain.ErrMissingReason),
		errors.Is(err, workrecorddomain.ErrBulkLimitExceeded),
		errors.Is(err, reportingdomain.ErrInvalidID),
		errors.Is(err, reportingdomain.ErrInvalidRange),
		errors.Is(err, auditdomain.ErrInvalidCursor):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, employeedomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, taskdomain.ErrNotFound),
		errors.Is(err, ratecarddomain.ErrNotFound),
		errors.Is(err, ratecarddomain.ErrCrossTenantReference),
		errors.Is(err, workrecorddomain.ErrNotFound),
		errors.Is(err, workrecorddomain.ErrCrossTenantReference),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, workrecorddomain.ErrInvalidState),
		errors.Is(err, productdomain.ErrDuplicateCode),
		errors.Is(err, taskdomain.ErrDuplicateCode),
		errors.Is(err, ratecarddomain.ErrDuplicateLink),
		errors.Is(err, employeedomain.ErrActorAlreadyEmployee),
		errors.Is(err, tenantdomain.ErrTenantInactive),
		errors.Is(err, errNoTenantContext),
		errors.Is(err, tenantdomain.ErrNoTenantContext),
		errors.Is(err, employeedomain.ErrNoTenantContext),
		errors.Is(err, productdomain.ErrNoTenantContext),
		errors.Is(err, taskdomain.ErrNoTenantContext),
		errors.Is(err, ratecarddomain.ErrNoTenantContext),
		errors.Is(err, workrecorddomain.ErrNoTenantContext),
		errors.Is(err, reportingdomain.ErrNoTenantContext),
		errors.Is(err, auditdomain.ErrNoTenantContext):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
