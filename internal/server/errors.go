package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/routewise/routewise/internal/audit/domain"
	authdomain "github.com/routewise/routewise/internal/auth/domain"
	"github.com/routewise/routewise/internal/authorization"
	driverdomain "github.com/routewise/routewise/internal/driver/domain"
	hotelbookingdomain "github.com/routewise/routewise/internal/hotelbooking/domain"
	invoicedomain "github.com/routewise/routewise/internal/invoice/domain"
	moduledomain "github.com/routewise/routewise/internal/module/domain"
	reservationdomain "github.com/routewise/routewise/internal/reservation/domain"
	tenantdomain "github.com/routewise/routewise/internal/tenant/domain"
	tourbookingdomain "github.com/routewise/routewise/internal/tourbooking/domain"
	userdomain "github.com/routewise/routewise/internal/user/domain"
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

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal_error")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
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

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	_ = status
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, moduledomain.ErrModuleDisabled):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, tenantdomain.ErrSlugTaken),
		errors.Is(err, tenantdomain.ErrMemberExists),
		errors.Is(err, userdomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isTransitionError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "invalid status transition",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, moduledomain.ErrModuleNotDefined):
		// Unknown module names are a deployment defect, not a client error.
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
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
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidID),
		errors.Is(err, tenantdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidPassword),
		errors.Is(err, userdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrInvalidID),
		errors.Is(err, userdomain.ErrInvalidPermission),
		errors.Is(err, moduledomain.ErrInvalidID),
		errors.Is(err, reservationdomain.ErrInvalidID),
		errors.Is(err, reservationdomain.ErrInvalidPassenger),
		errors.Is(err, reservationdomain.ErrInvalidRoute),
		errors.Is(err, reservationdomain.ErrInvalidSchedule),
		errors.Is(err, reservationdomain.ErrInvalidPrice),
		errors.Is(err, reservationdomain.ErrInvalidStatus),
		errors.Is(err, reservationdomain.ErrDriverInactive),
		errors.Is(err, driverdomain.ErrInvalidID),
		errors.Is(err, driverdomain.ErrInvalidName),
		errors.Is(err, driverdomain.ErrInvalidSeats),
		errors.Is(err, tourbookingdomain.ErrInvalidID),
		errors.Is(err, tourbookingdomain.ErrInvalidTour),
		errors.Is(err, tourbookingdomain.ErrInvalidGuest),
		errors.Is(err, tourbookingdomain.ErrInvalidDate),
		errors.Is(err, tourbookingdomain.ErrInvalidPrice),
		errors.Is(err, tourbookingdomain.ErrInvalidStatus),
		errors.Is(err, hotelbookingdomain.ErrInvalidID),
		errors.Is(err, hotelbookingdomain.ErrInvalidHotel),
		errors.Is(err, hotelbookingdomain.ErrInvalidGuest),
		errors.Is(err, hotelbookingdomain.ErrInvalidStay),
		errors.Is(err, hotelbookingdomain.ErrInvalidPrice),
		errors.Is(err, hotelbookingdomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidBillTo),
		errors.Is(err, invoicedomain.ErrInvalidItems),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isTransitionError(err error) bool {
	switch {
	case errors.Is(err, reservationdomain.ErrInvalidTransition),
		errors.Is(err, tourbookingdomain.ErrInvalidTransition),
		errors.Is(err, hotelbookingdomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNoTenant),
		errors.Is(err, tenantdomain.ErrMemberMissing),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrGrantMissing),
		errors.Is(err, reservationdomain.ErrNotFound),
		errors.Is(err, reservationdomain.ErrDriverNotFound),
		errors.Is(err, driverdomain.ErrNotFound),
		errors.Is(err, tourbookingdomain.ErrNotFound),
		errors.Is(err, hotelbookingdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
