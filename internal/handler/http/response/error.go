package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth boundary
	case errors.Is(err, jwt.ErrInvalidClaims):
		Unauthorized(w, "Invalid access token")
	case errors.Is(err, membership.ErrMembershipNotFound):
		Forbidden(w, "No membership found for this user")
	case errors.Is(err, membership.ErrForbidden):
		Forbidden(w, "You do not have access to this worker or site")
	case errors.Is(err, membership.ErrWorkerIdentityRequired):
		Forbidden(w, "A worker identity is required for this action")

	// Lifecycle conflicts
	case errors.Is(err, timesheet.ErrSiteAlreadyApproved):
		Error(w, http.StatusConflict, CodeInvalidTransition, "Site portion already approved", nil)
	case errors.Is(err, timesheet.ErrNotEditable):
		Error(w, http.StatusConflict, CodeNotEditable, "Timesheet is not editable in its current status", nil)
	case errors.Is(err, timesheet.ErrInvalidTransition):
		Error(w, http.StatusConflict, CodeInvalidTransition, "Status transition not allowed", nil)

	// Not found
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrEntryNotFound):
		NotFound(w, "Timesheet entry not found")
	case errors.Is(err, timesheet.ErrNoTimesheetsForMonth):
		NotFound(w, "Worker has no timesheets for this month")
	case errors.Is(err, membership.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, membership.ErrSiteNotFound):
		NotFound(w, "Site not found")
	case errors.Is(err, roster.ErrShiftTypeNotFound):
		NotFound(w, "Shift type not found")

	// Site selection
	case errors.Is(err, timesheet.ErrSiteRequired):
		ValidationError(w, map[string]string{"site_id": "site_id is required for floating workers"})
	case errors.Is(err, timesheet.ErrSiteNotAssigned):
		ValidationError(w, map[string]string{"site_id": "site_id does not match the worker's fixed site"})
	case errors.Is(err, membership.ErrUnsupportedAssignment):
		BadRequest(w, "Worker has no fixed or floating assignment", nil)

	case errors.Is(err, report.ErrProgressUnknown):
		InternalServerError(w, "Completion progress is not available")
	case errors.Is(err, report.ErrReportGenerationFailed):
		slog.Error("report generation failed", "error", err)
		InternalServerError(w, "Failed to generate report")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
