package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type CompletionHandler interface {
	SiteProgress(w http.ResponseWriter, r *http.Request)
	OrganizationProgress(w http.ResponseWriter, r *http.Request)
}

type completionHandlerImpl struct {
	completionService completion.CompletionService
}

func NewCompletionHandler(completionService completion.CompletionService) CompletionHandler {
	return &completionHandlerImpl{
		completionService: completionService,
	}
}

// SiteProgress handles GET /completion/sites/{siteID}?month
func (h *completionHandlerImpl) SiteProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	req := completion.ProgressRequest{
		SiteID: chi.URLParam(r, "siteID"),
		Month:  r.URL.Query().Get("month"),
	}
	progress, err := h.completionService.SiteProgress(r.Context(), actor, req)
	writeProgress(w, progress, err)
}

// OrganizationProgress handles GET /completion/organization?month
func (h *completionHandlerImpl) OrganizationProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	req := completion.ProgressRequest{Month: r.URL.Query().Get("month")}
	progress, err := h.completionService.OrganizationProgress(r.Context(), actor, req)
	writeProgress(w, progress, err)
}

// writeProgress degrades tracker failures to an unknown progress so the page
// still renders. Caller mistakes keep their own status.
func writeProgress(w http.ResponseWriter, progress completion.Progress, err error) {
	if err == nil {
		response.Success(w, progress)
		return
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, membership.ErrForbidden),
		errors.Is(err, membership.ErrMembershipNotFound):
		response.HandleError(w, err)
	default:
		slog.Warn("completion progress unavailable", "error", err)
		response.Success(w, completion.Unknown())
	}
}
