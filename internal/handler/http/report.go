package http

import (
	"net/http"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Discrepancy report of one timesheet
	ExportDiscrepancy(w http.ResponseWriter, r *http.Request)

	// Organisation completion report
	ExportCompletion(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportDiscrepancy handles GET /timesheets/{id}/mismatches/export
func (h *reportHandlerImpl) ExportDiscrepancy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	export, err := h.reportService.DiscrepancyReport(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, export.Filename, export.ContentType, export.Data)
}

// ExportCompletion handles GET /completion/organization/export?month
func (h *reportHandlerImpl) ExportCompletion(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	req := completion.ProgressRequest{Month: r.URL.Query().Get("month")}
	export, err := h.reportService.CompletionReport(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, export.Filename, export.ContentType, export.Data)
}
