package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/rota-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimesheetHandler interface {
	// Store
	GetOrCreate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UpsertEntry(w http.ResponseWriter, r *http.Request)
	DeleteEntry(w http.ResponseWriter, r *http.Request)

	// Workflow
	SubmitMonth(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
	ApproveSite(w http.ResponseWriter, r *http.Request)

	// Reconciliation
	Autofill(w http.ResponseWriter, r *http.Request)
	Mismatches(w http.ResponseWriter, r *http.Request)

	// Aggregation view
	GetMonthView(w http.ResponseWriter, r *http.Request)
	AddMonthEntry(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{
		timesheetService: timesheetService,
	}
}

// actorOf writes a 401 and returns false when the actor middleware did not run
func actorOf(w http.ResponseWriter, r *http.Request) (membership.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing actor")
		return membership.Actor{}, false
	}
	return actor, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// GetOrCreate handles POST /timesheets
func (h *timesheetHandlerImpl) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var req timesheet.GetOrCreateRequest
	if !decodeJSON(w, r, &req, "GetOrCreate") {
		return
	}

	detail, err := h.timesheetService.GetOrCreate(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, detail)
}

// Get handles GET /timesheets/{id}
func (h *timesheetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	timesheetID := chi.URLParam(r, "id")
	if timesheetID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	detail, err := h.timesheetService.GetTimesheet(r.Context(), actor, timesheetID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, detail)
}

// Delete handles DELETE /timesheets/{id}
func (h *timesheetHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	timesheetID := chi.URLParam(r, "id")
	if timesheetID == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	if err := h.timesheetService.DeleteTimesheet(r.Context(), actor, timesheetID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet deleted", nil)
}

// UpsertEntry handles PUT /timesheets/{id}/entries/{day}
func (h *timesheetHandlerImpl) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		response.BadRequest(w, "invalid day parameter", nil)
		return
	}

	var req timesheet.UpsertEntryRequest
	if !decodeJSON(w, r, &req, "UpsertEntry") {
		return
	}
	req.TimesheetID = chi.URLParam(r, "id")
	req.Day = day

	entry, err := h.timesheetService.UpsertEntry(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entry)
}

// DeleteEntry handles DELETE /timesheets/entries/{entryID}
func (h *timesheetHandlerImpl) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	entryID := chi.URLParam(r, "entryID")
	if entryID == "" {
		response.BadRequest(w, "Entry ID is required", nil)
		return
	}

	if err := h.timesheetService.DeleteEntry(r.Context(), actor, entryID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entry deleted", nil)
}

// SubmitMonth handles POST /timesheets/month/submit
func (h *timesheetHandlerImpl) SubmitMonth(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var req timesheet.MonthRequest
	if !decodeJSON(w, r, &req, "SubmitMonth") {
		return
	}
	if req.WorkerID == "" {
		req.WorkerID = actor.WorkerID
	}

	resp, err := h.timesheetService.SubmitMonth(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Month submitted", resp)
}

// Return handles POST /timesheets/{id}/return
func (h *timesheetHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var req timesheet.ReturnTimesheetRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "Return") {
		return
	}
	req.TimesheetID = chi.URLParam(r, "id")

	resp, err := h.timesheetService.ReturnTimesheet(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet returned", resp)
}

// ApproveSite handles POST /timesheets/approvals
func (h *timesheetHandlerImpl) ApproveSite(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var req timesheet.ApproveSiteRequest
	if !decodeJSON(w, r, &req, "ApproveSite") {
		return
	}

	resp, err := h.timesheetService.ApproveSite(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site approved", resp)
}

// Autofill handles POST /timesheets/{id}/autofill
func (h *timesheetHandlerImpl) Autofill(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var req timesheet.AutofillRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "Autofill") {
		return
	}
	req.TimesheetID = chi.URLParam(r, "id")

	resp, err := h.timesheetService.Autofill(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Mismatches handles GET /timesheets/{id}/mismatches
func (h *timesheetHandlerImpl) Mismatches(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	resp, err := h.timesheetService.Mismatches(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetMonthView handles GET /timesheets/month?worker_id&month. worker_id
// defaults to the caller's own worker record.
func (h *timesheetHandlerImpl) GetMonthView(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	req := timesheet.MonthRequest{
		WorkerID: r.URL.Query().Get("worker_id"),
		Month:    r.URL.Query().Get("month"),
	}
	if req.WorkerID == "" {
		if actor.WorkerID == "" {
			response.HandleError(w, membership.ErrWorkerIdentityRequired)
			return
		}
		req.WorkerID = actor.WorkerID
	}

	view, err := h.timesheetService.GetMonthView(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, view)
}

// AddMonthEntry handles POST /timesheets/month/entries
func (h *timesheetHandlerImpl) AddMonthEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}

	var req timesheet.AddMonthEntryRequest
	if !decodeJSON(w, r, &req, "AddMonthEntry") {
		return
	}
	if req.WorkerID == "" {
		req.WorkerID = actor.WorkerID
	}

	entry, err := h.timesheetService.AddEntry(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Entry saved", entry)
}
