package timesheet

import (
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
)

// validateMonth appends a month error and returns the parsed period
func validateMonth(errs *validator.ValidationErrors, month string) Period {
	if validator.IsEmpty(month) {
		errs.Add("month", "month is required")
		return Period{}
	}
	p, err := ParsePeriod(month)
	if err != nil {
		errs.Add("month", "month must use YYYY-MM format")
		return Period{}
	}
	return p
}

func validateEntryFields(errs *validator.ValidationErrors, day int, hours float64, note *string) {
	if day < 1 || day > 31 {
		errs.Add("day", "day must be between 1 and 31")
	}
	if hours < 0 {
		errs.Add("hours", "hours must not be negative")
	}
	if hours > 24 {
		errs.Add("hours", "hours must not exceed 24")
	}
	if note != nil && len(*note) > 1000 {
		errs.Add("note", "note must not exceed 1000 characters")
	}
}

type GetOrCreateRequest struct {
	SiteID   string `json:"site_id" validate:"required"`
	WorkerID string `json:"worker_id" validate:"required"`
	Month    string `json:"month" validate:"required"`

	Period Period `json:"-"`
}

func (r *GetOrCreateRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	r.Period = validateMonth(&errs, r.Month)
	return errs.OrNil()
}

type UpsertEntryRequest struct {
	TimesheetID string  `json:"-"`
	Day         int     `json:"day"`
	ShiftCode   *string `json:"shift_code,omitempty"`
	Hours       float64 `json:"hours"`
	Note        *string `json:"note,omitempty"`
}

func (r *UpsertEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TimesheetID) {
		errs.Add("timesheet_id", "timesheet_id is required")
	}
	validateEntryFields(&errs, r.Day, r.Hours, r.Note)
	if r.ShiftCode != nil && validator.IsEmpty(*r.ShiftCode) {
		errs.Add("shift_code", "shift_code must not be empty when provided")
	}

	return errs.OrNil()
}

// AddMonthEntryRequest adds an entry through the month view; SiteID is mandatory for floating workers.
type AddMonthEntryRequest struct {
	SiteID    string  `json:"site_id"`
	WorkerID  string  `json:"worker_id" validate:"required"`
	Month     string  `json:"month" validate:"required"`
	Day       int     `json:"day"`
	ShiftCode *string `json:"shift_code,omitempty"`
	Hours     float64 `json:"hours"`
	Note      *string `json:"note,omitempty"`

	Period Period `json:"-"`
}

func (r *AddMonthEntryRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	r.Period = validateMonth(&errs, r.Month)
	validateEntryFields(&errs, r.Day, r.Hours, r.Note)
	if r.ShiftCode != nil && validator.IsEmpty(*r.ShiftCode) {
		errs.Add("shift_code", "shift_code must not be empty when provided")
	}
	return errs.OrNil()
}

type MonthRequest struct {
	WorkerID string `json:"worker_id" validate:"required"`
	Month    string `json:"month" validate:"required"`

	Period Period `json:"-"`
}

func (r *MonthRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	r.Period = validateMonth(&errs, r.Month)
	return errs.OrNil()
}

type ReturnTimesheetRequest struct {
	TimesheetID string  `json:"-"`
	Reason      *string `json:"reason,omitempty"`
}

func (r *ReturnTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.TimesheetID) {
		errs.Add("timesheet_id", "timesheet_id is required")
	}
	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
	return errs.OrNil()
}

type ApproveSiteRequest struct {
	SiteID   string `json:"site_id" validate:"required"`
	WorkerID string `json:"worker_id" validate:"required"`
	Month    string `json:"month" validate:"required"`

	Period Period `json:"-"`
}

func (r *ApproveSiteRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	r.Period = validateMonth(&errs, r.Month)
	return errs.OrNil()
}

type AutofillRequest struct {
	TimesheetID     string `json:"-"`
	OverwriteManual bool   `json:"overwrite_manual"`
}

// ===== Responses =====

type TimesheetResponse struct {
	ID           string     `json:"id"`
	SiteID       string     `json:"site_id"`
	WorkerID     string     `json:"worker_id"`
	Month        Period     `json:"month"`
	Status       Status     `json:"status"`
	Editable     bool       `json:"editable"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ForwardedAt  *time.Time `json:"forwarded_at,omitempty"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	ReturnReason *string    `json:"return_reason,omitempty"`
}

func NewTimesheetResponse(ts Timesheet) TimesheetResponse {
	return TimesheetResponse{
		ID:           ts.ID,
		SiteID:       ts.SiteID,
		WorkerID:     ts.WorkerID,
		Month:        ts.Period,
		Status:       ts.Status,
		Editable:     IsEditable(ts),
		SubmittedAt:  ts.SubmittedAt,
		ForwardedAt:  ts.ForwardedAt,
		ReturnedAt:   ts.ReturnedAt,
		ReturnReason: ts.ReturnReason,
	}
}

type EntryResponse struct {
	ID          string      `json:"id"`
	TimesheetID string      `json:"timesheet_id"`
	SiteID      string      `json:"site_id"`
	Day         int         `json:"day"`
	ShiftCode   *string     `json:"shift_code"`
	Hours       float64     `json:"hours"`
	Note        *string     `json:"note"`
	Source      EntrySource `json:"source"`
	Editable    bool        `json:"editable"`
}

func NewEntryResponse(e Entry, editable bool) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		TimesheetID: e.TimesheetID,
		SiteID:      e.SiteID,
		Day:         e.Day,
		ShiftCode:   e.ShiftCode,
		Hours:       e.Hours,
		Note:        e.Note,
		Source:      e.Source,
		Editable:    editable,
	}
}

type TimesheetDetailResponse struct {
	Timesheet     TimesheetResponse `json:"timesheet"`
	Entries       []EntryResponse   `json:"entries"`
	Tally         Tally             `json:"tally"`
	MismatchCount int               `json:"mismatch_count"`
}

// MonthViewResponse is the unified editing surface for a worker-month
type MonthViewResponse struct {
	WorkerID       string              `json:"worker_id"`
	Month          Period              `json:"month"`
	Classification string              `json:"classification"`
	FixedSiteID    *string             `json:"fixed_site_id,omitempty"`
	Timesheets     []TimesheetResponse `json:"timesheets"`
	Entries        []EntryResponse     `json:"entries"`
	AllLocked      bool                `json:"all_locked"`
	Tally          Tally               `json:"tally"`
}

type SubmitMonthResponse struct {
	WorkerID   string              `json:"worker_id"`
	Month      Period              `json:"month"`
	Submitted  []TimesheetResponse `json:"submitted"`
	Timesheets []TimesheetResponse `json:"timesheets"`
}

type ApproveSiteResponse struct {
	SiteID        string              `json:"site_id"`
	WorkerID      string              `json:"worker_id"`
	Month         Period              `json:"month"`
	RequiredSites []string            `json:"required_sites"`
	ApprovedSites []string            `json:"approved_sites"`
	Forwarded     bool                `json:"forwarded"`
	Timesheets    []TimesheetResponse `json:"timesheets"`
}

type AutofillResponse struct {
	TimesheetID  string `json:"timesheet_id"`
	Written      int    `json:"written"`
	SkippedDays  []int  `json:"skipped_manual_days"`
	FallbackUsed bool   `json:"fallback_used"`
}

type MismatchResponse struct {
	TimesheetID   string        `json:"timesheet_id"`
	MismatchCount int           `json:"mismatch_count"`
	Days          []MismatchDay `json:"days"`
}
