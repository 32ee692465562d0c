package timesheet

import "errors"

var (
	ErrNotEditable          = errors.New("timesheet is not editable in its current status")
	ErrInvalidTransition    = errors.New("status transition not allowed from current state")
	ErrTimesheetNotFound    = errors.New("timesheet not found")
	ErrEntryNotFound        = errors.New("timesheet entry not found")
	ErrNoTimesheetsForMonth = errors.New("worker has no timesheets for this month")
	ErrSiteAlreadyApproved  = errors.New("site portion already approved")
	ErrSiteRequired         = errors.New("site is required for floating workers")
	ErrSiteNotAssigned      = errors.New("site does not match the worker's fixed site")
)
