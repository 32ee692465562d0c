package timesheet

import (
	"context"
)

// StatusChange is the write side of a workflow transition
type StatusChange struct {
	To     Status
	Reason *string
}

type TimesheetRepository interface {
	// GetOrCreate returns the timesheet for the natural key, inserting a DRAFT one if absent.
	GetOrCreate(ctx context.Context, siteID, workerID string, period Period) (ts Timesheet, created bool, err error)
	GetByID(ctx context.Context, id string) (Timesheet, error)
	// GetByIDForShare locks the row against concurrent status changes until the transaction ends.
	GetByIDForShare(ctx context.Context, id string) (Timesheet, error)
	ListByWorkerMonth(ctx context.Context, workerID string, period Period, forUpdate bool) ([]Timesheet, error)
	ListBySiteMonth(ctx context.Context, siteID string, period Period) ([]Timesheet, error)
	ListBySitesMonth(ctx context.Context, siteIDs []string, period Period) ([]Timesheet, error)
	// TransitionStatus updates only when the persisted status is one of from.
	TransitionStatus(ctx context.Context, id string, from []Status, change StatusChange) (Timesheet, error)
	Delete(ctx context.Context, id string) error
}

type EntryRepository interface {
	GetByID(ctx context.Context, id string) (Entry, error)
	ListByTimesheet(ctx context.Context, timesheetID string) ([]Entry, error)
	ListByTimesheets(ctx context.Context, timesheetIDs []string) ([]Entry, error)
	Upsert(ctx context.Context, entry Entry) (Entry, error)
	// InsertMissing inserts entries for days that have none and reports how many were written.
	InsertMissing(ctx context.Context, entries []Entry) (int, error)
	// UpsertAutofill writes entries in one statement, replacing existing days whose
	// source is autofill, or every existing day when overwriteManual is set.
	UpsertAutofill(ctx context.Context, entries []Entry, overwriteManual bool) (int, error)
	Delete(ctx context.Context, id string) error
}

type ApprovalRepository interface {
	// Record inserts the approval; inserted is false when the site was already approved.
	Record(ctx context.Context, approval SiteApproval) (inserted bool, err error)
	ListByWorkerMonth(ctx context.Context, workerID string, period Period) ([]SiteApproval, error)
	DeleteForSite(ctx context.Context, workerID string, period Period, siteID string) error
}
