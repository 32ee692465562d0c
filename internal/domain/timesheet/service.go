package timesheet

import (
	"context"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
)

type TimesheetService interface {
	// Store
	GetOrCreate(ctx context.Context, actor membership.Actor, req GetOrCreateRequest) (TimesheetDetailResponse, error)
	GetTimesheet(ctx context.Context, actor membership.Actor, id string) (TimesheetDetailResponse, error)
	UpsertEntry(ctx context.Context, actor membership.Actor, req UpsertEntryRequest) (EntryResponse, error)
	DeleteEntry(ctx context.Context, actor membership.Actor, entryID string) error
	DeleteTimesheet(ctx context.Context, actor membership.Actor, id string) error
	// Workflow
	SubmitMonth(ctx context.Context, actor membership.Actor, req MonthRequest) (SubmitMonthResponse, error)
	ReturnTimesheet(ctx context.Context, actor membership.Actor, req ReturnTimesheetRequest) (TimesheetResponse, error)
	ApproveSite(ctx context.Context, actor membership.Actor, req ApproveSiteRequest) (ApproveSiteResponse, error)
	// Reconciliation
	Autofill(ctx context.Context, actor membership.Actor, req AutofillRequest) (AutofillResponse, error)
	Mismatches(ctx context.Context, actor membership.Actor, id string) (MismatchResponse, error)
	// Aggregation view
	GetMonthView(ctx context.Context, actor membership.Actor, req MonthRequest) (MonthViewResponse, error)
	AddEntry(ctx context.Context, actor membership.Actor, req AddMonthEntryRequest) (EntryResponse, error)
}
