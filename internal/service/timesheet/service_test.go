package timesheet

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const month = "2024-03"

func ptr[T any](v T) *T { return &v }

func worker(id string) membership.Actor {
	return membership.Actor{UserID: "user-" + id, WorkerID: id, OrgID: "org-1", Role: membership.RoleWorker, Assignment: membership.Floating{}}
}

func supervisor(sites ...string) membership.Actor {
	return membership.Actor{UserID: "sup-" + sites[0], OrgID: "org-1", Role: membership.RoleSiteSupervisor, Assignment: membership.CompanyAccess{}, SiteIDs: sites}
}

func companyAdmin() membership.Actor {
	return membership.Actor{UserID: "ca", OrgID: "org-1", Role: membership.RoleCompanyAdmin, Assignment: membership.CompanyAccess{}, SiteIDs: []string{"site-a", "site-b"}}
}

func open(t *testing.T, f fixture, actor membership.Actor, siteID, workerID string) timesheet.TimesheetDetailResponse {
	t.Helper()
	resp, err := f.service.GetOrCreate(context.Background(), actor, timesheet.GetOrCreateRequest{
		SiteID: siteID, WorkerID: workerID, Month: month,
	})
	require.NoError(t, err)
	return resp
}

// ===== STORE TESTS =====

func TestTimesheetService_GetOrCreate_Idempotent(t *testing.T) {
	f := newFixture(nil, nil)

	first := open(t, f, worker("w1"), "site-a", "w1")
	second := open(t, f, worker("w1"), "site-a", "w1")

	assert.Equal(t, first.Timesheet.ID, second.Timesheet.ID)
	assert.Equal(t, timesheet.StatusDraft, first.Timesheet.Status)
	assert.Len(t, f.store.timesheets, 1)
}

func TestTimesheetService_GetOrCreate_InitialAutofill(t *testing.T) {
	schedule := []roster.ScheduleEntry{
		{SiteID: "site-a", WorkerID: "w1", Day: 1, ShiftCode: ptr("E"), Hours: 8},
		{SiteID: "site-a", WorkerID: "w1", Day: 2, ShiftCode: ptr("SLEEP"), Hours: 0},
		{SiteID: "site-a", WorkerID: "w2", Day: 3, ShiftCode: ptr("E"), Hours: 8},
	}
	f := newFixture(schedule, nil)

	resp := open(t, f, worker("w1"), "site-a", "w1")

	require.Len(t, resp.Entries, 2)
	assert.Equal(t, timesheet.EntrySourceAutofill, resp.Entries[0].Source)
	assert.InDelta(t, 8, resp.Tally.TotalHours, 1e-9)
	assert.Equal(t, 1, resp.Tally.SleepIn)
	assert.Zero(t, resp.MismatchCount)
}

func TestTimesheetService_GetOrCreate_Forbidden(t *testing.T) {
	f := newFixture(nil, nil)

	_, err := f.service.GetOrCreate(context.Background(), worker("w2"), timesheet.GetOrCreateRequest{
		SiteID: "site-a", WorkerID: "w1", Month: month,
	})

	assert.ErrorIs(t, err, membership.ErrForbidden)
}

func TestTimesheetService_GetOrCreate_InvalidMonth(t *testing.T) {
	f := newFixture(nil, nil)

	_, err := f.service.GetOrCreate(context.Background(), worker("w1"), timesheet.GetOrCreateRequest{
		SiteID: "site-a", WorkerID: "w1", Month: "03-2024",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "month", verrs[0].Field)
}

func TestTimesheetService_GetOrCreate_FixedWorkerOnlyAtOwnSite(t *testing.T) {
	f := newFixture(nil, map[string]membership.Assignment{"fixed-1": membership.Fixed{SiteID: "site-a"}})
	ctx := context.Background()

	for _, siteID := range []string{"site-b", "site-zz"} {
		_, err := f.service.GetOrCreate(ctx, worker("fixed-1"), timesheet.GetOrCreateRequest{
			SiteID: siteID, WorkerID: "fixed-1", Month: month,
		})
		assert.ErrorIs(t, err, membership.ErrForbidden, siteID)
	}
	assert.Empty(t, f.store.timesheets)

	_, err := f.service.GetOrCreate(ctx, supervisor("site-b"), timesheet.GetOrCreateRequest{
		SiteID: "site-b", WorkerID: "fixed-1", Month: month,
	})
	assert.ErrorIs(t, err, membership.ErrForbidden)

	open(t, f, worker("fixed-1"), "site-a", "fixed-1")
	_, err = f.service.SubmitMonth(ctx, worker("fixed-1"), timesheet.MonthRequest{WorkerID: "fixed-1", Month: month})
	require.NoError(t, err)

	resp, err := f.service.ApproveSite(ctx, supervisor("site-a"), timesheet.ApproveSiteRequest{SiteID: "site-a", WorkerID: "fixed-1", Month: month})
	require.NoError(t, err)
	assert.Equal(t, []string{"site-a"}, resp.RequiredSites)
	assert.True(t, resp.Forwarded)
}

func TestTimesheetService_GetOrCreate_FloatingWorkerStaysInOrganisation(t *testing.T) {
	f := newFixture(nil, nil)

	_, err := f.service.GetOrCreate(context.Background(), worker("w1"), timesheet.GetOrCreateRequest{
		SiteID: "site-zz", WorkerID: "w1", Month: month,
	})

	assert.ErrorIs(t, err, membership.ErrForbidden)
	assert.Empty(t, f.store.timesheets)

	open(t, f, worker("w1"), "site-b", "w1")
	assert.Len(t, f.store.timesheets, 1)
}

func TestTimesheetService_UpsertEntry_EditableStatuses(t *testing.T) {
	tests := []struct {
		status  timesheet.Status
		wantErr error
	}{
		{timesheet.StatusDraft, nil},
		{timesheet.StatusReturned, nil},
		{timesheet.StatusSubmitted, timesheet.ErrNotEditable},
		{timesheet.StatusForwarded, timesheet.ErrNotEditable},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture(nil, nil)
			ts := open(t, f, worker("w1"), "site-a", "w1")
			f.store.setStatus(ts.Timesheet.ID, tt.status)

			_, err := f.service.UpsertEntry(context.Background(), worker("w1"), timesheet.UpsertEntryRequest{
				TimesheetID: ts.Timesheet.ID, Day: 4, ShiftCode: ptr("E"), Hours: 8,
			})

			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Len(t, f.store.entriesOf(ts.Timesheet.ID), 1)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.store.entriesOf(ts.Timesheet.ID))
			}
		})
	}
}

func TestTimesheetService_UpsertEntry_OnePerDay(t *testing.T) {
	f := newFixture(nil, nil)
	ts := open(t, f, worker("w1"), "site-a", "w1")
	ctx := context.Background()

	first, err := f.service.UpsertEntry(ctx, worker("w1"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 7, Hours: 4})
	require.NoError(t, err)
	second, err := f.service.UpsertEntry(ctx, worker("w1"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 7, Hours: 6, Note: ptr("stayed late")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	entries := f.store.entriesOf(ts.Timesheet.ID)
	require.Len(t, entries, 1)
	assert.InDelta(t, 6, entries[0].Hours, 1e-9)
	assert.Equal(t, timesheet.EntrySourceManual, entries[0].Source)
}

func TestTimesheetService_UpsertEntry_Validation(t *testing.T) {
	f := newFixture(nil, nil)
	ts := open(t, f, worker("w1"), "site-a", "w1")
	ctx := context.Background()

	tests := []struct {
		name  string
		req   timesheet.UpsertEntryRequest
		field string
	}{
		{"negative hours", timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 1, Hours: -1}, "hours"},
		{"day zero", timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 0, Hours: 1}, "day"},
		{"day past month end", timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 32, Hours: 1}, "day"},
		{"unknown shift", timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 1, ShiftCode: ptr("NOPE")}, "shift_code"},
		{"inactive shift", timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 1, ShiftCode: ptr("OLD")}, "shift_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UpsertEntry(ctx, worker("w1"), tt.req)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestTimesheetService_UpsertEntry_AprilHasThirtyDays(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts, err := f.service.GetOrCreate(ctx, worker("w1"), timesheet.GetOrCreateRequest{SiteID: "site-a", WorkerID: "w1", Month: "2024-04"})
	require.NoError(t, err)

	_, err = f.service.UpsertEntry(ctx, worker("w1"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 31, Hours: 1})

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestTimesheetService_UpsertEntry_OtherWorkerForbidden(t *testing.T) {
	f := newFixture(nil, nil)
	ts := open(t, f, worker("w1"), "site-a", "w1")

	_, err := f.service.UpsertEntry(context.Background(), worker("w2"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 1, Hours: 1})
	assert.ErrorIs(t, err, membership.ErrForbidden)

	_, err = f.service.UpsertEntry(context.Background(), companyAdmin(), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 1, Hours: 1})
	assert.ErrorIs(t, err, membership.ErrForbidden)
}

func TestTimesheetService_DeleteEntry(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")
	entry, err := f.service.UpsertEntry(ctx, worker("w1"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 2, Hours: 8})
	require.NoError(t, err)

	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusSubmitted)
	err = f.service.DeleteEntry(ctx, worker("w1"), entry.ID)
	assert.ErrorIs(t, err, timesheet.ErrNotEditable)

	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusReturned)
	err = f.service.DeleteEntry(ctx, worker("w1"), entry.ID)
	require.NoError(t, err)
	assert.Empty(t, f.store.entriesOf(ts.Timesheet.ID))

	err = f.service.DeleteEntry(ctx, worker("w1"), entry.ID)
	assert.ErrorIs(t, err, timesheet.ErrEntryNotFound)
}

func TestTimesheetService_DeleteTimesheet(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")
	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusForwarded)

	err := f.service.DeleteTimesheet(ctx, worker("w1"), ts.Timesheet.ID)
	assert.ErrorIs(t, err, membership.ErrForbidden)

	err = f.service.DeleteTimesheet(ctx, supervisor("site-a"), ts.Timesheet.ID)
	assert.ErrorIs(t, err, membership.ErrForbidden)

	err = f.service.DeleteTimesheet(ctx, companyAdmin(), ts.Timesheet.ID)
	require.NoError(t, err)
	assert.Empty(t, f.store.timesheets)

	err = f.service.DeleteTimesheet(ctx, companyAdmin(), ts.Timesheet.ID)
	assert.ErrorIs(t, err, timesheet.ErrTimesheetNotFound)
}

func TestTimesheetService_GetTimesheet_Visibility(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")

	_, err := f.service.GetTimesheet(ctx, supervisor("site-a"), ts.Timesheet.ID)
	assert.NoError(t, err)

	_, err = f.service.GetTimesheet(ctx, supervisor("site-b"), ts.Timesheet.ID)
	assert.ErrorIs(t, err, membership.ErrForbidden)

	resp, err := f.service.GetTimesheet(ctx, companyAdmin(), ts.Timesheet.ID)
	require.NoError(t, err)
	assert.True(t, resp.Timesheet.Editable)
}

// ===== WORKFLOW TESTS =====

func TestTimesheetService_SubmitMonth_AdvancesEveryEditableTimesheet(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	a := open(t, f, worker("w1"), "site-a", "w1")
	b := open(t, f, worker("w1"), "site-b", "w1")
	f.store.setStatus(b.Timesheet.ID, timesheet.StatusReturned)

	resp, err := f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})

	require.NoError(t, err)
	assert.Len(t, resp.Submitted, 2)
	assert.Equal(t, timesheet.StatusSubmitted, f.store.status(a.Timesheet.ID))
	assert.Equal(t, timesheet.StatusSubmitted, f.store.status(b.Timesheet.ID))
	assert.NotNil(t, resp.Submitted[0].SubmittedAt)
}

func TestTimesheetService_SubmitMonth_LeavesLockedTimesheetsAlone(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	a := open(t, f, worker("w1"), "site-a", "w1")
	b := open(t, f, worker("w1"), "site-b", "w1")
	f.store.setStatus(a.Timesheet.ID, timesheet.StatusForwarded)

	resp, err := f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})

	require.NoError(t, err)
	require.Len(t, resp.Submitted, 1)
	assert.Equal(t, b.Timesheet.ID, resp.Submitted[0].ID)
	assert.Equal(t, timesheet.StatusForwarded, f.store.status(a.Timesheet.ID))
}

func TestTimesheetService_SubmitMonth_Errors(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()

	_, err := f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})
	assert.ErrorIs(t, err, timesheet.ErrNoTimesheetsForMonth)

	ts := open(t, f, worker("w1"), "site-a", "w1")
	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusSubmitted)
	_, err = f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})
	assert.ErrorIs(t, err, timesheet.ErrInvalidTransition)

	_, err = f.service.SubmitMonth(ctx, supervisor("site-a"), timesheet.MonthRequest{WorkerID: "w1", Month: month})
	assert.ErrorIs(t, err, membership.ErrForbidden)
}

func TestTimesheetService_ReturnTimesheet(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")

	_, err := f.service.ReturnTimesheet(ctx, supervisor("site-a"), timesheet.ReturnTimesheetRequest{TimesheetID: ts.Timesheet.ID})
	assert.ErrorIs(t, err, timesheet.ErrInvalidTransition)

	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusSubmitted)

	_, err = f.service.ReturnTimesheet(ctx, supervisor("site-b"), timesheet.ReturnTimesheetRequest{TimesheetID: ts.Timesheet.ID})
	assert.ErrorIs(t, err, membership.ErrForbidden)

	resp, err := f.service.ReturnTimesheet(ctx, supervisor("site-a"), timesheet.ReturnTimesheetRequest{
		TimesheetID: ts.Timesheet.ID, Reason: ptr("day 3 hours look wrong"),
	})
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusReturned, resp.Status)
	assert.True(t, resp.Editable)
	require.NotNil(t, resp.ReturnReason)
	assert.Equal(t, "day 3 hours look wrong", *resp.ReturnReason)
}

func TestTimesheetService_ApproveSite_FixedWorkerSingleApproval(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")
	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusSubmitted)

	resp, err := f.service.ApproveSite(ctx, supervisor("site-a"), timesheet.ApproveSiteRequest{SiteID: "site-a", WorkerID: "w1", Month: month})

	require.NoError(t, err)
	assert.True(t, resp.Forwarded)
	assert.Equal(t, timesheet.StatusForwarded, f.store.status(ts.Timesheet.ID))
}

func TestTimesheetService_ApproveSite_ForwardsOnlyWhenEverySiteApproved(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	a := open(t, f, worker("w1"), "site-a", "w1")
	b := open(t, f, worker("w1"), "site-b", "w1")
	_, err := f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})
	require.NoError(t, err)

	first, err := f.service.ApproveSite(ctx, supervisor("site-a"), timesheet.ApproveSiteRequest{SiteID: "site-a", WorkerID: "w1", Month: month})
	require.NoError(t, err)
	assert.False(t, first.Forwarded)
	assert.Equal(t, []string{"site-a", "site-b"}, first.RequiredSites)
	assert.Equal(t, []string{"site-a"}, first.ApprovedSites)
	assert.Equal(t, timesheet.StatusSubmitted, f.store.status(a.Timesheet.ID))
	assert.Equal(t, timesheet.StatusSubmitted, f.store.status(b.Timesheet.ID))

	second, err := f.service.ApproveSite(ctx, supervisor("site-b"), timesheet.ApproveSiteRequest{SiteID: "site-b", WorkerID: "w1", Month: month})
	require.NoError(t, err)
	assert.True(t, second.Forwarded)
	assert.Equal(t, timesheet.StatusForwarded, f.store.status(a.Timesheet.ID))
	assert.Equal(t, timesheet.StatusForwarded, f.store.status(b.Timesheet.ID))
}

func TestTimesheetService_ApproveSite_ReturnClearsApproval(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	a := open(t, f, worker("w1"), "site-a", "w1")
	open(t, f, worker("w1"), "site-b", "w1")
	_, err := f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})
	require.NoError(t, err)

	_, err = f.service.ApproveSite(ctx, supervisor("site-a"), timesheet.ApproveSiteRequest{SiteID: "site-a", WorkerID: "w1", Month: month})
	require.NoError(t, err)
	_, err = f.service.ReturnTimesheet(ctx, supervisor("site-a"), timesheet.ReturnTimesheetRequest{TimesheetID: a.Timesheet.ID})
	require.NoError(t, err)
	_, err = f.service.SubmitMonth(ctx, worker("w1"), timesheet.MonthRequest{WorkerID: "w1", Month: month})
	require.NoError(t, err)

	resp, err := f.service.ApproveSite(ctx, supervisor("site-b"), timesheet.ApproveSiteRequest{SiteID: "site-b", WorkerID: "w1", Month: month})
	require.NoError(t, err)
	assert.False(t, resp.Forwarded)
	assert.Equal(t, []string{"site-b"}, resp.ApprovedSites)
}

func TestTimesheetService_ApproveSite_Rejections(t *testing.T) {
	f := newFixture(nil, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")
	open(t, f, worker("w1"), "site-b", "w1")
	req := timesheet.ApproveSiteRequest{SiteID: "site-a", WorkerID: "w1", Month: month}

	_, err := f.service.ApproveSite(ctx, supervisor("site-a"), req)
	assert.ErrorIs(t, err, timesheet.ErrInvalidTransition, "draft cannot be approved")

	_, err = f.service.ApproveSite(ctx, supervisor("site-b"), req)
	assert.ErrorIs(t, err, membership.ErrForbidden)

	_, err = f.service.ApproveSite(ctx, supervisor("site-c"), timesheet.ApproveSiteRequest{SiteID: "site-c", WorkerID: "w1", Month: month})
	assert.ErrorIs(t, err, timesheet.ErrTimesheetNotFound)

	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusSubmitted)
	_, err = f.service.ApproveSite(ctx, supervisor("site-a"), req)
	require.NoError(t, err)

	_, err = f.service.ApproveSite(ctx, supervisor("site-a"), req)
	assert.ErrorIs(t, err, timesheet.ErrInvalidTransition)
	assert.ErrorIs(t, err, timesheet.ErrSiteAlreadyApproved)
}

// ===== RECONCILIATION TESTS =====

func TestTimesheetService_Autofill_Refill(t *testing.T) {
	schedule := []roster.ScheduleEntry{
		{SiteID: "site-a", WorkerID: "w1", Day: 1, ShiftCode: ptr("E"), Hours: 8},
		{SiteID: "site-a", WorkerID: "w1", Day: 2, ShiftCode: ptr("E"), Hours: 8},
	}
	f := newFixture(schedule, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")

	_, err := f.service.UpsertEntry(ctx, worker("w1"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 1, ShiftCode: ptr("E"), Hours: 6})
	require.NoError(t, err)

	resp, err := f.service.Autofill(ctx, worker("w1"), timesheet.AutofillRequest{TimesheetID: ts.Timesheet.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, resp.SkippedDays)
	assert.Equal(t, 1, resp.Written)
	assert.InDelta(t, 6, f.store.entriesOf(ts.Timesheet.ID)[0].Hours, 1e-9)

	resp, err = f.service.Autofill(ctx, worker("w1"), timesheet.AutofillRequest{TimesheetID: ts.Timesheet.ID, OverwriteManual: true})
	require.NoError(t, err)
	assert.Empty(t, resp.SkippedDays)
	assert.InDelta(t, 8, f.store.entriesOf(ts.Timesheet.ID)[0].Hours, 1e-9)

	f.store.setStatus(ts.Timesheet.ID, timesheet.StatusSubmitted)
	_, err = f.service.Autofill(ctx, worker("w1"), timesheet.AutofillRequest{TimesheetID: ts.Timesheet.ID})
	assert.ErrorIs(t, err, timesheet.ErrNotEditable)
}

func TestTimesheetService_Mismatches(t *testing.T) {
	schedule := []roster.ScheduleEntry{
		{SiteID: "site-a", WorkerID: "w1", Day: 1, ShiftCode: ptr("E"), Hours: 8},
		{SiteID: "site-a", WorkerID: "w1", Day: 2, ShiftCode: ptr("E"), Hours: 8},
	}
	f := newFixture(schedule, nil)
	ctx := context.Background()
	ts := open(t, f, worker("w1"), "site-a", "w1")

	_, err := f.service.UpsertEntry(ctx, worker("w1"), timesheet.UpsertEntryRequest{TimesheetID: ts.Timesheet.ID, Day: 2, ShiftCode: ptr("SLEEP")})
	require.NoError(t, err)

	resp, err := f.service.Mismatches(ctx, supervisor("site-a"), ts.Timesheet.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.MismatchCount)
	assert.Equal(t, 2, resp.Days[0].Day)
	assert.Equal(t, timesheet.MismatchShift, resp.Days[0].Reason)
}
