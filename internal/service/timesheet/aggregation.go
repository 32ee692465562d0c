package timesheet

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/service/reconciliation"
)

// GetMonthView implements timesheet.TimesheetService.
//
// Fixed workers get their single timesheet, created on first access. Floating
// workers get every timesheet they hold for the month with entries merged and
// tagged by site. Each entry is editable according to its own parent only.
func (s *timesheetServiceImpl) GetMonthView(ctx context.Context, actor membership.Actor, req timesheet.MonthRequest) (timesheet.MonthViewResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.MonthViewResponse{}, err
	}
	canEdit := actor.CanEditFor(req.WorkerID)
	if !canEdit && actor.IsWorker() {
		return timesheet.MonthViewResponse{}, membership.ErrForbidden
	}

	classification, err := s.resolver.ResolveWorkerClassification(ctx, req.WorkerID, req.Period.Start())
	if err != nil {
		return timesheet.MonthViewResponse{}, fmt.Errorf("resolve worker classification: %w", err)
	}

	resp := timesheet.MonthViewResponse{
		WorkerID:       req.WorkerID,
		Month:          req.Period,
		Classification: membership.AssignmentKind(classification),
	}

	var tss []timesheet.Timesheet
	switch a := classification.(type) {
	case membership.Fixed:
		site := a.SiteID
		resp.FixedSiteID = &site
		if canEdit {
			ts, err := s.getOrCreate(ctx, actor, classification, a.SiteID, req.WorkerID, req.Period)
			if err != nil {
				return timesheet.MonthViewResponse{}, err
			}
			tss = []timesheet.Timesheet{ts}
		} else {
			tss, err = s.timesheetRepo.ListByWorkerMonth(ctx, req.WorkerID, req.Period, false)
			if err != nil {
				return timesheet.MonthViewResponse{}, err
			}
		}
	case membership.Floating:
		tss, err = s.timesheetRepo.ListByWorkerMonth(ctx, req.WorkerID, req.Period, false)
		if err != nil {
			return timesheet.MonthViewResponse{}, err
		}
	case membership.CompanyAccess, membership.Admin:
		return timesheet.MonthViewResponse{}, membership.ErrUnsupportedAssignment
	default:
		return timesheet.MonthViewResponse{}, membership.ErrUnsupportedAssignment
	}

	if !canEdit {
		visible := tss[:0]
		for _, ts := range tss {
			if actor.CanViewSite(ts.SiteID) {
				visible = append(visible, ts)
			}
		}
		tss = visible
	}

	resp.Timesheets = toResponses(tss)
	resp.AllLocked = timesheet.AllLocked(tss)
	resp.Entries = []timesheet.EntryResponse{}
	if len(tss) == 0 {
		return resp, nil
	}

	ids := make([]string, 0, len(tss))
	parents := make(map[string]timesheet.Timesheet, len(tss))
	for _, ts := range tss {
		ids = append(ids, ts.ID)
		parents[ts.ID] = ts
	}
	entries, err := s.entryRepo.ListByTimesheets(ctx, ids)
	if err != nil {
		return timesheet.MonthViewResponse{}, fmt.Errorf("list entries: %w", err)
	}

	catalog, err := s.catalogForMonth(ctx, tss)
	if err != nil {
		return timesheet.MonthViewResponse{}, err
	}
	resp.Tally = reconciliation.Tally(entries, catalog)

	for _, e := range entries {
		parent := parents[e.TimesheetID]
		resp.Entries = append(resp.Entries, timesheet.NewEntryResponse(e, canEdit && timesheet.IsEditable(parent)))
	}
	return resp, nil
}

// catalogForMonth loads the catalog once; every site of a worker-month belongs to one organisation.
func (s *timesheetServiceImpl) catalogForMonth(ctx context.Context, tss []timesheet.Timesheet) (roster.Catalog, error) {
	catalog, _, err := s.catalogFor(ctx, tss[0].SiteID)
	return catalog, err
}

// AddEntry implements timesheet.TimesheetService. Floating workers must name
// the site; fixed workers may omit it but cannot name another site.
func (s *timesheetServiceImpl) AddEntry(ctx context.Context, actor membership.Actor, req timesheet.AddMonthEntryRequest) (timesheet.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if !actor.CanEditFor(req.WorkerID) {
		return timesheet.EntryResponse{}, membership.ErrForbidden
	}

	classification, err := s.resolver.ResolveWorkerClassification(ctx, req.WorkerID, req.Period.Start())
	if err != nil {
		return timesheet.EntryResponse{}, fmt.Errorf("resolve worker classification: %w", err)
	}

	siteID := req.SiteID
	switch a := classification.(type) {
	case membership.Fixed:
		if siteID == "" {
			siteID = a.SiteID
		}
		if siteID != a.SiteID {
			return timesheet.EntryResponse{}, timesheet.ErrSiteNotAssigned
		}
	case membership.Floating:
		if siteID == "" {
			return timesheet.EntryResponse{}, timesheet.ErrSiteRequired
		}
	case membership.CompanyAccess, membership.Admin:
		return timesheet.EntryResponse{}, membership.ErrUnsupportedAssignment
	default:
		return timesheet.EntryResponse{}, membership.ErrUnsupportedAssignment
	}

	var (
		saved timesheet.Entry
		ts    timesheet.Timesheet
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.getOrCreate(ctx, actor, classification, siteID, req.WorkerID, req.Period)
		if err != nil {
			return err
		}
		saved, ts, err = s.writeEntry(ctx, actor, created.ID, req.Day, req.ShiftCode, req.Hours, req.Note)
		return err
	})
	if err != nil {
		return timesheet.EntryResponse{}, err
	}
	return timesheet.NewEntryResponse(saved, timesheet.IsEditable(ts)), nil
}
