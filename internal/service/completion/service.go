package completion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/rota-backend-go/internal/service/reconciliation"
)

type completionServiceImpl struct {
	schedule      roster.ScheduleSource
	catalogRepo   roster.ShiftCatalogRepository
	timesheetRepo timesheet.TimesheetRepository
	entryRepo     timesheet.EntryRepository
	resolver      membership.Resolver
	directory     membership.Directory
}

func NewCompletionService(
	schedule roster.ScheduleSource,
	catalogRepo roster.ShiftCatalogRepository,
	timesheetRepo timesheet.TimesheetRepository,
	entryRepo timesheet.EntryRepository,
	resolver membership.Resolver,
	directory membership.Directory,
) completion.CompletionService {
	return &completionServiceImpl{
		schedule:      schedule,
		catalogRepo:   catalogRepo,
		timesheetRepo: timesheetRepo,
		entryRepo:     entryRepo,
		resolver:      resolver,
		directory:     directory,
	}
}

func (s *completionServiceImpl) attachNames(ctx context.Context, p *completion.Progress, workerIDs []string) {
	names, err := s.directory.LookupDisplayNames(ctx, workerIDs)
	if err != nil {
		slog.Warn("display name lookup failed", "error", err)
		return
	}
	for i := range p.Missing {
		p.Missing[i].DisplayName = names[p.Missing[i].WorkerID]
	}
	for i := range p.Rows {
		p.Rows[i].DisplayName = names[p.Rows[i].WorkerID]
	}
}

// SiteProgress implements completion.CompletionService.
func (s *completionServiceImpl) SiteProgress(ctx context.Context, actor membership.Actor, req completion.ProgressRequest) (completion.Progress, error) {
	if err := req.Validate(); err != nil {
		return completion.Progress{}, err
	}
	if validator.IsEmpty(req.SiteID) {
		return completion.Progress{}, validator.ValidationErrors{{Field: "site_id", Message: "site_id is required"}}
	}
	if !actor.CanViewSite(req.SiteID) {
		return completion.Progress{}, membership.ErrForbidden
	}

	schedule, err := s.schedule.ListScheduleEntries(ctx, req.SiteID, nil, req.Period.Start())
	if err != nil {
		return completion.Progress{}, fmt.Errorf("list schedule entries: %w", err)
	}
	tss, err := s.timesheetRepo.ListBySiteMonth(ctx, req.SiteID, req.Period)
	if err != nil {
		return completion.Progress{}, fmt.Errorf("list timesheets: %w", err)
	}

	required := RequiredFromSchedule(schedule)
	submitted, forwarded := SubmittedAndForwarded(tss)

	p := Compute(required, submitted, forwarded)
	p.Scope = completion.ScopeSite
	p.SiteID = req.SiteID
	p.Month = req.Period
	s.attachNames(ctx, &p, required.Workers())
	return p, nil
}

// OrganizationProgress implements completion.CompletionService.
func (s *completionServiceImpl) OrganizationProgress(ctx context.Context, actor membership.Actor, req completion.ProgressRequest) (completion.Progress, error) {
	if err := req.Validate(); err != nil {
		return completion.Progress{}, err
	}
	if !actor.IsCompanyAdmin() {
		return completion.Progress{}, membership.ErrForbidden
	}
	if validator.IsEmpty(actor.OrgID) {
		return completion.Progress{}, membership.ErrMembershipNotFound
	}

	schedule, err := s.schedule.ListOrgScheduleEntries(ctx, actor.OrgID, req.Period.Start())
	if err != nil {
		return completion.Progress{}, fmt.Errorf("list schedule entries: %w", err)
	}
	siteIDs, err := s.directory.ListOrgSiteIDs(ctx, actor.OrgID)
	if err != nil {
		return completion.Progress{}, fmt.Errorf("list organisation sites: %w", err)
	}
	tss, err := s.timesheetRepo.ListBySitesMonth(ctx, siteIDs, req.Period)
	if err != nil {
		return completion.Progress{}, fmt.Errorf("list timesheets: %w", err)
	}

	required := RequiredFromSchedule(schedule)
	submitted, forwarded := SubmittedAndForwarded(tss)

	p := Compute(required, submitted, forwarded)
	p.Scope = completion.ScopeOrganization
	p.Month = req.Period

	rows, err := s.summaryRows(ctx, actor.OrgID, req.Period, required, tss)
	if err != nil {
		return completion.Progress{}, err
	}
	p.Rows = rows

	workers := required.Workers()
	for _, r := range rows {
		if !slices.Contains(workers, r.WorkerID) {
			workers = append(workers, r.WorkerID)
		}
	}
	s.attachNames(ctx, &p, workers)
	return p, nil
}

// summaryRows builds one row per worker and site for fixed workers and a single
// folded row for each floating worker.
func (s *completionServiceImpl) summaryRows(ctx context.Context, orgID string, period timesheet.Period, required Coverage, tss []timesheet.Timesheet) ([]completion.SummaryRow, error) {
	types, err := s.catalogRepo.ListShiftCatalog(ctx, orgID, false)
	if err != nil {
		return nil, fmt.Errorf("list shift catalog: %w", err)
	}
	catalog := roster.NewCatalog(types)

	ids := make([]string, 0, len(tss))
	for _, ts := range tss {
		ids = append(ids, ts.ID)
	}
	entries, err := s.entryRepo.ListByTimesheets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	entriesByTimesheet := make(map[string][]timesheet.Entry, len(tss))
	for _, e := range entries {
		entriesByTimesheet[e.TimesheetID] = append(entriesByTimesheet[e.TimesheetID], e)
	}

	held := Coverage{}
	byWorkerSite := make(map[string]timesheet.Timesheet, len(tss))
	for _, ts := range tss {
		held.Add(ts.WorkerID, ts.SiteID)
		byWorkerSite[ts.WorkerID+"|"+ts.SiteID] = ts
	}

	workers := required.Workers()
	for _, w := range held.Workers() {
		if _, ok := required[w]; !ok {
			workers = append(workers, w)
		}
	}
	slices.Sort(workers)

	var rows []completion.SummaryRow
	for _, workerID := range workers {
		sites := map[string]struct{}{}
		for _, site := range required.Sites(workerID) {
			sites[site] = struct{}{}
		}
		for _, site := range held.Sites(workerID) {
			sites[site] = struct{}{}
		}
		siteList := make([]string, 0, len(sites))
		for site := range sites {
			siteList = append(siteList, site)
		}
		slices.Sort(siteList)

		row := func(siteIDs []string, kind string) completion.SummaryRow {
			r := completion.SummaryRow{WorkerID: workerID, Classification: kind, SiteIDs: siteIDs, Submitted: true, Forwarded: true}
			for _, site := range siteIDs {
				ts, ok := byWorkerSite[workerID+"|"+site]
				if !ok {
					r.Submitted, r.Forwarded = false, false
					continue
				}
				r.Submitted = r.Submitted && (ts.Status == timesheet.StatusSubmitted || ts.Status == timesheet.StatusForwarded)
				r.Forwarded = r.Forwarded && ts.Status == timesheet.StatusForwarded
				r.Tally = r.Tally.Add(reconciliation.Tally(entriesByTimesheet[ts.ID], catalog))
			}
			return r
		}

		classification, err := s.resolver.ResolveWorkerClassification(ctx, workerID, period.Start())
		if err != nil {
			slog.Warn("worker classification failed", "worker_id", workerID, "error", err)
			classification = nil
		}

		switch classification.(type) {
		case membership.Floating:
			rows = append(rows, row(siteList, membership.AssignmentKind(classification)))
		default:
			kind := membership.AssignmentKind(classification)
			for _, site := range siteList {
				rows = append(rows, row([]string{site}, kind))
			}
		}
	}
	return rows, nil
}
