package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/rota-backend-go/internal/service/reconciliation"
)

type timesheetServiceImpl struct {
	tx            database.Transactor
	timesheetRepo timesheet.TimesheetRepository
	entryRepo     timesheet.EntryRepository
	approvalRepo  timesheet.ApprovalRepository
	catalogRepo   roster.ShiftCatalogRepository
	resolver      membership.Resolver
	directory     membership.Directory
	engine        *reconciliation.Engine
}

func NewTimesheetService(
	tx database.Transactor,
	timesheetRepo timesheet.TimesheetRepository,
	entryRepo timesheet.EntryRepository,
	approvalRepo timesheet.ApprovalRepository,
	catalogRepo roster.ShiftCatalogRepository,
	resolver membership.Resolver,
	directory membership.Directory,
	engine *reconciliation.Engine,
) timesheet.TimesheetService {
	return &timesheetServiceImpl{
		tx:            tx,
		timesheetRepo: timesheetRepo,
		entryRepo:     entryRepo,
		approvalRepo:  approvalRepo,
		catalogRepo:   catalogRepo,
		resolver:      resolver,
		directory:     directory,
		engine:        engine,
	}
}

func canView(actor membership.Actor, ts timesheet.Timesheet) bool {
	return actor.CanEditFor(ts.WorkerID) || actor.CanViewSite(ts.SiteID)
}

func (s *timesheetServiceImpl) catalogFor(ctx context.Context, siteID string) (roster.Catalog, string, error) {
	orgID, err := s.directory.GetSiteOrgID(ctx, siteID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve site organisation: %w", err)
	}
	types, err := s.catalogRepo.ListShiftCatalog(ctx, orgID, false)
	if err != nil {
		return nil, "", fmt.Errorf("list shift catalog: %w", err)
	}
	return roster.NewCatalog(types), orgID, nil
}

// admitSite rejects a site the worker cannot hold a timesheet at. A fixed
// worker is admitted only at their own site and a floating worker only at
// sites of the actor's organisation.
func (s *timesheetServiceImpl) admitSite(ctx context.Context, actor membership.Actor, classification membership.Assignment, siteID string) error {
	switch a := classification.(type) {
	case membership.Fixed:
		if siteID != a.SiteID {
			return membership.ErrForbidden
		}
		return nil
	case membership.Floating:
		if actor.IsAdmin() {
			return nil
		}
		orgID, err := s.directory.GetSiteOrgID(ctx, siteID)
		if err != nil {
			return fmt.Errorf("resolve site organisation: %w", err)
		}
		if orgID != actor.OrgID {
			return membership.ErrForbidden
		}
		return nil
	case membership.CompanyAccess, membership.Admin:
		return membership.ErrUnsupportedAssignment
	default:
		return membership.ErrUnsupportedAssignment
	}
}

// getOrCreate admits the site, finds or creates the timesheet and runs the
// initial fill when it is new. A failed initial fill is logged and does not
// fail the call.
func (s *timesheetServiceImpl) getOrCreate(ctx context.Context, actor membership.Actor, classification membership.Assignment, siteID, workerID string, period timesheet.Period) (timesheet.Timesheet, error) {
	if err := s.admitSite(ctx, actor, classification, siteID); err != nil {
		return timesheet.Timesheet{}, err
	}

	var ts timesheet.Timesheet
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			created bool
			err     error
		)
		ts, created, err = s.timesheetRepo.GetOrCreate(ctx, siteID, workerID, period)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		fillErr := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			result, err := s.engine.Fill(ctx, ts, reconciliation.InitialFill, false)
			if err != nil {
				return err
			}
			slog.Info("timesheet created", "timesheet_id", ts.ID, "site_id", siteID,
				"worker_id", workerID, "month", period.String(), "autofilled", result.Written)
			return nil
		})
		if fillErr != nil {
			slog.Warn("initial autofill failed", "timesheet_id", ts.ID, "error", fillErr)
		}
		return nil
	})
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("get or create timesheet: %w", err)
	}
	return ts, nil
}

func (s *timesheetServiceImpl) detail(ctx context.Context, actor membership.Actor, ts timesheet.Timesheet) (timesheet.TimesheetDetailResponse, error) {
	entries, err := s.entryRepo.ListByTimesheet(ctx, ts.ID)
	if err != nil {
		return timesheet.TimesheetDetailResponse{}, fmt.Errorf("list entries: %w", err)
	}
	catalog, _, err := s.catalogFor(ctx, ts.SiteID)
	if err != nil {
		return timesheet.TimesheetDetailResponse{}, err
	}
	schedule, err := s.engine.ScheduleFor(ctx, ts)
	if err != nil {
		return timesheet.TimesheetDetailResponse{}, err
	}

	editable := timesheet.IsEditable(ts) && actor.CanEditFor(ts.WorkerID)
	resp := timesheet.TimesheetDetailResponse{
		Timesheet:     timesheet.NewTimesheetResponse(ts),
		Entries:       make([]timesheet.EntryResponse, 0, len(entries)),
		Tally:         reconciliation.Tally(entries, catalog),
		MismatchCount: len(reconciliation.Mismatches(entries, schedule)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, timesheet.NewEntryResponse(e, editable))
	}
	return resp, nil
}

// GetOrCreate implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) GetOrCreate(ctx context.Context, actor membership.Actor, req timesheet.GetOrCreateRequest) (timesheet.TimesheetDetailResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetDetailResponse{}, err
	}
	if !actor.CanEditFor(req.WorkerID) && !actor.CanViewSite(req.SiteID) {
		return timesheet.TimesheetDetailResponse{}, membership.ErrForbidden
	}

	classification, err := s.resolver.ResolveWorkerClassification(ctx, req.WorkerID, req.Period.Start())
	if err != nil {
		return timesheet.TimesheetDetailResponse{}, fmt.Errorf("resolve worker classification: %w", err)
	}
	ts, err := s.getOrCreate(ctx, actor, classification, req.SiteID, req.WorkerID, req.Period)
	if err != nil {
		return timesheet.TimesheetDetailResponse{}, err
	}
	return s.detail(ctx, actor, ts)
}

// GetTimesheet implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) GetTimesheet(ctx context.Context, actor membership.Actor, id string) (timesheet.TimesheetDetailResponse, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return timesheet.TimesheetDetailResponse{}, err
	}
	if !canView(actor, ts) {
		return timesheet.TimesheetDetailResponse{}, membership.ErrForbidden
	}
	return s.detail(ctx, actor, ts)
}

// validateShift rejects codes that are unknown or inactive in the site's organisation
func (s *timesheetServiceImpl) validateShift(ctx context.Context, siteID string, code *string) error {
	if code == nil {
		return nil
	}
	orgID, err := s.directory.GetSiteOrgID(ctx, siteID)
	if err != nil {
		return fmt.Errorf("resolve site organisation: %w", err)
	}
	st, err := s.catalogRepo.GetByCode(ctx, orgID, *code)
	if err != nil {
		if errors.Is(err, roster.ErrShiftTypeNotFound) {
			return validator.ValidationErrors{{Field: "shift_code", Message: "shift_code is not in the shift catalog"}}
		}
		return fmt.Errorf("get shift type: %w", err)
	}
	if !st.Active {
		return validator.ValidationErrors{{Field: "shift_code", Message: "shift_code is inactive"}}
	}
	return nil
}

// writeEntry upserts under a share lock on the parent so a concurrent submit
// cannot slip between the status check and the write.
func (s *timesheetServiceImpl) writeEntry(ctx context.Context, actor membership.Actor, timesheetID string, day int, shiftCode *string, hours float64, note *string) (timesheet.Entry, timesheet.Timesheet, error) {
	var (
		saved timesheet.Entry
		ts    timesheet.Timesheet
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ts, err = s.timesheetRepo.GetByIDForShare(ctx, timesheetID)
		if err != nil {
			return err
		}
		if !actor.CanEditFor(ts.WorkerID) {
			return membership.ErrForbidden
		}
		if !timesheet.IsEditable(ts) {
			return timesheet.ErrNotEditable
		}
		if day > ts.Period.Days() {
			return validator.ValidationErrors{{
				Field:   "day",
				Message: fmt.Sprintf("day must be between 1 and %d for %s", ts.Period.Days(), ts.Period),
			}}
		}
		if err := s.validateShift(ctx, ts.SiteID, shiftCode); err != nil {
			return err
		}

		saved, err = s.entryRepo.Upsert(ctx, timesheet.Entry{
			TimesheetID: ts.ID,
			SiteID:      ts.SiteID,
			Day:         day,
			ShiftCode:   shiftCode,
			Hours:       hours,
			Note:        note,
			Source:      timesheet.EntrySourceManual,
		})
		return err
	})
	return saved, ts, err
}

// UpsertEntry implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) UpsertEntry(ctx context.Context, actor membership.Actor, req timesheet.UpsertEntryRequest) (timesheet.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.EntryResponse{}, err
	}

	saved, ts, err := s.writeEntry(ctx, actor, req.TimesheetID, req.Day, req.ShiftCode, req.Hours, req.Note)
	if err != nil {
		return timesheet.EntryResponse{}, err
	}
	return timesheet.NewEntryResponse(saved, timesheet.IsEditable(ts)), nil
}

// DeleteEntry implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) DeleteEntry(ctx context.Context, actor membership.Actor, entryID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.entryRepo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		ts, err := s.timesheetRepo.GetByIDForShare(ctx, entry.TimesheetID)
		if err != nil {
			return err
		}
		if !actor.CanEditFor(ts.WorkerID) {
			return membership.ErrForbidden
		}
		if !timesheet.IsEditable(ts) {
			return timesheet.ErrNotEditable
		}
		return s.entryRepo.Delete(ctx, entry.ID)
	})
}

// DeleteTimesheet implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) DeleteTimesheet(ctx context.Context, actor membership.Actor, id string) error {
	if !actor.IsCompanyAdmin() {
		return membership.ErrForbidden
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ts, err := s.timesheetRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanViewSite(ts.SiteID) {
			return membership.ErrForbidden
		}
		if err := s.approvalRepo.DeleteForSite(ctx, ts.WorkerID, ts.Period, ts.SiteID); err != nil {
			return fmt.Errorf("delete site approval: %w", err)
		}
		if err := s.timesheetRepo.Delete(ctx, ts.ID); err != nil {
			return err
		}
		slog.Info("timesheet force deleted", "timesheet_id", ts.ID, "status", ts.Status, "deleted_by", actor.UserID)
		return nil
	})
}

func toResponses(tss []timesheet.Timesheet) []timesheet.TimesheetResponse {
	out := make([]timesheet.TimesheetResponse, 0, len(tss))
	for _, ts := range tss {
		out = append(out, timesheet.NewTimesheetResponse(ts))
	}
	return out
}

// SubmitMonth implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) SubmitMonth(ctx context.Context, actor membership.Actor, req timesheet.MonthRequest) (timesheet.SubmitMonthResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.SubmitMonthResponse{}, err
	}
	if !actor.CanEditFor(req.WorkerID) {
		return timesheet.SubmitMonthResponse{}, membership.ErrForbidden
	}

	resp := timesheet.SubmitMonthResponse{WorkerID: req.WorkerID, Month: req.Period}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tss, err := s.timesheetRepo.ListByWorkerMonth(ctx, req.WorkerID, req.Period, true)
		if err != nil {
			return err
		}
		if len(tss) == 0 {
			return timesheet.ErrNoTimesheetsForMonth
		}

		from := timesheet.SourcesFor(timesheet.StatusSubmitted)
		var submitted []timesheet.Timesheet
		for i, ts := range tss {
			if !timesheet.IsEditable(ts) {
				continue
			}
			updated, err := s.timesheetRepo.TransitionStatus(ctx, ts.ID, from, timesheet.StatusChange{To: timesheet.StatusSubmitted})
			if err != nil {
				return fmt.Errorf("submit timesheet %s: %w", ts.ID, err)
			}
			tss[i] = updated
			submitted = append(submitted, updated)
		}
		if len(submitted) == 0 {
			return timesheet.ErrInvalidTransition
		}

		resp.Submitted = toResponses(submitted)
		resp.Timesheets = toResponses(tss)
		return nil
	})
	if err != nil {
		return timesheet.SubmitMonthResponse{}, err
	}

	slog.Info("month submitted", "worker_id", req.WorkerID, "month", req.Period.String(), "timesheets", len(resp.Submitted))
	return resp, nil
}

// ReturnTimesheet implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) ReturnTimesheet(ctx context.Context, actor membership.Actor, req timesheet.ReturnTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	var updated timesheet.Timesheet
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ts, err := s.timesheetRepo.GetByID(ctx, req.TimesheetID)
		if err != nil {
			return err
		}
		if !actor.CanSuperviseSite(ts.SiteID) {
			return membership.ErrForbidden
		}

		updated, err = s.timesheetRepo.TransitionStatus(ctx, ts.ID,
			timesheet.SourcesFor(timesheet.StatusReturned),
			timesheet.StatusChange{To: timesheet.StatusReturned, Reason: req.Reason},
		)
		if err != nil {
			return err
		}
		return s.approvalRepo.DeleteForSite(ctx, ts.WorkerID, ts.Period, ts.SiteID)
	})
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}
	return timesheet.NewTimesheetResponse(updated), nil
}

// ApproveSite implements timesheet.TimesheetService. The worker-month rows are
// locked FOR UPDATE so only one of two racing final approvals can promote.
func (s *timesheetServiceImpl) ApproveSite(ctx context.Context, actor membership.Actor, req timesheet.ApproveSiteRequest) (timesheet.ApproveSiteResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.ApproveSiteResponse{}, err
	}
	if !actor.CanSuperviseSite(req.SiteID) {
		return timesheet.ApproveSiteResponse{}, membership.ErrForbidden
	}

	resp := timesheet.ApproveSiteResponse{SiteID: req.SiteID, WorkerID: req.WorkerID, Month: req.Period}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tss, err := s.timesheetRepo.ListByWorkerMonth(ctx, req.WorkerID, req.Period, true)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(tss, func(ts timesheet.Timesheet) bool { return ts.SiteID == req.SiteID })
		if idx < 0 {
			return timesheet.ErrTimesheetNotFound
		}
		if tss[idx].Status != timesheet.StatusSubmitted {
			return timesheet.ErrInvalidTransition
		}

		inserted, err := s.approvalRepo.Record(ctx, timesheet.SiteApproval{
			WorkerID:   req.WorkerID,
			Period:     req.Period,
			SiteID:     req.SiteID,
			ApprovedBy: actor.UserID,
			ApprovedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("record site approval: %w", err)
		}
		if !inserted {
			return fmt.Errorf("%w: %w", timesheet.ErrInvalidTransition, timesheet.ErrSiteAlreadyApproved)
		}

		required, err := s.requiredSites(ctx, tss)
		if err != nil {
			return err
		}
		approvals, err := s.approvalRepo.ListByWorkerMonth(ctx, req.WorkerID, req.Period)
		if err != nil {
			return err
		}
		approved := make([]string, 0, len(approvals))
		for _, a := range approvals {
			approved = append(approved, a.SiteID)
		}
		slices.Sort(approved)

		resp.RequiredSites = required
		resp.ApprovedSites = approved

		for _, site := range required {
			if !slices.Contains(approved, site) {
				resp.Timesheets = toResponses(tss)
				return nil
			}
		}

		for i, ts := range tss {
			if ts.Status != timesheet.StatusSubmitted {
				continue
			}
			updated, err := s.timesheetRepo.TransitionStatus(ctx, ts.ID,
				timesheet.SourcesFor(timesheet.StatusForwarded),
				timesheet.StatusChange{To: timesheet.StatusForwarded},
			)
			if err != nil {
				return fmt.Errorf("forward timesheet %s: %w", ts.ID, err)
			}
			tss[i] = updated
		}
		resp.Forwarded = true
		resp.Timesheets = toResponses(tss)
		return nil
	})
	if err != nil {
		return timesheet.ApproveSiteResponse{}, err
	}

	slog.Info("site approved", "site_id", req.SiteID, "worker_id", req.WorkerID,
		"month", req.Period.String(), "forwarded", resp.Forwarded, "approved_by", actor.UserID)
	return resp, nil
}

// requiredSites is the union of the worker-month's timesheet sites and the
// owning sites of their entries, sorted.
func (s *timesheetServiceImpl) requiredSites(ctx context.Context, tss []timesheet.Timesheet) ([]string, error) {
	ids := make([]string, 0, len(tss))
	var sites []string
	for _, ts := range tss {
		ids = append(ids, ts.ID)
		sites = append(sites, ts.SiteID)
	}
	entries, err := s.entryRepo.ListByTimesheets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	for _, e := range entries {
		sites = append(sites, e.SiteID)
	}
	slices.Sort(sites)
	return slices.Compact(sites), nil
}

// Autofill implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) Autofill(ctx context.Context, actor membership.Actor, req timesheet.AutofillRequest) (timesheet.AutofillResponse, error) {
	if validator.IsEmpty(req.TimesheetID) {
		return timesheet.AutofillResponse{}, validator.ValidationErrors{{Field: "timesheet_id", Message: "timesheet_id is required"}}
	}

	var result reconciliation.FillResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ts, err := s.timesheetRepo.GetByIDForShare(ctx, req.TimesheetID)
		if err != nil {
			return err
		}
		if !actor.CanEditFor(ts.WorkerID) {
			return membership.ErrForbidden
		}
		if !timesheet.IsEditable(ts) {
			return timesheet.ErrNotEditable
		}
		result, err = s.engine.Fill(ctx, ts, reconciliation.Refill, req.OverwriteManual)
		return err
	})
	if err != nil {
		return timesheet.AutofillResponse{}, err
	}

	skipped := result.SkippedDays
	if skipped == nil {
		skipped = []int{}
	}
	return timesheet.AutofillResponse{
		TimesheetID:  req.TimesheetID,
		Written:      result.Written,
		SkippedDays:  skipped,
		FallbackUsed: result.FallbackUsed,
	}, nil
}

// Mismatches implements timesheet.TimesheetService.
func (s *timesheetServiceImpl) Mismatches(ctx context.Context, actor membership.Actor, id string) (timesheet.MismatchResponse, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return timesheet.MismatchResponse{}, err
	}
	if !canView(actor, ts) {
		return timesheet.MismatchResponse{}, membership.ErrForbidden
	}

	entries, err := s.entryRepo.ListByTimesheet(ctx, ts.ID)
	if err != nil {
		return timesheet.MismatchResponse{}, fmt.Errorf("list entries: %w", err)
	}
	schedule, err := s.engine.ScheduleFor(ctx, ts)
	if err != nil {
		return timesheet.MismatchResponse{}, err
	}

	days := reconciliation.Mismatches(entries, schedule)
	if days == nil {
		days = []timesheet.MismatchDay{}
	}
	return timesheet.MismatchResponse{
		TimesheetID:   ts.ID,
		MismatchCount: len(days),
		Days:          days,
	}, nil
}
