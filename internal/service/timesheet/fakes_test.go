package timesheet

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/service/reconciliation"
)

// memStore backs the three timesheet repositories with maps
type memStore struct {
	mu         sync.Mutex
	seq        int
	timesheets map[string]timesheet.Timesheet
	entries    map[string]timesheet.Entry
	approvals  map[string]timesheet.SiteApproval
}

func newMemStore() *memStore {
	return &memStore{
		timesheets: map[string]timesheet.Timesheet{},
		entries:    map[string]timesheet.Entry{},
		approvals:  map[string]timesheet.SiteApproval{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func approvalKey(workerID string, period timesheet.Period, siteID string) string {
	return workerID + "|" + period.String() + "|" + siteID
}

type memTimesheets struct{ *memStore }

func (m memTimesheets) GetOrCreate(ctx context.Context, siteID, workerID string, period timesheet.Period) (timesheet.Timesheet, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ts := range m.timesheets {
		if ts.SiteID == siteID && ts.WorkerID == workerID && ts.Period == period {
			return ts, false, nil
		}
	}
	ts := timesheet.Timesheet{
		ID:        m.nextID("ts"),
		SiteID:    siteID,
		WorkerID:  workerID,
		Period:    period,
		Status:    timesheet.StatusDraft,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.timesheets[ts.ID] = ts
	return ts, true, nil
}

func (m memTimesheets) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.timesheets[id]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return ts, nil
}

func (m memTimesheets) GetByIDForShare(ctx context.Context, id string) (timesheet.Timesheet, error) {
	return m.GetByID(ctx, id)
}

func (m memTimesheets) ListByWorkerMonth(ctx context.Context, workerID string, period timesheet.Period, forUpdate bool) ([]timesheet.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timesheet.Timesheet
	for _, ts := range m.timesheets {
		if ts.WorkerID == workerID && ts.Period == period {
			out = append(out, ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out, nil
}

func (m memTimesheets) ListBySiteMonth(ctx context.Context, siteID string, period timesheet.Period) ([]timesheet.Timesheet, error) {
	return m.ListBySitesMonth(ctx, []string{siteID}, period)
}

func (m memTimesheets) ListBySitesMonth(ctx context.Context, siteIDs []string, period timesheet.Period) ([]timesheet.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timesheet.Timesheet
	for _, ts := range m.timesheets {
		if slices.Contains(siteIDs, ts.SiteID) && ts.Period == period {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (m memTimesheets) TransitionStatus(ctx context.Context, id string, from []timesheet.Status, change timesheet.StatusChange) (timesheet.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.timesheets[id]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	if !slices.Contains(from, ts.Status) {
		return timesheet.Timesheet{}, timesheet.ErrInvalidTransition
	}
	now := time.Now()
	ts.Status = change.To
	switch change.To {
	case timesheet.StatusSubmitted:
		ts.SubmittedAt = &now
	case timesheet.StatusForwarded:
		ts.ForwardedAt = &now
	case timesheet.StatusReturned:
		ts.ReturnedAt = &now
		ts.ReturnReason = change.Reason
	}
	m.timesheets[id] = ts
	return ts, nil
}

func (m memTimesheets) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timesheets[id]; !ok {
		return timesheet.ErrTimesheetNotFound
	}
	delete(m.timesheets, id)
	for eid, e := range m.entries {
		if e.TimesheetID == id {
			delete(m.entries, eid)
		}
	}
	return nil
}

// setStatus forces a status for test setup
func (m *memStore) setStatus(id string, status timesheet.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := m.timesheets[id]
	ts.Status = status
	m.timesheets[id] = ts
}

func (m *memStore) status(id string) timesheet.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timesheets[id].Status
}

func (m *memStore) entriesOf(timesheetID string) []timesheet.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timesheet.Entry
	for _, e := range m.entries {
		if e.TimesheetID == timesheetID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

type memEntries struct{ *memStore }

func (m memEntries) GetByID(ctx context.Context, id string) (timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}
	return e, nil
}

func (m memEntries) ListByTimesheet(ctx context.Context, timesheetID string) ([]timesheet.Entry, error) {
	return m.entriesOf(timesheetID), nil
}

func (m memEntries) ListByTimesheets(ctx context.Context, ids []string) ([]timesheet.Entry, error) {
	var out []timesheet.Entry
	for _, id := range ids {
		out = append(out, m.entriesOf(id)...)
	}
	return out, nil
}

func (m memEntries) upsertLocked(e timesheet.Entry) timesheet.Entry {
	for id, existing := range m.entries {
		if existing.TimesheetID == e.TimesheetID && existing.Day == e.Day {
			e.ID = id
			e.CreatedAt = existing.CreatedAt
			m.entries[id] = e
			return e
		}
	}
	e.ID = m.nextID("entry")
	m.entries[e.ID] = e
	return e
}

func (m memEntries) Upsert(ctx context.Context, e timesheet.Entry) (timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertLocked(e), nil
}

func (m memEntries) hasDay(timesheetID string, day int) (timesheet.Entry, bool) {
	for _, existing := range m.entries {
		if existing.TimesheetID == timesheetID && existing.Day == day {
			return existing, true
		}
	}
	return timesheet.Entry{}, false
}

func (m memEntries) InsertMissing(ctx context.Context, entries []timesheet.Entry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range entries {
		if _, ok := m.hasDay(e.TimesheetID, e.Day); ok {
			continue
		}
		m.upsertLocked(e)
		n++
	}
	return n, nil
}

func (m memEntries) UpsertAutofill(ctx context.Context, entries []timesheet.Entry, overwriteManual bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range entries {
		if existing, ok := m.hasDay(e.TimesheetID, e.Day); ok && existing.Source == timesheet.EntrySourceManual && !overwriteManual {
			continue
		}
		m.upsertLocked(e)
		n++
	}
	return n, nil
}

func (m memEntries) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return timesheet.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

type memApprovals struct{ *memStore }

func (m memApprovals) Record(ctx context.Context, a timesheet.SiteApproval) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := approvalKey(a.WorkerID, a.Period, a.SiteID)
	if _, ok := m.approvals[key]; ok {
		return false, nil
	}
	m.approvals[key] = a
	return true, nil
}

func (m memApprovals) ListByWorkerMonth(ctx context.Context, workerID string, period timesheet.Period) ([]timesheet.SiteApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timesheet.SiteApproval
	for _, a := range m.approvals {
		if a.WorkerID == workerID && a.Period == period {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memApprovals) DeleteForSite(ctx context.Context, workerID string, period timesheet.Period, siteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.approvals, approvalKey(workerID, period, siteID))
	return nil
}

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubSchedule struct {
	entries []roster.ScheduleEntry
}

func (s stubSchedule) ListScheduleEntries(ctx context.Context, siteID string, workerID *string, month time.Time) ([]roster.ScheduleEntry, error) {
	var out []roster.ScheduleEntry
	for _, e := range s.entries {
		if e.SiteID == siteID && (workerID == nil || e.WorkerID == *workerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s stubSchedule) ListOrgScheduleEntries(ctx context.Context, orgID string, month time.Time) ([]roster.ScheduleEntry, error) {
	return s.entries, nil
}

type stubCatalog struct {
	types []roster.ShiftType
}

func (s stubCatalog) ListShiftCatalog(ctx context.Context, orgID string, activeOnly bool) ([]roster.ShiftType, error) {
	return s.types, nil
}

func (s stubCatalog) GetByCode(ctx context.Context, orgID, code string) (roster.ShiftType, error) {
	for _, t := range s.types {
		if t.Code == code {
			return t, nil
		}
	}
	return roster.ShiftType{}, roster.ErrShiftTypeNotFound
}

type stubResolver struct {
	classification map[string]membership.Assignment
}

func (s stubResolver) ResolveEffectiveRole(ctx context.Context, userID string) (membership.Role, error) {
	return membership.RoleWorker, nil
}

func (s stubResolver) ResolveSiteScope(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (s stubResolver) ResolveWorkerClassification(ctx context.Context, workerID string, month time.Time) (membership.Assignment, error) {
	a, ok := s.classification[workerID]
	if !ok {
		return nil, membership.ErrWorkerNotFound
	}
	return a, nil
}

func (s stubResolver) ResolveAssignment(ctx context.Context, userID string) (membership.Assignment, error) {
	return membership.Floating{}, nil
}

type stubDirectory struct{}

func (stubDirectory) LookupDisplayName(ctx context.Context, workerID string) (string, error) {
	return "Worker " + workerID, nil
}

func (stubDirectory) LookupDisplayNames(ctx context.Context, workerIDs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range workerIDs {
		out[id] = "Worker " + id
	}
	return out, nil
}

func (stubDirectory) LookupSiteName(ctx context.Context, siteID string) (string, error) {
	return "Site " + siteID, nil
}

// foreignSites belong to an organisation other than the test actors'
var foreignSites = map[string]string{"site-zz": "org-2"}

func (stubDirectory) GetSiteOrgID(ctx context.Context, siteID string) (string, error) {
	if orgID, ok := foreignSites[siteID]; ok {
		return orgID, nil
	}
	return "org-1", nil
}

func (stubDirectory) ListOrgSiteIDs(ctx context.Context, orgID string) ([]string, error) {
	return []string{"site-a", "site-b"}, nil
}

type fixture struct {
	store   *memStore
	service timesheet.TimesheetService
}

// newFixture treats w1 and w2 as floating workers unless classification is given
func newFixture(schedule []roster.ScheduleEntry, classification map[string]membership.Assignment) fixture {
	if classification == nil {
		classification = map[string]membership.Assignment{
			"w1": membership.Floating{},
			"w2": membership.Floating{},
		}
	}
	store := newMemStore()
	sleep := roster.CategorySleepIn
	catalog := stubCatalog{types: []roster.ShiftType{
		{Code: "E", OrgID: "org-1", Label: "Early", DefaultHours: 8, Active: true},
		{Code: "SLEEP", OrgID: "org-1", Label: "Sleep-in", Active: true, Category: &sleep},
		{Code: "OLD", OrgID: "org-1", Label: "Retired", Active: false},
	}}
	entries := memEntries{store}
	engine := reconciliation.NewEngine(stubSchedule{entries: schedule}, entries, passTx{}, true)

	svc := NewTimesheetService(
		passTx{},
		memTimesheets{store},
		entries,
		memApprovals{store},
		catalog,
		stubResolver{classification: classification},
		stubDirectory{},
		engine,
	)
	return fixture{store: store, service: svc}
}
