package completion

import (
	"slices"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
)

// Coverage maps a worker to the set of sites it applies to
type Coverage map[string]map[string]struct{}

func (c Coverage) Add(workerID, siteID string) {
	sites, ok := c[workerID]
	if !ok {
		sites = map[string]struct{}{}
		c[workerID] = sites
	}
	sites[siteID] = struct{}{}
}

func (c Coverage) Has(workerID, siteID string) bool {
	_, ok := c[workerID][siteID]
	return ok
}

// Sites returns the worker's sites sorted
func (c Coverage) Sites(workerID string) []string {
	out := make([]string, 0, len(c[workerID]))
	for s := range c[workerID] {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Workers returns every worker id sorted
func (c Coverage) Workers() []string {
	out := make([]string, 0, len(c))
	for w := range c {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// RequiredFromSchedule builds the required set: who was rostered where
func RequiredFromSchedule(entries []roster.ScheduleEntry) Coverage {
	c := Coverage{}
	for _, e := range entries {
		c.Add(e.WorkerID, e.SiteID)
	}
	return c
}

// SubmittedAndForwarded splits timesheets into the submitted set
// (SUBMITTED or FORWARDED) and the forwarded set (FORWARDED only).
func SubmittedAndForwarded(tss []timesheet.Timesheet) (submitted, forwarded Coverage) {
	submitted, forwarded = Coverage{}, Coverage{}
	for _, ts := range tss {
		switch ts.Status {
		case timesheet.StatusForwarded:
			forwarded.Add(ts.WorkerID, ts.SiteID)
			submitted.Add(ts.WorkerID, ts.SiteID)
		case timesheet.StatusSubmitted:
			submitted.Add(ts.WorkerID, ts.SiteID)
		}
	}
	return submitted, forwarded
}

// Compute derives the progress counters and missing list. A worker counts as
// submitted (or forwarded) only when every required site of theirs is.
func Compute(required, submitted, forwarded Coverage) completion.Progress {
	p := completion.Progress{
		Known:         true,
		TotalRequired: len(required),
		Missing:       []completion.MissingWorker{},
	}

	for _, workerID := range required.Workers() {
		var missing []string
		fullyForwarded := true
		for _, siteID := range required.Sites(workerID) {
			if !submitted.Has(workerID, siteID) {
				missing = append(missing, siteID)
			}
			if !forwarded.Has(workerID, siteID) {
				fullyForwarded = false
			}
		}

		if len(missing) == 0 {
			p.SubmittedCount++
		} else {
			p.Missing = append(p.Missing, completion.MissingWorker{WorkerID: workerID, MissingSites: missing})
		}
		if fullyForwarded {
			p.ForwardedCount++
		}
	}
	return p
}
