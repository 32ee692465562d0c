package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
)

// FillMode selects how autofill treats days that already hold an entry
type FillMode int

const (
	// InitialFill runs on creation and never touches an existing day
	InitialFill FillMode = iota
	// Refill replaces autofill days and inserts missing ones
	Refill
)

type FillResult struct {
	Written      int
	SkippedDays  []int
	FallbackUsed bool
}

// PlanFill decides which scheduled days to write for ts given its current entries.
// Refill skips manual days unless overwriteManual is set; skipped days are returned sorted.
func PlanFill(ts timesheet.Timesheet, schedule []roster.ScheduleEntry, existing []timesheet.Entry, mode FillMode, overwriteManual bool) ([]timesheet.Entry, []int) {
	current := make(map[int]timesheet.Entry, len(existing))
	for _, e := range existing {
		current[e.Day] = e
	}

	var (
		writes  []timesheet.Entry
		skipped []int
	)
	for _, s := range schedule {
		if s.Day < 1 || s.Day > ts.Period.Days() {
			continue
		}
		if e, ok := current[s.Day]; ok {
			if mode == InitialFill {
				continue
			}
			if e.Source == timesheet.EntrySourceManual && !overwriteManual {
				skipped = append(skipped, s.Day)
				continue
			}
		}
		writes = append(writes, timesheet.Entry{
			TimesheetID: ts.ID,
			SiteID:      ts.SiteID,
			Day:         s.Day,
			ShiftCode:   s.ShiftCode,
			Hours:       s.Hours,
			Source:      timesheet.EntrySourceAutofill,
		})
	}

	sort.Ints(skipped)
	return writes, skipped
}

// Engine copies the locked schedule into a timesheet
type Engine struct {
	schedule  roster.ScheduleSource
	entryRepo timesheet.EntryRepository
	tx        database.Transactor
	fallback  bool
}

func NewEngine(schedule roster.ScheduleSource, entryRepo timesheet.EntryRepository, tx database.Transactor, fallback bool) *Engine {
	return &Engine{
		schedule:  schedule,
		entryRepo: entryRepo,
		tx:        tx,
		fallback:  fallback,
	}
}

// ScheduleFor lists the schedule entries of the timesheet's worker at its site
func (e *Engine) ScheduleFor(ctx context.Context, ts timesheet.Timesheet) ([]roster.ScheduleEntry, error) {
	workerID := ts.WorkerID
	entries, err := e.schedule.ListScheduleEntries(ctx, ts.SiteID, &workerID, ts.Period.Start())
	if err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// Fill writes the schedule into ts. The caller is responsible for holding the
// timesheet's status lock; Fill does not check editability.
func (e *Engine) Fill(ctx context.Context, ts timesheet.Timesheet, mode FillMode, overwriteManual bool) (FillResult, error) {
	schedule, err := e.ScheduleFor(ctx, ts)
	if err != nil {
		return FillResult{}, err
	}
	existing, err := e.entryRepo.ListByTimesheet(ctx, ts.ID)
	if err != nil {
		return FillResult{}, fmt.Errorf("list entries: %w", err)
	}

	writes, skipped := PlanFill(ts, schedule, existing, mode, overwriteManual)
	result := FillResult{SkippedDays: skipped}
	if len(writes) == 0 {
		return result, nil
	}

	var written int
	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		var bulkErr error
		if mode == InitialFill {
			written, bulkErr = e.entryRepo.InsertMissing(ctx, writes)
		} else {
			written, bulkErr = e.entryRepo.UpsertAutofill(ctx, writes, overwriteManual)
		}
		return bulkErr
	})
	if err == nil {
		result.Written = written
		return result, nil
	}
	if !e.fallback {
		return FillResult{}, fmt.Errorf("autofill: %w", err)
	}

	slog.Warn("bulk autofill failed, falling back to per-day upserts",
		"timesheet_id", ts.ID, "days", len(writes), "error", err)

	result.FallbackUsed = true
	for _, entry := range writes {
		if _, err := e.entryRepo.Upsert(ctx, entry); err != nil {
			return FillResult{}, fmt.Errorf("autofill day %d: %w", entry.Day, err)
		}
		result.Written++
	}
	return result, nil
}
