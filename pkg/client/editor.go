package client

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrRowLocked    = errors.New("row is locked")
	ErrSiteRequired = errors.New("site is required for floating workers")
)

// EntryAPI is the subset of the timesheet endpoint the editor mutates through
type EntryAPI interface {
	AddMonthEntry(ctx context.Context, dto AddEntryDTO) (EntryDTO, error)
	DeleteEntry(ctx context.Context, entryID string) error
}

type rowKey struct {
	siteID string
	day    int
}

// Editor holds the local rows of one open worker-month. Changes are applied
// locally before the server answers; a failed call restores the affected row
// to its exact state before that change. Changes to the same row run one at a
// time so a snapshot is never another call's optimistic value.
type Editor struct {
	mu          sync.Mutex
	api         EntryAPI
	workerID    string
	month       string
	fixedSiteID string
	rows        map[rowKey]EntryDTO
	inflight    map[rowKey]chan struct{}
}

func NewEditor(api EntryAPI, view *MonthViewDTO) *Editor {
	e := &Editor{
		api:      api,
		workerID: view.WorkerID,
		month:    view.Month,
		rows:     make(map[rowKey]EntryDTO, len(view.Entries)),
		inflight: make(map[rowKey]chan struct{}),
	}
	if view.FixedSiteID != nil {
		e.fixedSiteID = *view.FixedSiteID
	}
	for _, row := range view.Entries {
		e.rows[rowKey{row.SiteID, row.Day}] = row
	}
	return e
}

// Rows returns the current local rows ordered by day then site
func (e *Editor) Rows() []EntryDTO {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]EntryDTO, 0, len(e.rows))
	for _, row := range e.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].SiteID < out[j].SiteID
	})
	return out
}

// Row returns the local row for siteID and day
func (e *Editor) Row(siteID string, day int) (EntryDTO, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	row, ok := e.rows[rowKey{e.site(siteID), day}]
	return row, ok
}

func (e *Editor) site(siteID string) string {
	if siteID == "" {
		return e.fixedSiteID
	}
	return siteID
}

// claim waits until no other change holds key and takes it. The returned
// release must be called once the change has settled.
func (e *Editor) claim(ctx context.Context, key rowKey) (func(), error) {
	for {
		e.mu.Lock()
		busy, held := e.inflight[key]
		if !held {
			done := make(chan struct{})
			e.inflight[key] = done
			e.mu.Unlock()
			return func() {
				e.mu.Lock()
				delete(e.inflight, key)
				e.mu.Unlock()
				close(done)
			}, nil
		}
		e.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// restore puts back the snapshot taken before a failed change
func (e *Editor) restore(key rowKey, snapshot EntryDTO, existed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existed {
		e.rows[key] = snapshot
	} else {
		delete(e.rows, key)
	}
}

// Set writes a day optimistically and reconciles with the server's row
func (e *Editor) Set(ctx context.Context, siteID string, day int, shiftCode *string, hours float64, note *string) (EntryDTO, error) {
	site := e.site(siteID)
	if site == "" {
		return EntryDTO{}, ErrSiteRequired
	}
	key := rowKey{site, day}

	release, err := e.claim(ctx, key)
	if err != nil {
		return EntryDTO{}, err
	}
	defer release()

	e.mu.Lock()
	snapshot, existed := e.rows[key]
	if existed && !snapshot.Editable {
		e.mu.Unlock()
		return EntryDTO{}, ErrRowLocked
	}
	optimistic := snapshot
	optimistic.SiteID = site
	optimistic.Day = day
	optimistic.ShiftCode = shiftCode
	optimistic.Hours = hours
	optimistic.Note = note
	optimistic.Source = "manual"
	optimistic.Editable = true
	e.rows[key] = optimistic
	e.mu.Unlock()

	saved, err := e.api.AddMonthEntry(ctx, AddEntryDTO{
		SiteID:    site,
		WorkerID:  e.workerID,
		Month:     e.month,
		Day:       day,
		ShiftCode: shiftCode,
		Hours:     hours,
		Note:      note,
	})
	if err != nil {
		e.restore(key, snapshot, existed)
		return EntryDTO{}, err
	}

	e.mu.Lock()
	e.rows[key] = saved
	e.mu.Unlock()
	return saved, nil
}

// Clear deletes a day optimistically. Clearing a day with no row is a no-op.
func (e *Editor) Clear(ctx context.Context, siteID string, day int) error {
	key := rowKey{e.site(siteID), day}

	release, err := e.claim(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	e.mu.Lock()
	snapshot, existed := e.rows[key]
	if !existed {
		e.mu.Unlock()
		return nil
	}
	if !snapshot.Editable {
		e.mu.Unlock()
		return ErrRowLocked
	}
	delete(e.rows, key)
	e.mu.Unlock()

	if err := e.api.DeleteEntry(ctx, snapshot.ID); err != nil {
		e.restore(key, snapshot, true)
		return err
	}
	return nil
}
