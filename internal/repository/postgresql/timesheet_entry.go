package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `id, timesheet_id, site_id, day, shift_code, hours, note, source, created_at, updated_at`

type timesheetEntryRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetEntryRepository(db *database.DB) timesheet.EntryRepository {
	return &timesheetEntryRepositoryImpl{db: db}
}

func scanEntry(row pgx.Row) (timesheet.Entry, error) {
	var e timesheet.Entry
	err := row.Scan(
		&e.ID,
		&e.TimesheetID,
		&e.SiteID,
		&e.Day,
		&e.ShiftCode,
		&e.Hours,
		&e.Note,
		&e.Source,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func collectEntries(rows pgx.Rows) ([]timesheet.Entry, error) {
	defer rows.Close()

	var out []timesheet.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) GetByID(ctx context.Context, id string) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM timesheet_entries WHERE id = $1`
	e, err := scanEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Entry{}, timesheet.ErrEntryNotFound
		}
		return timesheet.Entry{}, err
	}
	return e, nil
}

// ListByTimesheet implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) ListByTimesheet(ctx context.Context, timesheetID string) ([]timesheet.Entry, error) {
	return r.ListByTimesheets(ctx, []string{timesheetID})
}

// ListByTimesheets implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) ListByTimesheets(ctx context.Context, timesheetIDs []string) ([]timesheet.Entry, error) {
	if len(timesheetIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + entryColumns + `
		FROM timesheet_entries
		WHERE timesheet_id = ANY($1::uuid[])
		ORDER BY day, site_id
	`
	rows, err := q.Query(ctx, query, timesheetIDs)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// Upsert implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) Upsert(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO timesheet_entries (
			id, timesheet_id, site_id, day, shift_code, hours, note, source, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
		ON CONFLICT (timesheet_id, day) DO UPDATE
		SET shift_code = EXCLUDED.shift_code,
			hours = EXCLUDED.hours,
			note = EXCLUDED.note,
			source = EXCLUDED.source,
			site_id = EXCLUDED.site_id,
			updated_at = NOW()
		RETURNING ` + entryColumns

	saved, err := scanEntry(q.QueryRow(ctx, query,
		entry.ID, entry.TimesheetID, entry.SiteID, entry.Day,
		entry.ShiftCode, entry.Hours, entry.Note, string(entry.Source),
	))
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("upsert timesheet entry: %w", err)
	}
	return saved, nil
}

type entryColumnsBatch struct {
	ids          []string
	timesheetIDs []string
	siteIDs      []string
	days         []int32
	shiftCodes   []*string
	hours        []float64
	notes        []*string
	sources      []string
}

func splitEntries(entries []timesheet.Entry) entryColumnsBatch {
	b := entryColumnsBatch{}
	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		b.ids = append(b.ids, id)
		b.timesheetIDs = append(b.timesheetIDs, e.TimesheetID)
		b.siteIDs = append(b.siteIDs, e.SiteID)
		b.days = append(b.days, int32(e.Day))
		b.shiftCodes = append(b.shiftCodes, e.ShiftCode)
		b.hours = append(b.hours, e.Hours)
		b.notes = append(b.notes, e.Note)
		b.sources = append(b.sources, string(e.Source))
	}
	return b
}

const bulkEntrySelect = `
	SELECT id, timesheet_id, site_id, day, shift_code, hours, note, source, NOW(), NOW()
	FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::int[], $5::text[], $6::numeric[], $7::text[], $8::text[])
		AS t(id, timesheet_id, site_id, day, shift_code, hours, note, source)
`

// InsertMissing implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) InsertMissing(ctx context.Context, entries []timesheet.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)
	b := splitEntries(entries)

	query := `
		INSERT INTO timesheet_entries (
			id, timesheet_id, site_id, day, shift_code, hours, note, source, created_at, updated_at
		)` + bulkEntrySelect + `
		ON CONFLICT (timesheet_id, day) DO NOTHING
	`
	commandTag, err := q.Exec(ctx, query,
		b.ids, b.timesheetIDs, b.siteIDs, b.days, b.shiftCodes, b.hours, b.notes, b.sources,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert timesheet entries: %w", err)
	}
	return int(commandTag.RowsAffected()), nil
}

// UpsertAutofill implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) UpsertAutofill(ctx context.Context, entries []timesheet.Entry, overwriteManual bool) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)
	b := splitEntries(entries)

	query := `
		INSERT INTO timesheet_entries (
			id, timesheet_id, site_id, day, shift_code, hours, note, source, created_at, updated_at
		)` + bulkEntrySelect + `
		ON CONFLICT (timesheet_id, day) DO UPDATE
		SET shift_code = EXCLUDED.shift_code,
			hours = EXCLUDED.hours,
			source = EXCLUDED.source,
			updated_at = NOW()
		WHERE $9::boolean OR timesheet_entries.source = 'autofill'
	`
	commandTag, err := q.Exec(ctx, query,
		b.ids, b.timesheetIDs, b.siteIDs, b.days, b.shiftCodes, b.hours, b.notes, b.sources, overwriteManual,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk upsert timesheet entries: %w", err)
	}
	return int(commandTag.RowsAffected()), nil
}

// Delete implements timesheet.EntryRepository.
func (r *timesheetEntryRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	commandTag, err := q.Exec(ctx, `DELETE FROM timesheet_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return timesheet.ErrEntryNotFound
	}
	return nil
}
