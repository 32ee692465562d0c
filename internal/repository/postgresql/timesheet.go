package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const timesheetColumns = `id, site_id, worker_id, period_start, status, submitted_at, forwarded_at,
	returned_at, return_reason, created_at, updated_at`

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

func scanTimesheet(row pgx.Row) (timesheet.Timesheet, error) {
	var (
		ts          timesheet.Timesheet
		periodStart time.Time
	)
	err := row.Scan(
		&ts.ID,
		&ts.SiteID,
		&ts.WorkerID,
		&periodStart,
		&ts.Status,
		&ts.SubmittedAt,
		&ts.ForwardedAt,
		&ts.ReturnedAt,
		&ts.ReturnReason,
		&ts.CreatedAt,
		&ts.UpdatedAt,
	)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	ts.Period = timesheet.PeriodOf(periodStart)
	return ts, nil
}

func collectTimesheets(rows pgx.Rows) ([]timesheet.Timesheet, error) {
	defer rows.Close()

	var out []timesheet.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// GetOrCreate implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetOrCreate(ctx context.Context, siteID, workerID string, period timesheet.Period) (timesheet.Timesheet, bool, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO timesheets (id, site_id, worker_id, period_start, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (site_id, worker_id, period_start) DO NOTHING
		RETURNING ` + timesheetColumns

	id := uuid.Must(uuid.NewV7()).String()
	ts, err := scanTimesheet(q.QueryRow(ctx, insert, id, siteID, workerID, period.Start(), timesheet.StatusDraft))
	if err == nil {
		return ts, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return timesheet.Timesheet{}, false, fmt.Errorf("insert timesheet: %w", err)
	}

	// Another request created it first
	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE site_id = $1 AND worker_id = $2 AND period_start = $3
	`
	ts, err = scanTimesheet(q.QueryRow(ctx, query, siteID, workerID, period.Start()))
	if err != nil {
		return timesheet.Timesheet{}, false, fmt.Errorf("select timesheet: %w", err)
	}
	return ts, false, nil
}

// GetByID implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForShare implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) GetByIDForShare(ctx context.Context, id string) (timesheet.Timesheet, error) {
	return r.getByID(ctx, id, "FOR SHARE")
}

func (r *timesheetRepositoryImpl) getByID(ctx context.Context, id string, lock string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE id = $1
	` + lock

	ts, err := scanTimesheet(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, err
	}
	return ts, nil
}

// ListByWorkerMonth implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) ListByWorkerMonth(ctx context.Context, workerID string, period timesheet.Period, forUpdate bool) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE worker_id = $1 AND period_start = $2
		ORDER BY site_id
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, err := q.Query(ctx, query, workerID, period.Start())
	if err != nil {
		return nil, err
	}
	return collectTimesheets(rows)
}

// ListBySiteMonth implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) ListBySiteMonth(ctx context.Context, siteID string, period timesheet.Period) ([]timesheet.Timesheet, error) {
	return r.ListBySitesMonth(ctx, []string{siteID}, period)
}

// ListBySitesMonth implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) ListBySitesMonth(ctx context.Context, siteIDs []string, period timesheet.Period) ([]timesheet.Timesheet, error) {
	if len(siteIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE site_id = ANY($1::uuid[]) AND period_start = $2
		ORDER BY worker_id, site_id
	`

	rows, err := q.Query(ctx, query, siteIDs, period.Start())
	if err != nil {
		return nil, err
	}
	return collectTimesheets(rows)
}

// TransitionStatus implements timesheet.TimesheetRepository.
func (r *timesheetRepositoryImpl) TransitionStatus(ctx context.Context, id string, from []timesheet.Status, change timesheet.StatusChange) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	fromValues := make([]string, 0, len(from))
	for _, s := range from {
		fromValues = append(fromValues, string(s))
	}

	query := `
		UPDATE timesheets
		SET status = $2::text,
			submitted_at = CASE WHEN $2::text = 'SUBMITTED' THEN NOW() ELSE submitted_at END,
			forwarded_at = CASE WHEN $2::text = 'FORWARDED' THEN NOW() ELSE forwarded_at END,
			returned_at = CASE WHEN $2::text = 'RETURNED' THEN NOW() ELSE returned_at END,
			return_reason = CASE WHEN $2::text = 'RETURNED' THEN $4 ELSE return_reason END,
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($3::text[])
		RETURNING ` + timesheetColumns

	ts, err := scanTimesheet(q.QueryRow(ctx, query, id, string(change.To), fromValues, change.Reason))
	if err == nil {
		return ts, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return timesheet.Timesheet{}, fmt.Errorf("update timesheet status: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM timesheets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return timesheet.Timesheet{}, err
	}
	if !exists {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return timesheet.Timesheet{}, timesheet.ErrInvalidTransition
}

// Delete implements timesheet.TimesheetRepository. Entries go with it through ON DELETE CASCADE.
func (r *timesheetRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	commandTag, err := q.Exec(ctx, `DELETE FROM timesheets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return timesheet.ErrTimesheetNotFound
	}
	return nil
}
