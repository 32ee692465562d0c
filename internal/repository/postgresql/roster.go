package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type rosterRepositoryImpl struct {
	db *database.DB
}

// NewRosterRepository reads schedule entries of locked published rotas
func NewRosterRepository(db *database.DB) roster.ScheduleSource {
	return &rosterRepositoryImpl{db: db}
}

func collectScheduleEntries(rows pgx.Rows) ([]roster.ScheduleEntry, error) {
	defer rows.Close()

	var out []roster.ScheduleEntry
	for rows.Next() {
		var e roster.ScheduleEntry
		if err := rows.Scan(&e.SiteID, &e.WorkerID, &e.Day, &e.ShiftCode, &e.Hours); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListScheduleEntries implements roster.ScheduleSource.
func (r *rosterRepositoryImpl) ListScheduleEntries(ctx context.Context, siteID string, workerID *string, month time.Time) ([]roster.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ro.site_id, re.worker_id, re.day, re.shift_code, re.hours
		FROM rota_entries re
		INNER JOIN rotas ro ON ro.id = re.rota_id
		WHERE ro.site_id = $1
			AND ro.period_start = $2
			AND ro.locked = TRUE
			AND ($3::uuid IS NULL OR re.worker_id = $3::uuid)
		ORDER BY re.worker_id, re.day
	`
	rows, err := q.Query(ctx, query, siteID, month, workerID)
	if err != nil {
		return nil, err
	}
	return collectScheduleEntries(rows)
}

// ListOrgScheduleEntries implements roster.ScheduleSource.
func (r *rosterRepositoryImpl) ListOrgScheduleEntries(ctx context.Context, orgID string, month time.Time) ([]roster.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ro.site_id, re.worker_id, re.day, re.shift_code, re.hours
		FROM rota_entries re
		INNER JOIN rotas ro ON ro.id = re.rota_id
		INNER JOIN sites s ON s.id = ro.site_id
		WHERE s.org_id = $1
			AND ro.period_start = $2
			AND ro.locked = TRUE
		ORDER BY re.worker_id, ro.site_id, re.day
	`
	rows, err := q.Query(ctx, query, orgID, month)
	if err != nil {
		return nil, err
	}
	return collectScheduleEntries(rows)
}
