package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
)

type siteApprovalRepositoryImpl struct {
	db *database.DB
}

func NewSiteApprovalRepository(db *database.DB) timesheet.ApprovalRepository {
	return &siteApprovalRepositoryImpl{db: db}
}

// Record implements timesheet.ApprovalRepository.
func (r *siteApprovalRepositoryImpl) Record(ctx context.Context, approval timesheet.SiteApproval) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO timesheet_site_approvals (worker_id, period_start, site_id, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (worker_id, period_start, site_id) DO NOTHING
	`
	approvedAt := approval.ApprovedAt
	if approvedAt.IsZero() {
		approvedAt = time.Now().UTC()
	}

	commandTag, err := q.Exec(ctx, query,
		approval.WorkerID, approval.Period.Start(), approval.SiteID, approval.ApprovedBy, approvedAt,
	)
	if err != nil {
		return false, err
	}
	return commandTag.RowsAffected() == 1, nil
}

// ListByWorkerMonth implements timesheet.ApprovalRepository.
func (r *siteApprovalRepositoryImpl) ListByWorkerMonth(ctx context.Context, workerID string, period timesheet.Period) ([]timesheet.SiteApproval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT worker_id, period_start, site_id, approved_by, approved_at
		FROM timesheet_site_approvals
		WHERE worker_id = $1 AND period_start = $2
		ORDER BY site_id
	`
	rows, err := q.Query(ctx, query, workerID, period.Start())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []timesheet.SiteApproval
	for rows.Next() {
		var (
			a           timesheet.SiteApproval
			periodStart time.Time
		)
		if err := rows.Scan(&a.WorkerID, &periodStart, &a.SiteID, &a.ApprovedBy, &a.ApprovedAt); err != nil {
			return nil, err
		}
		a.Period = timesheet.PeriodOf(periodStart)
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// DeleteForSite implements timesheet.ApprovalRepository.
func (r *siteApprovalRepositoryImpl) DeleteForSite(ctx context.Context, workerID string, period timesheet.Period, siteID string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		DELETE FROM timesheet_site_approvals
		WHERE worker_id = $1 AND period_start = $2 AND site_id = $3
	`, workerID, period.Start(), siteID)
	return err
}
