package roster

import (
	"context"
	"time"
)

// ScheduleSource reads the locked live rota. workerID may be nil to list every worker.
type ScheduleSource interface {
	ListScheduleEntries(ctx context.Context, siteID string, workerID *string, month time.Time) ([]ScheduleEntry, error)
	ListOrgScheduleEntries(ctx context.Context, orgID string, month time.Time) ([]ScheduleEntry, error)
}

type ShiftCatalogRepository interface {
	ListShiftCatalog(ctx context.Context, orgID string, activeOnly bool) ([]ShiftType, error)
	GetByCode(ctx context.Context, orgID, code string) (ShiftType, error)
}
