package report

import (
	"context"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
)

// ReportService renders supervisor reports as spreadsheets
type ReportService interface {
	// Discrepancy report of one timesheet against the live rota
	DiscrepancyReport(ctx context.Context, actor membership.Actor, timesheetID string) (Export, error)

	// Organisation completion report with one row per summary line
	CompletionReport(ctx context.Context, actor membership.Actor, req completion.ProgressRequest) (Export, error)
}
