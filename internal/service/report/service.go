package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/membership"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
)

type ReportServiceImpl struct {
	timesheetService  timesheet.TimesheetService
	completionService completion.CompletionService
	directory         membership.Directory
	sheetName         string
}

func NewReportService(
	timesheetService timesheet.TimesheetService,
	completionService completion.CompletionService,
	directory membership.Directory,
	sheetName string,
) report.ReportService {
	if sheetName == "" {
		sheetName = "Report"
	}
	return &ReportServiceImpl{
		timesheetService:  timesheetService,
		completionService: completionService,
		directory:         directory,
		sheetName:         sheetName,
	}
}

// DiscrepancyReport implements report.ReportService.
func (s *ReportServiceImpl) DiscrepancyReport(ctx context.Context, actor membership.Actor, timesheetID string) (report.Export, error) {
	detail, err := s.timesheetService.GetTimesheet(ctx, actor, timesheetID)
	if err != nil {
		return report.Export{}, err
	}
	mismatches, err := s.timesheetService.Mismatches(ctx, actor, timesheetID)
	if err != nil {
		return report.Export{}, err
	}

	header := DiscrepancyHeader{
		WorkerName: s.workerName(ctx, detail.Timesheet.WorkerID),
		SiteName:   s.siteName(ctx, detail.Timesheet.SiteID),
		Month:      detail.Timesheet.Month.String(),
		Status:     string(detail.Timesheet.Status),
		Tally:      detail.Tally,
	}

	f, err := BuildDiscrepancyWorkbook(s.sheetName, header, mismatches.Days)
	if err != nil {
		return report.Export{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return report.Export{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	return report.Export{
		Filename:    fmt.Sprintf("discrepancy-%s-%s.xlsx", slug(header.WorkerName), header.Month),
		ContentType: report.ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

// CompletionReport implements report.ReportService.
func (s *ReportServiceImpl) CompletionReport(ctx context.Context, actor membership.Actor, req completion.ProgressRequest) (report.Export, error) {
	progress, err := s.completionService.OrganizationProgress(ctx, actor, req)
	if err != nil {
		return report.Export{}, err
	}
	if !progress.Known {
		return report.Export{}, report.ErrProgressUnknown
	}

	f, err := BuildCompletionWorkbook(s.sheetName, progress)
	if err != nil {
		return report.Export{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return report.Export{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	return report.Export{
		Filename:    fmt.Sprintf("completion-%s.xlsx", progress.Month.String()),
		ContentType: report.ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func (s *ReportServiceImpl) workerName(ctx context.Context, workerID string) string {
	name, err := s.directory.LookupDisplayName(ctx, workerID)
	if err != nil {
		slog.Warn("worker name lookup failed", "worker_id", workerID, "error", err)
		return workerID
	}
	return name
}

func (s *ReportServiceImpl) siteName(ctx context.Context, siteID string) string {
	name, err := s.directory.LookupSiteName(ctx, siteID)
	if err != nil {
		slog.Warn("site name lookup failed", "site_id", siteID, "error", err)
		return siteID
	}
	return name
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}
