package report

import "errors"

var (
	ErrReportGenerationFailed = errors.New("failed to generate report")
	ErrProgressUnknown        = errors.New("completion progress could not be computed")
)
