package client

import (
	"context"
	"fmt"
	"net/http"
)

type EntryDTO struct {
	ID          string  `json:"id"`
	TimesheetID string  `json:"timesheet_id"`
	SiteID      string  `json:"site_id"`
	Day         int     `json:"day"`
	ShiftCode   *string `json:"shift_code"`
	Hours       float64 `json:"hours"`
	Note        *string `json:"note"`
	Source      string  `json:"source"`
	Editable    bool    `json:"editable"`
}

type TimesheetDTO struct {
	ID       string `json:"id"`
	SiteID   string `json:"site_id"`
	WorkerID string `json:"worker_id"`
	Month    string `json:"month"`
	Status   string `json:"status"`
	Editable bool   `json:"editable"`
}

type MonthViewDTO struct {
	WorkerID       string         `json:"worker_id"`
	Month          string         `json:"month"`
	Classification string         `json:"classification"`
	FixedSiteID    *string        `json:"fixed_site_id,omitempty"`
	Timesheets     []TimesheetDTO `json:"timesheets"`
	Entries        []EntryDTO     `json:"entries"`
	AllLocked      bool           `json:"all_locked"`
}

type AddEntryDTO struct {
	SiteID    string  `json:"site_id,omitempty"`
	WorkerID  string  `json:"worker_id"`
	Month     string  `json:"month"`
	Day       int     `json:"day"`
	ShiftCode *string `json:"shift_code,omitempty"`
	Hours     float64 `json:"hours"`
	Note      *string `json:"note,omitempty"`
}

type SubmitMonthDTO struct {
	WorkerID   string         `json:"worker_id"`
	Month      string         `json:"month"`
	Submitted  []TimesheetDTO `json:"submitted"`
	Timesheets []TimesheetDTO `json:"timesheets"`
}

type TimesheetEndpoint struct {
	transport *Transport
}

func (e *TimesheetEndpoint) MonthView(ctx context.Context, workerID, month string) (*MonthViewDTO, error) {
	var result MonthViewDTO
	query := map[string]string{"worker_id": workerID, "month": month}
	if err := e.transport.Do(ctx, http.MethodGet, "/api/v1/timesheets/month", nil, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *TimesheetEndpoint) AddMonthEntry(ctx context.Context, dto AddEntryDTO) (EntryDTO, error) {
	var result EntryDTO
	err := e.transport.Do(ctx, http.MethodPost, "/api/v1/timesheets/month/entries", dto, nil, &result)
	return result, err
}

func (e *TimesheetEndpoint) DeleteEntry(ctx context.Context, entryID string) error {
	return e.transport.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/timesheets/entries/%s", entryID), nil, nil, nil)
}

func (e *TimesheetEndpoint) SubmitMonth(ctx context.Context, workerID, month string) (*SubmitMonthDTO, error) {
	var result SubmitMonthDTO
	payload := map[string]string{"worker_id": workerID, "month": month}
	if err := e.transport.Do(ctx, http.MethodPost, "/api/v1/timesheets/month/submit", payload, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
