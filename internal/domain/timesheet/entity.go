package timesheet

import (
	"fmt"
	"slices"
	"time"
)

// Period identifies a calendar month. It is serialised as "YYYY-MM".
type Period struct {
	Year  int
	Month time.Month
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q, use YYYY-MM: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is midnight UTC on the first day of the month; it is the stored key.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days is the number of calendar days in the month
func (p Period) Days() int {
	return p.Start().AddDate(0, 1, -1).Day()
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusReturned  Status = "RETURNED"
	StatusForwarded Status = "FORWARDED"
)

// EditableStatuses are the only statuses in which entries may change
var EditableStatuses = []Status{StatusDraft, StatusReturned}

// Editable reports whether entries may be written under status s
func (s Status) Editable() bool {
	return slices.Contains(EditableStatuses, s)
}

var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusReturned:  {StatusSubmitted},
	StatusSubmitted: {StatusReturned, StatusForwarded},
	StatusForwarded: {},
}

// CanTransition reports whether from -> to is an edge of the approval workflow
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesFor lists every status that may move to `to`
func SourcesFor(to Status) []Status {
	var out []Status
	for _, from := range []Status{StatusDraft, StatusSubmitted, StatusReturned, StatusForwarded} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

type Timesheet struct {
	ID           string
	SiteID       string
	WorkerID     string
	Period       Period
	Status       Status
	SubmittedAt  *time.Time
	ForwardedAt  *time.Time
	ReturnedAt   *time.Time
	ReturnReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsEditable is the single source of the mutability rule for one timesheet
func IsEditable(ts Timesheet) bool {
	return ts.Status.Editable()
}

// AllLocked is true only when every timesheet is outside {DRAFT, RETURNED}.
// An empty set is not locked: there is nothing submitted yet.
func AllLocked(timesheets []Timesheet) bool {
	if len(timesheets) == 0 {
		return false
	}
	for _, ts := range timesheets {
		if IsEditable(ts) {
			return false
		}
	}
	return true
}

type EntrySource string

const (
	EntrySourceAutofill EntrySource = "autofill"
	EntrySourceManual   EntrySource = "manual"
)

type Entry struct {
	ID          string
	TimesheetID string
	SiteID      string
	Day         int
	ShiftCode   *string
	Hours       float64
	Note        *string
	Source      EntrySource
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SiteApproval records a supervisor's approval of one site's portion of a worker-month
type SiteApproval struct {
	WorkerID   string
	Period     Period
	SiteID     string
	ApprovedBy string
	ApprovedAt time.Time
}

// MismatchReason explains why a day differs from the rota
type MismatchReason string

const (
	MismatchMissingFromTimesheet MismatchReason = "missing_from_timesheet"
	MismatchMissingFromSchedule  MismatchReason = "missing_from_schedule"
	MismatchShift                MismatchReason = "shift_differs"
	MismatchHours                MismatchReason = "hours_differ"
)

// HoursTolerance is the largest hours difference that still counts as a match
const HoursTolerance = 0.001

type MismatchDay struct {
	Day            int            `json:"day"`
	Reason         MismatchReason `json:"reason"`
	TimesheetShift *string        `json:"timesheet_shift,omitempty"`
	ScheduleShift  *string        `json:"schedule_shift,omitempty"`
	TimesheetHours *float64       `json:"timesheet_hours,omitempty"`
	ScheduleHours  *float64       `json:"schedule_hours,omitempty"`
}

// Tally sums hours and counts category-tagged days
type Tally struct {
	TotalHours  float64 `json:"total_hours"`
	SleepIn     int     `json:"sleep_in"`
	AnnualLeave int     `json:"annual_leave"`
	Sickness    int     `json:"sickness"`
	WakingNight int     `json:"waking_night"`
	OtherLeave  int     `json:"other_leave"`
	WorkedDays  int     `json:"worked_days"`
}

// Add folds other into t
func (t Tally) Add(other Tally) Tally {
	return Tally{
		TotalHours:  t.TotalHours + other.TotalHours,
		SleepIn:     t.SleepIn + other.SleepIn,
		AnnualLeave: t.AnnualLeave + other.AnnualLeave,
		Sickness:    t.Sickness + other.Sickness,
		WakingNight: t.WakingNight + other.WakingNight,
		OtherLeave:  t.OtherLeave + other.OtherLeave,
		WorkedDays:  t.WorkedDays + other.WorkedDays,
	}
}
