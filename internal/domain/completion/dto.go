package completion

import (
	"encoding/json"

	"github.com/cmlabs-hris/rota-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/validator"
)

type Scope string

const (
	ScopeSite         Scope = "site"
	ScopeOrganization Scope = "organization"
)

type ProgressRequest struct {
	SiteID string `json:"site_id"`
	Month  string `json:"month" validate:"required"`

	Period timesheet.Period `json:"-"`
}

func (r *ProgressRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	p, err := timesheet.ParsePeriod(r.Month)
	if err != nil {
		errs.Add("month", "month must use YYYY-MM format")
	}
	r.Period = p
	return errs.OrNil()
}

// MissingWorker lists the sites a rostered worker has not submitted for yet
type MissingWorker struct {
	WorkerID     string   `json:"worker_id"`
	DisplayName  string   `json:"display_name"`
	MissingSites []string `json:"missing_sites"`
}

// SummaryRow is one line of the organisation view. Floating workers get a
// single row folding every site they worked at.
type SummaryRow struct {
	WorkerID       string          `json:"worker_id"`
	DisplayName    string          `json:"display_name"`
	Classification string          `json:"classification"`
	SiteIDs        []string        `json:"site_ids"`
	Submitted      bool            `json:"submitted"`
	Forwarded      bool            `json:"forwarded"`
	Tally          timesheet.Tally `json:"tally"`
}

// Progress is recomputed on every request. Known is false when the tracker
// could not compute it; the other fields are then zero.
type Progress struct {
	Known          bool             `json:"known"`
	Scope          Scope            `json:"scope,omitempty"`
	SiteID         string           `json:"site_id,omitempty"`
	Month          timesheet.Period `json:"month,omitzero"`
	TotalRequired  int              `json:"total_required"`
	SubmittedCount int              `json:"submitted_count"`
	ForwardedCount int              `json:"forwarded_count"`
	Missing        []MissingWorker  `json:"missing"`
	Rows           []SummaryRow     `json:"rows,omitempty"`
}

// Unknown is the degraded progress returned when computation fails
func Unknown() Progress {
	return Progress{Known: false}
}

// MarshalJSON renders unknown progress as {"known": false} only
func (p Progress) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return []byte(`{"known":false}`), nil
	}
	type plain Progress
	return json.Marshal(plain(p))
}
