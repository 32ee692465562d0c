package roster

type ShiftTypeResponse struct {
	Code         string    `json:"code"`
	Label        string    `json:"label"`
	DefaultHours float64   `json:"default_hours"`
	Active       bool      `json:"active"`
	Category     *Category `json:"category"`
}

func NewShiftTypeResponse(t ShiftType) ShiftTypeResponse {
	return ShiftTypeResponse{
		Code:         t.Code,
		Label:        t.Label,
		DefaultHours: t.DefaultHours,
		Active:       t.Active,
		Category:     t.Category,
	}
}

type ListCatalogRequest struct {
	OrgID      string `json:"org_id"`
	ActiveOnly bool   `json:"active_only"`
}
