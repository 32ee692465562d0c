package roster

// Category tags a shift type for summary tallies only
type Category string

const (
	CategorySleepIn     Category = "SLEEP_IN"
	CategoryAnnualLeave Category = "ANNUAL_LEAVE"
	CategorySickness    Category = "SICKNESS"
	CategoryWakingNight Category = "WAKING_NIGHT"
	CategoryOtherLeave  Category = "OTHER_LEAVE"
	CategoryWorked      Category = "WORKED"
)

// ShiftType is one entry of an organisation's shift catalog
type ShiftType struct {
	Code         string
	OrgID        string
	Label        string
	DefaultHours float64
	Active       bool
	Category     *Category
}

// Catalog indexes shift types by code
type Catalog map[string]ShiftType

func NewCatalog(types []ShiftType) Catalog {
	c := make(Catalog, len(types))
	for _, t := range types {
		c[t.Code] = t
	}
	return c
}

// CategoryOf returns the category of code, or nil when unknown or untagged
func (c Catalog) CategoryOf(code *string) *Category {
	if code == nil {
		return nil
	}
	t, ok := c[*code]
	if !ok {
		return nil
	}
	return t.Category
}

// ScheduleEntry is one (site, worker, day) cell of a locked published rota
type ScheduleEntry struct {
	SiteID    string
	WorkerID  string
	Day       int
	ShiftCode *string
	Hours     float64
}
