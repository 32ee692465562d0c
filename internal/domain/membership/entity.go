package membership

import "slices"

type Role string

const (
	RoleAdmin          Role = "ADMIN"           // Platform admin - full access
	RoleSiteSupervisor Role = "SITE_SUPERVISOR" // Returns/approves timesheets for scoped sites
	RoleCompanyAdmin   Role = "COMPANY_ADMIN"   // Organisation-wide view and force delete
	RoleWorker         Role = "WORKER"          // Edits and submits own timesheets
)

// Actor is the caller of every engine operation. It is built once per request
// from the token and the membership resolver and passed explicitly. Assignment
// decides the kind of access; Role separates supervisors from company admins
// inside CompanyAccess.
type Actor struct {
	UserID     string
	WorkerID   string
	OrgID      string
	Role       Role
	Assignment Assignment
	SiteIDs    []string
}

func (a Actor) IsAdmin() bool {
	_, ok := a.Assignment.(Admin)
	return ok
}

func (a Actor) IsCompanyAdmin() bool {
	switch a.Assignment.(type) {
	case Admin:
		return true
	case CompanyAccess:
		return a.Role == RoleCompanyAdmin
	case Fixed, Floating:
		return false
	default:
		return false
	}
}

// IsWorker reports whether the actor acts as a rostered worker
func (a Actor) IsWorker() bool {
	switch a.Assignment.(type) {
	case Fixed, Floating:
		return true
	case CompanyAccess, Admin:
		return false
	default:
		return false
	}
}

// IsSelf reports whether the actor is acting on their own worker record
func (a Actor) IsSelf(workerID string) bool {
	return a.WorkerID != "" && a.WorkerID == workerID
}

// HasSite reports whether siteID is inside the actor's resolved scope
func (a Actor) HasSite(siteID string) bool {
	return slices.Contains(a.SiteIDs, siteID)
}

// CanViewSite covers read access to a site's timesheets and reports
func (a Actor) CanViewSite(siteID string) bool {
	switch a.Assignment.(type) {
	case Admin:
		return true
	case CompanyAccess:
		return a.HasSite(siteID)
	case Fixed, Floating:
		return false
	default:
		return false
	}
}

// CanSuperviseSite covers return/approve on a site's timesheets
func (a Actor) CanSuperviseSite(siteID string) bool {
	switch a.Assignment.(type) {
	case Admin:
		return true
	case CompanyAccess:
		return a.Role == RoleSiteSupervisor && a.HasSite(siteID)
	case Fixed, Floating:
		return false
	default:
		return false
	}
}

// CanEditFor covers entry mutation and submission on behalf of workerID
func (a Actor) CanEditFor(workerID string) bool {
	switch a.Assignment.(type) {
	case Admin:
		return true
	case Fixed, Floating:
		return a.IsSelf(workerID)
	case CompanyAccess:
		return false
	default:
		return false
	}
}

// Assignment is the tagged variant describing how an actor or worker is attached
// to the organisation: Fixed, Floating, CompanyAccess or Admin.
type Assignment interface {
	assignment()
}

// Fixed workers are attached to exactly one site
type Fixed struct {
	SiteID string
}

// Floating ("bank") workers have no fixed site and work wherever rostered
type Floating struct{}

// CompanyAccess grants organisation-wide access through the listed positions
type CompanyAccess struct {
	Positions []string
}

type Admin struct{}

func (Fixed) assignment()         {}
func (Floating) assignment()      {}
func (CompanyAccess) assignment() {}
func (Admin) assignment()         {}

// AssignmentKind returns the wire name of an assignment
func AssignmentKind(a Assignment) string {
	switch a.(type) {
	case Fixed:
		return "fixed"
	case Floating:
		return "floating"
	case CompanyAccess:
		return "company_access"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}
