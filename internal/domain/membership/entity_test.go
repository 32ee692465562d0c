package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor_Scopes(t *testing.T) {
	supervisor := Actor{UserID: "u1", Role: RoleSiteSupervisor, Assignment: CompanyAccess{}, SiteIDs: []string{"site-a"}}
	assert.True(t, supervisor.CanViewSite("site-a"))
	assert.True(t, supervisor.CanSuperviseSite("site-a"))
	assert.False(t, supervisor.CanSuperviseSite("site-b"))
	assert.False(t, supervisor.CanEditFor("w1"))
	assert.False(t, supervisor.IsCompanyAdmin())

	companyAdmin := Actor{UserID: "u2", Role: RoleCompanyAdmin, Assignment: CompanyAccess{Positions: []string{"hr"}}, SiteIDs: []string{"site-a", "site-b"}}
	assert.True(t, companyAdmin.CanViewSite("site-b"))
	assert.False(t, companyAdmin.CanSuperviseSite("site-b"))
	assert.False(t, companyAdmin.CanEditFor("w1"))
	assert.True(t, companyAdmin.IsCompanyAdmin())
	assert.False(t, companyAdmin.IsAdmin())

	worker := Actor{UserID: "u3", WorkerID: "w1", Role: RoleWorker, Assignment: Fixed{SiteID: "site-a"}}
	assert.True(t, worker.CanEditFor("w1"))
	assert.False(t, worker.CanEditFor("w2"))
	assert.False(t, worker.CanViewSite("site-a"))
	assert.True(t, worker.IsWorker())

	bank := Actor{UserID: "u5", WorkerID: "w2", Role: RoleWorker, Assignment: Floating{}}
	assert.True(t, bank.CanEditFor("w2"))
	assert.True(t, bank.IsWorker())

	admin := Actor{UserID: "u4", Role: RoleAdmin, Assignment: Admin{}}
	assert.True(t, admin.CanEditFor("anyone"))
	assert.True(t, admin.CanSuperviseSite("anywhere"))
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsCompanyAdmin())
	assert.False(t, admin.IsWorker())
}

func TestActor_AssignmentDecidesOverRole(t *testing.T) {
	// a role string alone grants nothing
	roleOnly := Actor{UserID: "u1", Role: RoleAdmin}
	assert.False(t, roleOnly.IsAdmin())
	assert.False(t, roleOnly.CanViewSite("site-a"))
	assert.False(t, roleOnly.CanEditFor("w1"))

	workerWithSupervisorRole := Actor{UserID: "u2", WorkerID: "w1", Role: RoleSiteSupervisor, Assignment: Floating{}, SiteIDs: []string{"site-a"}}
	assert.False(t, workerWithSupervisorRole.CanSuperviseSite("site-a"))
	assert.True(t, workerWithSupervisorRole.CanEditFor("w1"))
}

func TestActor_IsSelfRequiresWorkerID(t *testing.T) {
	assert.False(t, Actor{Role: RoleWorker, Assignment: Floating{}}.IsSelf(""))
}

func TestAssignmentKind(t *testing.T) {
	assert.Equal(t, "fixed", AssignmentKind(Fixed{SiteID: "s"}))
	assert.Equal(t, "floating", AssignmentKind(Floating{}))
	assert.Equal(t, "company_access", AssignmentKind(CompanyAccess{Positions: []string{"hr"}}))
	assert.Equal(t, "admin", AssignmentKind(Admin{}))
	assert.Equal(t, "unknown", AssignmentKind(nil))
}
