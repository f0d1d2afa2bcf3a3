package permission

import (
	"testing"

	"github.com/google/uuid"

	"petrosmart-backend/shared/database/models"
)

func userWithRole(role models.RoleType) *models.User {
	return &models.User{
		ID:   uuid.New(),
		Role: models.Role{Name: role},
	}
}

func TestSuperAdminManagesEverything(t *testing.T) {
	admin := userWithRole(models.RoleSuperAdmin)

	checks := []struct {
		action  Action
		subject Subject
	}{
		{ActionManage, SubjectAll},
		{ActionDelete, SubjectUser},
		{ActionManage, SubjectRole},
		{ActionCreate, SubjectStation},
		{ActionRead, SubjectReport},
	}

	for _, check := range checks {
		if !Can(admin, check.action, check.subject, nil) {
			t.Errorf("super admin should be able to %s %s", check.action, check.subject)
		}
	}
}

func TestAdminCannotManageRolesButCanReadThem(t *testing.T) {
	admin := userWithRole(models.RoleAdmin)

	if !Can(admin, ActionRead, SubjectRole, nil) {
		t.Error("admin should read roles")
	}
	if Can(admin, ActionManage, SubjectRole, nil) {
		t.Error("admin must not manage roles")
	}
	if !Can(admin, ActionDelete, SubjectUser, nil) {
		t.Error("admin should delete users")
	}
	if !Can(admin, ActionUpdate, SubjectStation, nil) {
		t.Error("admin manage grant on stations should cover update")
	}
}

func TestManagerSelfAndStationScoping(t *testing.T) {
	manager := userWithRole(models.RoleManager)
	other := userWithRole(models.RoleUser)

	// Update user is self scoped.
	if !Can(manager, ActionUpdate, SubjectUser, manager) {
		t.Error("manager should update own record")
	}
	if Can(manager, ActionUpdate, SubjectUser, other) {
		t.Error("manager must not update other accounts")
	}

	// Type-level checks pass for conditional grants.
	if !Can(manager, ActionUpdate, SubjectUser, nil) {
		t.Error("type-level update users should pass for manager")
	}

	// Station update is scoped to managed stations.
	owned := &models.Station{ID: uuid.New(), ManagerID: &manager.ID}
	foreign := &models.Station{ID: uuid.New()}
	if !Can(manager, ActionUpdate, SubjectStation, owned) {
		t.Error("manager should update own station")
	}
	if Can(manager, ActionUpdate, SubjectStation, foreign) {
		t.Error("manager must not update unmanaged stations")
	}

	if Can(manager, ActionDelete, SubjectUser, nil) {
		t.Error("manager must not delete users")
	}
}

func TestStaffScope(t *testing.T) {
	staff := userWithRole(models.RoleStaff)
	other := userWithRole(models.RoleUser)

	if !Can(staff, ActionRead, SubjectUser, staff) {
		t.Error("staff should read own record")
	}
	if Can(staff, ActionRead, SubjectUser, other) {
		t.Error("staff must not read other accounts")
	}
	if !Can(staff, ActionUpdate, SubjectInventory, nil) {
		t.Error("staff should update inventory")
	}
	if Can(staff, ActionCreate, SubjectReport, nil) {
		t.Error("staff must not create reports")
	}
}

func TestUserAndGuestScope(t *testing.T) {
	user := userWithRole(models.RoleUser)
	guest := userWithRole(models.RoleGuest)

	if !Can(user, ActionUpdate, SubjectUser, user) {
		t.Error("user should update own record")
	}
	if Can(user, ActionRead, SubjectStation, nil) {
		t.Error("user must not read stations")
	}

	if !Can(guest, ActionRead, SubjectSettings, nil) {
		t.Error("guest should read settings")
	}
	if Can(guest, ActionRead, SubjectUser, guest) {
		t.Error("guest must not read accounts")
	}
}

func TestUnknownRoleDeniesEverything(t *testing.T) {
	nobody := userWithRole(models.RoleType("intern"))

	if Can(nobody, ActionRead, SubjectSettings, nil) {
		t.Error("unknown role must deny all")
	}
}
