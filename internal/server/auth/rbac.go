package auth

const (
	RoleSuperAdmin   = "super_admin"
	RoleHRAdmin      = "hr_admin"
	RoleHRManager    = "hr_manager"
	RoleHRSpecialist = "hr_specialist"
	RoleManager      = "manager"
	RoleEmployee     = "employee"
	RoleViewer       = "viewer"
)

// Roles lists every role, most privileged first.
var Roles = []string{RoleSuperAdmin, RoleHRAdmin, RoleHRManager, RoleHRSpecialist, RoleManager, RoleEmployee, RoleViewer}

type Permission string

const (
	EmployeesView   Permission = "employees:view"
	EmployeesCreate Permission = "employees:create"
	EmployeesUpdate Permission = "employees:update"
	EmployeesDelete Permission = "employees:delete"

	PayrollView   Permission = "payroll:view"
	PayrollCreate Permission = "payroll:create"
	PayrollUpdate Permission = "payroll:update"
	PayrollDelete Permission = "payroll:delete"

	TimeView   Permission = "time:view"
	TimeCreate Permission = "time:create"
	TimeUpdate Permission = "time:update"
	TimeDelete Permission = "time:delete"

	LeaveView    Permission = "leave:view"
	LeaveCreate  Permission = "leave:create"
	LeaveUpdate  Permission = "leave:update"
	LeaveApprove Permission = "leave:approve"
	LeaveDelete  Permission = "leave:delete"

	RecruitingView   Permission = "recruiting:view"
	RecruitingCreate Permission = "recruiting:create"
	RecruitingUpdate Permission = "recruiting:update"
	RecruitingDelete Permission = "recruiting:delete"

	BenefitsView   Permission = "benefits:view"
	BenefitsCreate Permission = "benefits:create"
	BenefitsUpdate Permission = "benefits:update"
	BenefitsDelete Permission = "benefits:delete"

	CommissionsView    Permission = "bonuses:view"
	CommissionsCreate  Permission = "bonuses:create"
	CommissionsUpdate  Permission = "bonuses:update"
	CommissionsApprove Permission = "bonuses:approve"
	CommissionsDelete  Permission = "bonuses:delete"

	UsersManage Permission = "users:manage"
	SystemAdmin Permission = "system:admin"
)

func perms(ps ...Permission) map[Permission]bool {
	m := make(map[Permission]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}

var hrStaff = []Permission{
	EmployeesView, EmployeesCreate, EmployeesUpdate,
	TimeView, TimeCreate, TimeUpdate,
	LeaveView, LeaveCreate, LeaveUpdate,
	RecruitingView, RecruitingCreate, RecruitingUpdate,
	BenefitsView, BenefitsCreate, BenefitsUpdate,
	CommissionsView, CommissionsCreate, CommissionsUpdate,
}

var rolePermissions = map[string]map[Permission]bool{
	RoleHRAdmin: perms(append(append([]Permission{}, hrStaff...),
		EmployeesDelete,
		PayrollView, PayrollCreate, PayrollUpdate, PayrollDelete,
		TimeDelete, LeaveApprove, LeaveDelete,
		RecruitingDelete, BenefitsDelete,
		CommissionsApprove, CommissionsDelete,
		UsersManage,
	)...),
	RoleHRManager: perms(append(append([]Permission{}, hrStaff...),
		PayrollView, PayrollCreate, PayrollUpdate,
		LeaveApprove, CommissionsApprove,
	)...),
	RoleHRSpecialist: perms(hrStaff...),
	RoleManager: perms(
		EmployeesView, EmployeesUpdate,
		TimeView, TimeCreate, TimeUpdate,
		LeaveView, LeaveCreate, LeaveApprove,
	),
	RoleEmployee: perms(
		EmployeesView,
		TimeView, TimeCreate, TimeUpdate,
		LeaveView, LeaveCreate,
		BenefitsView, CommissionsView,
	),
	RoleViewer: perms(EmployeesView),
}

// Can reports whether role grants p. super_admin is granted everything.
func Can(role string, p Permission) bool {
	if role == RoleSuperAdmin {
		return true
	}
	return rolePermissions[role][p]
}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
