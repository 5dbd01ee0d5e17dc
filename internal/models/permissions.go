package models

// Permission is a dot-namespaced capability key stored in a role's permission map
type Permission string

const (
	PermAdminAccess      Permission = "admin.access"
	PermManageUsers      Permission = "admin.users.manage"
	PermManageRoles      Permission = "admin.roles.manage"
	PermModerateCourses  Permission = "admin.courses.moderate"
	PermManageCourses    Permission = "admin.courses.manage"
	PermReadPayments     Permission = "admin.payments.read"
	PermReadLogs         Permission = "admin.logs.read"
	PermManageSecurity   Permission = "admin.security.manage"
	PermManageSettings   Permission = "admin.settings.manage"
	PermManageSupport    Permission = "admin.support.manage"
	PermAuthorContent    Permission = "instructor.content.author"
	PermGradeAssignments Permission = "instructor.assignments.grade"
)

// AllPermissions lists every key a role may carry
var AllPermissions = []Permission{
	PermAdminAccess,
	PermManageUsers,
	PermManageRoles,
	PermModerateCourses,
	PermManageCourses,
	PermReadPayments,
	PermReadLogs,
	PermManageSecurity,
	PermManageSettings,
	PermManageSupport,
	PermAuthorContent,
	PermGradeAssignments,
}

func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Built-in role ids
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)
