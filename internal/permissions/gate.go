// Package permissions decides whether an acting principal may perform a
// mutation. Every check is pure; the Resolver is the only part that reads
// the store.
package permissions

import (
	"fmt"

	"ndara/internal/apperr"
	"ndara/internal/models"
)

// ManageRoles is the reserved key the admin role can never lose.
const ManageRoles = models.PermManageRoles

type Principal struct {
	UserID      string
	Role        string
	Permissions map[models.Permission]bool
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// Check grants admins every permission and everyone else only the keys
// their role sets to true.
func Check(p Principal, perm models.Permission) error {
	if p.UserID == "" {
		return apperr.Denied("utilisateur non authentifié")
	}
	if p.IsAdmin() || p.Permissions[perm] {
		return nil
	}
	return apperr.Denied(fmt.Sprintf("la permission %q est requise", perm))
}

// CheckRolePatch guards role permission updates. Stripping ManageRoles from
// the admin role is denied for every principal, whatever else the patch holds.
func CheckRolePatch(p Principal, roleID string, patch map[models.Permission]bool) error {
	if err := Check(p, ManageRoles); err != nil {
		return err
	}
	if roleID != models.RoleAdmin {
		return nil
	}
	if granted, ok := patch[ManageRoles]; ok && !granted {
		return apperr.Denied(fmt.Sprintf("le rôle %q doit conserver la permission %q", models.RoleAdmin, ManageRoles))
	}
	return nil
}

// CheckCourseOwner lets the course instructor through, or anyone allowed to
// manage every course.
func CheckCourseOwner(p Principal, course *models.Course) error {
	if p.UserID != "" && course != nil && course.InstructorID == p.UserID {
		return nil
	}
	if err := Check(p, models.PermManageCourses); err != nil {
		return apperr.Denied("seul le formateur du cours peut le modifier")
	}
	return nil
}

// CheckAuthor requires the authoring permission and ownership of the course.
func CheckAuthor(p Principal, course *models.Course) error {
	if p.IsAdmin() {
		return nil
	}
	if err := Check(p, models.PermAuthorContent); err != nil {
		return err
	}
	return CheckCourseOwner(p, course)
}
