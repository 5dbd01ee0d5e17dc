package models

import (
	"context"
	"errors"
	"fmt"

	"ndara/internal/store"
	console "ndara/internal/utils/logger"
)

var log = console.New("SEEDER")

// Role-based permission mappings
var rolePermissions = map[string][]Permission{
	// Admin is granted everything by the permission gate; the reserved key is
	// still stored so the role document reads correctly on its own.
	RoleAdmin: AllPermissions,
	RoleInstructor: {
		PermAuthorContent,
		PermGradeAssignments,
	},
	RoleStudent: {},
}

var roleNames = map[string]string{
	RoleAdmin:      "Administrateur",
	RoleInstructor: "Formateur",
	RoleStudent:    "Étudiant",
}

var defaultSettings = Settings{
	SiteName:           "Ndara Afrique",
	SupportEmail:       "support@ndara-afrique.com",
	PlatformCommission: 30,
	AllowRegistrations: true,
}

// DefaultRolePermissions returns the seeded permission map for a built-in role
func DefaultRolePermissions(roleID string) map[Permission]bool {
	out := map[Permission]bool{}
	for _, p := range AllPermissions {
		out[p] = false
	}
	for _, p := range rolePermissions[roleID] {
		out[p] = true
	}
	return out
}

// SeedRoles creates the built-in roles and global settings when they are missing.
// Existing documents are left alone, except that the admin role gets the
// reserved role-management key back if it was ever lost.
func SeedRoles(ctx context.Context, st store.DocumentStore) error {
	batch := st.Batch()
	for _, id := range []string{RoleAdmin, RoleInstructor, RoleStudent} {
		doc, err := st.Get(ctx, RolePath(id))
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Info("Creating role: %s", id)
			data, err := store.Encode(Role{ID: id, Name: roleNames[id], Permissions: DefaultRolePermissions(id)})
			if err != nil {
				return err
			}
			data["updatedAt"] = store.ServerTimestamp
			batch.Create(RolePath(id), data)
		case err != nil:
			return fmt.Errorf("failed to read role %s: %w", id, err)
		case id == RoleAdmin:
			var role Role
			if err := doc.DataTo(&role); err != nil {
				return err
			}
			if !role.Has(PermManageRoles) {
				log.Warn("Restoring %s on role %s", PermManageRoles, id)
				perms := role.Permissions
				if perms == nil {
					perms = map[Permission]bool{}
				}
				perms[PermManageRoles] = true
				batch.Update(RolePath(id), map[string]any{"permissions": perms})
			}
		}
	}

	if _, err := st.Get(ctx, SettingsPath()); errors.Is(err, store.ErrNotFound) {
		data, err := store.Encode(defaultSettings)
		if err != nil {
			return err
		}
		batch.Create(SettingsPath(), data)
	} else if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	if batch.Len() == 0 {
		return nil
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	log.Success("Seeded %d documents", batch.Len())
	return nil
}
