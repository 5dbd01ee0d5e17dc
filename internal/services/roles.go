package services

import (
	"context"
	"fmt"

	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/store"
	"ndara/internal/validator"
)

// UpdateRolePermissions merges patch into a role's permission map
func (s *Service) UpdateRolePermissions(ctx context.Context, actor Actor, roleID string, patch validator.RolePermissionPatch) Result {
	const action = "role.permissions.update"

	if err := permissions.CheckRolePatch(actor.Principal, roleID, patch.Permissions); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(patch); err != nil {
		return fail(action, err)
	}

	role, doc, err := getAs[models.Role](ctx, s.store, models.RolePath(roleID), "rôle")
	if err != nil {
		return fail(action, err)
	}

	merged := make(map[models.Permission]bool, len(role.Permissions)+len(patch.Permissions))
	for k, v := range role.Permissions {
		merged[k] = v
	}
	for k, v := range patch.Permissions {
		merged[k] = v
	}

	plan := mutation.New().
		Update(models.RolePath(roleID), map[string]any{
			"permissions": merged,
			"updatedAt":   store.ServerTimestamp,
		}, store.IfVersion(doc.Version)).
		Audit(s.audit(actor, action, "role", roleID, fmt.Sprintf(
			"Permissions du rôle %q modifiées par %s : %s",
			roleID, actor.UserID, mutation.FormatChanges(patch.Permissions),
		)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.RolePermissionsUpdated, roleID)
	return ok(roleID)
}

// ListRoles returns every role for role administration screens
func (s *Service) ListRoles(ctx context.Context, actor Actor) ([]models.Role, error) {
	if err := permissions.Check(actor.Principal, models.PermManageRoles); err != nil {
		return nil, err
	}
	return listAs[models.Role](ctx, s.store, store.Query{Collection: models.CollRoles})
}
