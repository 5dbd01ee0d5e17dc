package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndara/internal/apperr"
	"ndara/internal/models"
	"ndara/internal/store/memstore"
)

func TestCheck(t *testing.T) {
	admin := Principal{UserID: "a1", Role: models.RoleAdmin}
	instructor := Principal{UserID: "i1", Role: models.RoleInstructor, Permissions: map[models.Permission]bool{
		models.PermAuthorContent: true,
		models.PermReadLogs:      false,
	}}

	tests := []struct {
		name    string
		p       Principal
		perm    models.Permission
		allowed bool
	}{
		{"admin has everything", admin, models.PermManageSettings, true},
		{"exact key granted", instructor, models.PermAuthorContent, true},
		{"key set false", instructor, models.PermReadLogs, false},
		{"key absent", instructor, models.PermManageRoles, false},
		{"anonymous", Principal{Role: models.RoleAdmin}, models.PermAdminAccess, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.p, tt.perm)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))
		})
	}
}

func TestCheckRolePatchLockout(t *testing.T) {
	admin := Principal{UserID: "a1", Role: models.RoleAdmin}

	patches := []map[models.Permission]bool{
		{ManageRoles: false},
		{ManageRoles: false, models.PermReadLogs: true},
		{models.PermManageUsers: true, ManageRoles: false, models.PermAdminAccess: false},
	}
	for _, patch := range patches {
		err := CheckRolePatch(admin, models.RoleAdmin, patch)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))
		assert.Contains(t, apperr.Render(err), "Action non autorisée")
	}

	assert.NoError(t, CheckRolePatch(admin, models.RoleAdmin, map[models.Permission]bool{ManageRoles: true, models.PermReadLogs: false}))
	assert.NoError(t, CheckRolePatch(admin, models.RoleInstructor, map[models.Permission]bool{ManageRoles: false}))

	manager := Principal{UserID: "m1", Role: "manager", Permissions: map[models.Permission]bool{ManageRoles: true}}
	assert.Error(t, CheckRolePatch(manager, models.RoleAdmin, map[models.Permission]bool{ManageRoles: false}))
	assert.NoError(t, CheckRolePatch(manager, models.RoleInstructor, map[models.Permission]bool{models.PermReadLogs: true}))

	student := Principal{UserID: "s1", Role: models.RoleStudent}
	assert.Error(t, CheckRolePatch(student, models.RoleInstructor, map[models.Permission]bool{models.PermReadLogs: true}))
}

func TestCheckAuthor(t *testing.T) {
	course := &models.Course{InstructorID: "i1"}
	author := map[models.Permission]bool{models.PermAuthorContent: true}

	assert.NoError(t, CheckAuthor(Principal{UserID: "i1", Role: models.RoleInstructor, Permissions: author}, course))
	assert.Error(t, CheckAuthor(Principal{UserID: "i2", Role: models.RoleInstructor, Permissions: author}, course))
	assert.Error(t, CheckAuthor(Principal{UserID: "i1", Role: models.RoleStudent}, course))
	assert.NoError(t, CheckAuthor(Principal{UserID: "a1", Role: models.RoleAdmin}, course))
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	client, _ := memstore.NewClient(500)
	require.NoError(t, models.SeedRoles(ctx, client))

	r := NewResolver(client)
	p, err := r.Resolve(ctx, "i1", models.RoleInstructor)
	require.NoError(t, err)
	assert.True(t, p.Permissions[models.PermAuthorContent])
	assert.False(t, p.Permissions[models.PermReadLogs])

	p, err = r.Resolve(ctx, "x1", "ghost")
	require.NoError(t, err)
	assert.Empty(t, p.Permissions)
}
