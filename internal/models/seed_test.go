package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndara/internal/store/memstore"
)

func TestSeedRoles(t *testing.T) {
	ctx := context.Background()
	client, mem := memstore.NewClient(500)

	require.NoError(t, SeedRoles(ctx, client))
	assert.Len(t, mem.Paths(CollRoles), 3)

	doc, err := client.Get(ctx, RolePath(RoleInstructor))
	require.NoError(t, err)
	var instructor Role
	require.NoError(t, doc.DataTo(&instructor))
	assert.True(t, instructor.Has(PermAuthorContent))
	assert.False(t, instructor.Has(PermReadLogs))

	// admin lost the reserved key out of band: seeding restores it
	require.NoError(t, client.Update(ctx, RolePath(RoleAdmin), map[string]any{
		"permissions": map[string]any{string(PermManageRoles): false},
	}))
	commits := mem.Commits()
	require.NoError(t, SeedRoles(ctx, client))
	assert.Equal(t, commits+1, mem.Commits())

	doc, err = client.Get(ctx, RolePath(RoleAdmin))
	require.NoError(t, err)
	var admin Role
	require.NoError(t, doc.DataTo(&admin))
	assert.True(t, admin.Has(PermManageRoles))

	// nothing left to do
	require.NoError(t, SeedRoles(ctx, client))
	assert.Equal(t, commits+1, mem.Commits())
}
