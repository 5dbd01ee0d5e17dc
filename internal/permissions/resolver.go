package permissions

import (
	"context"
	"errors"

	"ndara/internal/models"
	"ndara/internal/store"
	console "ndara/internal/utils/logger"
)

var log = console.New("PERMISSIONS")

// Resolver builds principals from already verified identity claims.
type Resolver struct {
	store store.DocumentStore
}

func NewResolver(st store.DocumentStore) *Resolver {
	return &Resolver{store: st}
}

// Resolve loads the permission map of roleID. An unknown role resolves to a
// principal with no permissions rather than an error.
func (r *Resolver) Resolve(ctx context.Context, userID, roleID string) (Principal, error) {
	p := Principal{UserID: userID, Role: roleID, Permissions: map[models.Permission]bool{}}
	if roleID == "" {
		return p, nil
	}
	doc, err := r.store.Get(ctx, models.RolePath(roleID))
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("Unknown role %q for user %s", roleID, userID)
		return p, nil
	}
	if err != nil {
		return p, err
	}
	var role models.Role
	if err := doc.DataTo(&role); err != nil {
		return p, err
	}
	for k, v := range role.Permissions {
		if v {
			p.Permissions[k] = true
		}
	}
	return p, nil
}
