package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ndara/internal/apperr"
	"ndara/internal/mutation"
	"ndara/internal/store"
	"ndara/internal/validator"
)

type sibling struct {
	path    string
	id      string
	order   int
	version int64
}

func loadSiblings(ctx context.Context, st store.DocumentStore, collection string) ([]sibling, error) {
	docs, err := st.Query(ctx, store.Query{Collection: collection, OrderBy: "order"})
	if err != nil {
		return nil, mutation.Classify(err)
	}
	out := make([]sibling, 0, len(docs))
	for _, doc := range docs {
		var v struct {
			Order int `json:"order"`
		}
		if err := doc.DataTo(&v); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, sibling{path: doc.Path, id: doc.ID, order: v.Order, version: doc.Version})
	}
	return out, nil
}

// nextOrder is the order of a sibling appended to collection
func nextOrder(ctx context.Context, st store.DocumentStore, collection string) (int, error) {
	siblings, err := loadSiblings(ctx, st, collection)
	if err != nil {
		return 0, err
	}
	next := 0
	for _, s := range siblings {
		if s.order >= next {
			next = s.order + 1
		}
	}
	return next, nil
}

// planReorder rewrites the requested siblings' order fields. The resulting
// orders of the whole collection must be exactly 0..N-1.
func planReorder(plan *mutation.Plan, siblings []sibling, items []validator.OrderItem) (string, error) {
	byID := make(map[string]*sibling, len(siblings))
	result := make(map[string]int, len(siblings))
	for i := range siblings {
		byID[siblings[i].id] = &siblings[i]
		result[siblings[i].id] = siblings[i].order
	}

	seen := map[string]bool{}
	for _, item := range items {
		if _, ok := byID[item.ID]; !ok {
			return "", apperr.Validation(map[string]string{"items": fmt.Sprintf("élément inconnu : %s", item.ID)})
		}
		if seen[item.ID] {
			return "", apperr.Validation(map[string]string{"items": fmt.Sprintf("élément en double : %s", item.ID)})
		}
		seen[item.ID] = true
		result[item.ID] = item.Order
	}

	used := make([]bool, len(siblings))
	for _, order := range result {
		if order < 0 || order >= len(siblings) || used[order] {
			return "", apperr.Validation(map[string]string{
				"items": fmt.Sprintf("l'ordre doit couvrir exactement 0 à %d sans doublon", len(siblings)-1),
			})
		}
		used[order] = true
	}

	changes := make([]string, 0, len(items))
	for _, item := range items {
		target := byID[item.ID]
		plan.Update(target.path, map[string]any{"order": item.Order, "updatedAt": store.ServerTimestamp}, store.IfVersion(target.version))
		changes = append(changes, fmt.Sprintf("%s:%d", item.ID, item.Order))
	}
	sort.Strings(changes)
	return strings.Join(changes, ", "), nil
}

// planCompaction closes the gap left by removing the sibling at removed.
// Each shift only applies to the version it was computed from.
func planCompaction(plan *mutation.Plan, siblings []sibling, removedPath string, removed int) {
	for _, s := range siblings {
		if s.path != removedPath && s.order > removed {
			plan.Update(s.path, map[string]any{"order": s.order - 1}, store.IfVersion(s.version))
		}
	}
}
