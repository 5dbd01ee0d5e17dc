package store

import (
	"fmt"
	"time"
)

// ApplyOp computes the document produced by op. existing is nil when no
// document is stored at op.Path. A nil result with a nil error means the
// document is removed.
func ApplyOp(existing *Document, op Op, now time.Time) (*Document, error) {
	now = now.UTC()
	switch op.Kind {
	case OpDelete:
		return nil, nil
	case OpCreate:
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, op.Path)
		}
	case OpUpdate:
		if existing == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, op.Path)
		}
	}
	if op.IfVersion != 0 && (existing == nil || existing.Version != op.IfVersion) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, op.Path)
	}

	data, err := Normalize(op.Data, now)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", op.Path, err)
	}

	collection, id := SplitDoc(op.Path)
	next := &Document{
		Path:       op.Path,
		ID:         id,
		Collection: collection,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
		Data:       data,
	}
	if existing != nil {
		next.Version = existing.Version + 1
		next.CreatedAt = existing.CreatedAt
		switch {
		case op.Kind == OpUpdate:
			next.Data = ApplyFields(existing.Data, data)
		case op.Merge:
			next.Data = DeepMerge(existing.Data, data)
		}
	}
	return next, nil
}
