// Package store defines the document store every component mutates through.
//
// Documents live at slash-separated paths that alternate collection and
// document segments ("courses/c1/sections/s1"). A Batch groups writes that
// are applied all-or-nothing by the backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrAlreadyExists    = errors.New("document already exists")
	ErrConflict         = errors.New("document was modified concurrently")
	ErrPermissionDenied = errors.New("permission denied")
	ErrBatchTooLarge    = errors.New("batch exceeds the store operation limit")
	ErrInvalidPath      = errors.New("invalid document path")
)

// UnavailableError reports that the store cannot be reached at all,
// typically because configuration is missing.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "document store unavailable: " + e.Reason
}

type Document struct {
	Path       string
	ID         string
	Collection string
	Data       map[string]any
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DataTo decodes the document data into v through its JSON tags.
func (d *Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.Path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.Path, err)
	}
	return nil
}

type OpKind int

const (
	OpSet OpKind = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Op is one write inside a batch.
type Op struct {
	Kind  OpKind
	Path  string
	Data  map[string]any
	Merge bool
	// IfVersion, when non-zero, makes an update fail with ErrConflict
	// unless the stored document is still at this version.
	IfVersion int64
}

type SetOption func(*Op)

// Merge makes Set deep-merge into an existing document instead of replacing it.
func Merge() SetOption {
	return func(op *Op) { op.Merge = true }
}

// ReplaceIfVersion makes Set fail with ErrConflict unless the stored
// document is still at version v.
func ReplaceIfVersion(v int64) SetOption {
	return func(op *Op) { op.IfVersion = v }
}

type Precondition func(*Op)

func IfVersion(v int64) Precondition {
	return func(op *Op) { op.IfVersion = v }
}

type Filter struct {
	Field string
	Value any
}

type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
}

func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter{}, q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Backend is implemented by concrete stores. Apply must be atomic.
type Backend interface {
	Get(ctx context.Context, path string) (*Document, error)
	Query(ctx context.Context, q Query) ([]*Document, error)
	Apply(ctx context.Context, ops []Op) error
}

// DocumentStore is the client surface used by the rest of the application.
type DocumentStore interface {
	Get(ctx context.Context, path string) (*Document, error)
	Set(ctx context.Context, path string, data map[string]any, opts ...SetOption) error
	Update(ctx context.Context, path string, fields map[string]any, preconds ...Precondition) error
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, q Query) ([]*Document, error)
	Batch() *Batch
	BatchLimit() int
}
