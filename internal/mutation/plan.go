// Package mutation assembles privileged writes into one atomic batch that
// always carries exactly one audit log entry, plus any notification or
// activity entries the change produces for users.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ndara/internal/apperr"
	"ndara/internal/models"
	"ndara/internal/store"
)

// Audit describes the audit log entry appended with a plan.
type Audit struct {
	// ID is optional; replays that must not duplicate the entry pass a
	// deterministic one.
	ID         string
	ActorID    string
	EventType  string
	TargetID   string
	TargetType string
	Details    string
	IPAddress  string
}

type Plan struct {
	ops           []store.Op
	audit         *Audit
	notifications []models.Notification
	activities    []models.Activity
	err           error
}

func New() *Plan {
	return &Plan{}
}

func (p *Plan) Create(path string, data map[string]any) *Plan {
	p.ops = append(p.ops, store.Op{Kind: store.OpCreate, Path: path, Data: data})
	return p
}

func (p *Plan) Set(path string, data map[string]any, opts ...store.SetOption) *Plan {
	op := store.Op{Kind: store.OpSet, Path: path, Data: data}
	for _, opt := range opts {
		opt(&op)
	}
	p.ops = append(p.ops, op)
	return p
}

func (p *Plan) Update(path string, fields map[string]any, preconds ...store.Precondition) *Plan {
	op := store.Op{Kind: store.OpUpdate, Path: path, Data: fields}
	for _, pc := range preconds {
		pc(&op)
	}
	p.ops = append(p.ops, op)
	return p
}

func (p *Plan) Delete(path string) *Plan {
	p.ops = append(p.ops, store.Op{Kind: store.OpDelete, Path: path})
	return p
}

// Audit sets the plan's audit entry. A plan accepts exactly one.
func (p *Plan) Audit(a Audit) *Plan {
	if p.audit != nil {
		p.err = fmt.Errorf("audit entry already set for %s", p.audit.EventType)
		return p
	}
	if a.ID == "" {
		a.ID = models.NewID()
	}
	p.audit = &a
	return p
}

// Notify appends a user notification written in the same batch.
func (p *Plan) Notify(n models.Notification) *Plan {
	if n.ID == "" {
		n.ID = models.NewID()
	}
	p.notifications = append(p.notifications, n)
	return p
}

// Activity appends a user activity entry written in the same batch.
func (p *Plan) Activity(a models.Activity) *Plan {
	if a.ID == "" {
		a.ID = models.NewID()
	}
	p.activities = append(p.activities, a)
	return p
}

// Len is the number of store operations Commit will submit.
func (p *Plan) Len() int {
	n := len(p.ops) + len(p.notifications) + len(p.activities)
	if p.audit != nil {
		n++
	}
	return n
}

func (p *Plan) AuditID() string {
	if p.audit == nil {
		return ""
	}
	return p.audit.ID
}

func (p *Plan) validate() error {
	if p.err != nil {
		return p.err
	}
	if p.audit == nil {
		return errors.New("mutation has no audit entry")
	}
	a := p.audit
	if a.EventType == "" || a.TargetID == "" || a.Details == "" {
		return fmt.Errorf("audit entry %s is incomplete", a.ID)
	}
	if len(p.ops) == 0 {
		return fmt.Errorf("mutation %s has no operations", a.EventType)
	}
	return nil
}

// Fill queues every operation of the plan on batch, entity mutations first.
func (p *Plan) Fill(batch *store.Batch) error {
	if err := p.validate(); err != nil {
		return apperr.Internal(err)
	}
	for _, op := range p.ops {
		switch op.Kind {
		case store.OpCreate:
			batch.Create(op.Path, op.Data)
		case store.OpSet:
			var opts []store.SetOption
			if op.Merge {
				opts = append(opts, store.Merge())
			}
			batch.Set(op.Path, op.Data, opts...)
		case store.OpUpdate:
			var preconds []store.Precondition
			if op.IfVersion != 0 {
				preconds = append(preconds, store.IfVersion(op.IfVersion))
			}
			batch.Update(op.Path, op.Data, preconds...)
		case store.OpDelete:
			batch.Delete(op.Path)
		}
	}
	for _, n := range p.notifications {
		data, err := store.Encode(n)
		if err != nil {
			return apperr.Internal(err)
		}
		data["createdAt"] = store.ServerTimestamp
		batch.Set(models.NotificationPath(n.ID), data)
	}
	for _, a := range p.activities {
		data, err := store.Encode(a)
		if err != nil {
			return apperr.Internal(err)
		}
		data["createdAt"] = store.ServerTimestamp
		batch.Set(models.ActivityPath(a.ID), data)
	}
	data, err := store.Encode(models.AuditLogEntry{
		ID:        p.audit.ID,
		AdminID:   p.audit.ActorID,
		EventType: p.audit.EventType,
		Target:    models.AuditTarget{ID: p.audit.TargetID, Type: p.audit.TargetType},
		Details:   p.audit.Details,
		IPAddress: p.audit.IPAddress,
	})
	if err != nil {
		return apperr.Internal(err)
	}
	data["timestamp"] = store.ServerTimestamp
	batch.Create(models.AuditLogPath(p.audit.ID), data)
	return nil
}

// Commit submits the plan as one batch. Either every operation, the audit
// entry included, is applied or none is.
func (p *Plan) Commit(ctx context.Context, st store.DocumentStore) error {
	batch := st.Batch()
	if err := p.Fill(batch); err != nil {
		return err
	}
	return Classify(batch.Commit(ctx))
}

// Classify maps store failures onto error kinds callers can display.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	var unavailable *store.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return apperr.Unavailable(unavailable.Reason, err)
	case errors.Is(err, store.ErrPermissionDenied):
		return &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "accès refusé par la base de données", Err: err}
	case errors.Is(err, store.ErrNotFound):
		return &apperr.Error{Kind: apperr.KindNotFound, Message: "le document a été supprimé entre-temps", Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Unavailable("délai d'attente dépassé", err)
	default:
		return apperr.WriteFailed(err)
	}
}

// FormatChanges renders a field patch as "key=value" pairs in key order.
func FormatChanges[K ~string, V any](changes map[K]V) string {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, changes[K(k)]))
	}
	return strings.Join(parts, ", ")
}
