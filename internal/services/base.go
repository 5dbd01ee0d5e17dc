package services

import (
	"context"
	"errors"
	"time"

	"ndara/internal/apperr"
	"ndara/internal/cascade"
	"ndara/internal/events"
	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/store"
	"ndara/internal/tasks"
	"ndara/internal/utils/logger"
	"ndara/internal/validator"
)

var log = logger.New("SERVICES")

// BlobStore deletes uploaded assets
type BlobStore interface {
	DeleteFile(ctx context.Context, key string) error
}

// TaskQueue receives work that cannot be made atomic with a store write
type TaskQueue interface {
	EnqueueBlobDelete(ctx context.Context, p tasks.BlobDeletePayload) error
	EnqueueEnrollmentEmail(ctx context.Context, p tasks.EnrollmentEmailPayload) error
}

// Deps are the collaborators shared by every action. Blobs and Queue are optional.
type Deps struct {
	Store     store.DocumentStore
	Validator *validator.Validator
	Bus       *events.EventBus
	Blobs     BlobStore
	Queue     TaskQueue
}

// Service exposes every mutation entry point of the application
type Service struct {
	store    store.DocumentStore
	validate *validator.Validator
	cascade  *cascade.Resolver
	bus      *events.EventBus
	blobs    BlobStore
	queue    TaskQueue
}

func New(d Deps) *Service {
	v := d.Validator
	if v == nil {
		v = validator.New()
	}
	return &Service{
		store:    d.Store,
		validate: v,
		cascade:  cascade.NewResolver(d.Store),
		bus:      d.Bus,
		blobs:    d.Blobs,
		queue:    d.Queue,
	}
}

// Actor is the verified principal performing an action
type Actor struct {
	permissions.Principal
	IPAddress string
}

// Result is the uniform shape returned to callers. Error is a displayable
// string, or a field-keyed map for validation failures.
type Result struct {
	Success bool        `json:"success"`
	Error   interface{} `json:"error,omitempty"`
	ID      string      `json:"id,omitempty"`
	// Deleted and Partial are only set by cascading deletes
	Deleted int         `json:"deleted,omitempty"`
	Partial bool        `json:"partial,omitempty"`
	Kind    apperr.Kind `json:"-"`
}

func ok(id string) Result {
	return Result{Success: true, ID: id}
}

func fail(action string, err error) Result {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}
	actionLog := log.With("action", action, "kind", ae.Kind)
	switch ae.Kind {
	case apperr.KindValidation:
		return Result{Error: ae.Fields, Kind: ae.Kind}
	case apperr.KindPermissionDenied, apperr.KindNotFound:
		actionLog.Warn("refused: %v", ae)
	default:
		_ = actionLog.Error("failed", ae)
	}
	return Result{Error: apperr.Render(ae), Kind: ae.Kind}
}

// getAs loads a document and decodes it into T
func getAs[T any](ctx context.Context, st store.DocumentStore, path, entity string) (*T, *store.Document, error) {
	doc, err := st.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		_, id := store.SplitDoc(path)
		return nil, nil, apperr.NotFound(entity, id)
	}
	if err != nil {
		return nil, nil, mutation.Classify(err)
	}
	var out T
	if err := doc.DataTo(&out); err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return &out, doc, nil
}

// listAs runs q and decodes every document into T
func listAs[T any](ctx context.Context, st store.DocumentStore, q store.Query) ([]T, error) {
	docs, err := st.Query(ctx, q)
	if err != nil {
		return nil, mutation.Classify(err)
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, v)
	}
	return out, nil
}

// encodeNew encodes v for a create, letting the store stamp both timestamps
func encodeNew(v any) (map[string]any, error) {
	data, err := store.Encode(v)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	data["createdAt"] = store.ServerTimestamp
	data["updatedAt"] = store.ServerTimestamp
	return data, nil
}

func (s *Service) audit(actor Actor, eventType, targetType, targetID, details string) mutation.Audit {
	return mutation.Audit{
		ActorID:    actor.UserID,
		EventType:  eventType,
		TargetID:   targetID,
		TargetType: targetType,
		Details:    details,
		IPAddress:  actor.IPAddress,
	}
}

// removeBlob deletes an asset after its document is gone. Failures are
// logged and handed to the retry queue; they never fail the action.
func (s *Service) removeBlob(ctx context.Context, key string) {
	if key == "" || s.blobs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err := s.blobs.DeleteFile(ctx, key)
	if err == nil {
		return
	}
	log.Warn("Could not delete asset %s: %v", key, err)
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueBlobDelete(ctx, tasks.BlobDeletePayload{Key: key}); err != nil {
		log.Warn("Could not queue deletion of %s: %v", key, err)
	}
}
