package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/permissions"
	"ndara/internal/store"
	"ndara/internal/store/memstore"
	"ndara/internal/tasks"

	"github.com/stretchr/testify/require"
)

type fakeBlobs struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeBlobs) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeQueue struct {
	mu     sync.Mutex
	blobs  []tasks.BlobDeletePayload
	emails []tasks.EnrollmentEmailPayload
}

func (f *fakeQueue) EnqueueBlobDelete(_ context.Context, p tasks.BlobDeletePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs = append(f.blobs, p)
	return nil
}

func (f *fakeQueue) EnqueueEnrollmentEmail(_ context.Context, p tasks.EnrollmentEmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, p)
	return nil
}

type fixture struct {
	ctx   context.Context
	svc   *Service
	st    *store.Client
	mem   *memstore.Store
	bus   *events.EventBus
	blobs *fakeBlobs
	queue *fakeQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLimit(t, store.DefaultBatchLimit)
}

func newFixtureWithLimit(t *testing.T, limit int) *fixture {
	t.Helper()
	st, mem := memstore.NewClient(limit)
	f := &fixture{
		ctx:   context.Background(),
		st:    st,
		mem:   mem,
		bus:   events.NewEventBus(),
		blobs: &fakeBlobs{},
		queue: &fakeQueue{},
	}
	require.NoError(t, models.SeedRoles(f.ctx, st))
	f.svc = New(Deps{Store: st, Bus: f.bus, Blobs: f.blobs, Queue: f.queue})
	return f
}

func actorFor(userID, role string) Actor {
	return Actor{
		Principal: permissions.Principal{
			UserID:      userID,
			Role:        role,
			Permissions: models.DefaultRolePermissions(role),
		},
		IPAddress: "10.0.0.1",
	}
}

var (
	admin      = actorFor("admin1", models.RoleAdmin)
	instructor = actorFor("inst1", models.RoleInstructor)
	rival      = actorFor("inst2", models.RoleInstructor)
	student    = actorFor("u1", models.RoleStudent)
)

func (f *fixture) audits(t *testing.T) []models.AuditLogEntry {
	t.Helper()
	out, err := listAs[models.AuditLogEntry](f.ctx, f.st, store.Query{Collection: models.CollAuditLogs})
	require.NoError(t, err)
	return out
}

func (f *fixture) auditsOf(t *testing.T, eventType string) []models.AuditLogEntry {
	t.Helper()
	var out []models.AuditLogEntry
	for _, a := range f.audits(t) {
		if a.EventType == eventType {
			out = append(out, a)
		}
	}
	return out
}

func (f *fixture) put(t *testing.T, path string, data map[string]any) {
	t.Helper()
	require.NoError(t, f.st.Set(f.ctx, path, data))
}

func (f *fixture) order(t *testing.T, path string) int {
	t.Helper()
	doc, err := f.st.Get(f.ctx, path)
	require.NoError(t, err)
	v, ok := doc.Data["order"].(float64)
	require.True(t, ok, "order of %s", path)
	return int(v)
}

// course seeds a draft course owned by the instructor fixture actor.
func (f *fixture) course(t *testing.T, id string) {
	t.Helper()
	f.put(t, models.CoursePath(id), map[string]any{
		"id":           id,
		"title":        "Comptabilité pour PME",
		"description":  "Les bases de la comptabilité en zone OHADA",
		"category":     "finance",
		"price":        15000,
		"currency":     "XOF",
		"status":       string(models.CourseStatusDraft),
		"instructorId": instructor.UserID,
	})
}

func exists(t *testing.T, f *fixture, path string) bool {
	t.Helper()
	_, err := f.st.Get(f.ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func storeQuery(collection string) store.Query {
	return store.Query{Collection: collection}
}
