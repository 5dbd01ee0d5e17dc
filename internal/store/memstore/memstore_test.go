package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndara/internal/store"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func TestBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	client, mem := NewClient(10, WithClock(fixedClock))

	require.NoError(t, client.Set(ctx, "courses/c1", map[string]any{"title": "Go"}))

	t.Run("injected failure", func(t *testing.T) {
		mem.FailNextCommit(errors.New("network down"))
		err := client.Batch().
			Update("courses/c1", map[string]any{"title": "Rust"}).
			Create("auditLogs/a1", map[string]any{"eventType": "course.update"}).
			Commit(ctx)
		require.EqualError(t, err, "network down")

		doc, err := client.Get(ctx, "courses/c1")
		require.NoError(t, err)
		assert.Equal(t, "Go", doc.Data["title"])
		_, err = client.Get(ctx, "auditLogs/a1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("failure halfway through", func(t *testing.T) {
		mem.FailAtOp(1, errors.New("quota"))
		err := client.Batch().
			Delete("courses/c1").
			Create("auditLogs/a2", map[string]any{"eventType": "course.delete"}).
			Commit(ctx)
		require.Error(t, err)

		_, err = client.Get(ctx, "courses/c1")
		assert.NoError(t, err)
		assert.Empty(t, mem.Paths("auditLogs"))
	})

	t.Run("store error mid batch", func(t *testing.T) {
		err := client.Batch().
			Set("courses/c2", map[string]any{"title": "new"}).
			Update("courses/missing", map[string]any{"title": "x"}).
			Commit(ctx)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = client.Get(ctx, "courses/c2")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWriteSemantics(t *testing.T) {
	ctx := context.Background()
	client, _ := NewClient(10, WithClock(fixedClock))

	require.NoError(t, client.Set(ctx, "roles/instructor", map[string]any{
		"name":        "instructor",
		"permissions": map[string]any{"instructor.content.author": true},
	}))

	require.NoError(t, client.Set(ctx, "roles/instructor", map[string]any{
		"permissions": map[string]any{"admin.logs.read": true},
	}, store.Merge()))

	doc, err := client.Get(ctx, "roles/instructor")
	require.NoError(t, err)
	assert.Equal(t, "instructor", doc.Data["name"])
	assert.Equal(t, map[string]any{
		"instructor.content.author": true,
		"admin.logs.read":           true,
	}, doc.Data["permissions"])
	assert.EqualValues(t, 2, doc.Version)

	err = client.Update(ctx, "roles/instructor", map[string]any{"name": "x"}, store.IfVersion(1))
	assert.ErrorIs(t, err, store.ErrConflict)
	require.NoError(t, client.Update(ctx, "roles/instructor", map[string]any{"name": "Formateur"}, store.IfVersion(2)))

	err = client.Batch().Create("roles/instructor", map[string]any{}).Commit(ctx)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, client.Set(ctx, "auditLogs/a1", map[string]any{"timestamp": store.ServerTimestamp}))
	audit, err := client.Get(ctx, "auditLogs/a1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T10:00:00Z", audit.Data["timestamp"])

	assert.NoError(t, client.Delete(ctx, "auditLogs/never-existed"))
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	client, _ := NewClient(10)

	b := client.Batch()
	for i, id := range []string{"s2", "s0", "s1"} {
		b.Set(store.Doc("courses", "c1", "sections", id), map[string]any{"order": 2 - i, "courseId": "c1"})
	}
	b.Set("courses/c2/sections/x", map[string]any{"order": 0, "courseId": "c2"})
	require.NoError(t, b.Commit(ctx))

	docs, err := client.Query(ctx, store.Query{Collection: "courses/c1/sections", OrderBy: "order"})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"s1", "s0", "s2"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})

	docs, err = client.Query(ctx, store.Query{Collection: "courses/c1/sections", OrderBy: "order", Desc: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "s2", docs[0].ID)

	docs, err = client.Query(ctx, store.Query{Collection: "courses/c1/sections"}.Where("order", 1))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "s0", docs[0].ID)
}

func TestBatchLimit(t *testing.T) {
	client, _ := NewClient(2)
	err := client.Batch().
		Delete("a/1").Delete("a/2").Delete("a/3").
		Commit(context.Background())
	assert.ErrorIs(t, err, store.ErrBatchTooLarge)

	err = client.Batch().Set("not-a-doc", nil).Commit(context.Background())
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}
