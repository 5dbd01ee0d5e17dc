package services

import (
	"errors"
	"sync/atomic"
	"testing"

	"ndara/internal/apperr"
	"ndara/internal/events"
	"ndara/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paid(tx string) PaymentEvent {
	return PaymentEvent{
		TransactionID: tx,
		Status:        "success",
		UserID:        "u1",
		CourseID:      "c1",
		Amount:        15000,
		Currency:      "XOF",
	}
}

func newActivator(f *fixture) *EnrollmentActivator {
	return NewEnrollmentActivator(f.svc, []string{"success", "successful"})
}

func TestActivateEnrollmentReplay(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")
	f.put(t, models.UserPath("u1"), map[string]any{"id": "u1", "email": "awa@ndara.test", "displayName": "Awa"})
	var activated atomic.Int32
	f.bus.On(events.EnrollmentActivated, func(any) { activated.Add(1) })
	a := newActivator(f)

	first, err := a.Activate(f.ctx, paid("tx1"))
	require.NoError(t, err)
	assert.True(t, first.Activated)
	assert.False(t, first.Replayed)
	assert.Equal(t, "u1_c1", first.EnrollmentID)

	second, err := a.Activate(f.ctx, paid("tx1"))
	require.NoError(t, err)
	assert.True(t, second.Activated)
	assert.True(t, second.Replayed)
	f.bus.Wait()

	assert.Equal(t, []string{models.EnrollmentPath("u1", "c1")}, f.mem.Paths(models.CollEnrollments))
	assert.Len(t, f.mem.Paths(models.CollNotifications), 1)
	assert.Len(t, f.mem.Paths(models.CollActivities), 1)
	assert.Len(t, f.auditsOf(t, "enrollment.activate"), 1)
	assert.Equal(t, int32(1), activated.Load())

	enrollment, _, err := getAs[models.Enrollment](f.ctx, f.st, models.EnrollmentPath("u1", "c1"), "inscription")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, instructor.UserID, enrollment.InstructorID)
	assert.Equal(t, "tx1", enrollment.TransactionID)
	assert.Equal(t, 15000.0, enrollment.PriceAtEnrollment)
	assert.False(t, enrollment.EnrolledAt.IsZero())

	require.Len(t, f.queue.emails, 2, "replays re-enqueue; the queue drops the duplicate by task id")
	for _, e := range f.queue.emails {
		assert.Equal(t, "tx1", e.TransactionID)
		assert.Equal(t, "awa@ndara.test", e.Email)
		assert.Equal(t, "Comptabilité pour PME", e.CourseTitle)
	}
}

func TestActivateEnrollmentRepurchaseKeepsProgress(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")
	a := newActivator(f)

	_, err := a.Activate(f.ctx, paid("tx1"))
	require.NoError(t, err)
	require.NoError(t, f.st.Update(f.ctx, models.EnrollmentPath("u1", "c1"), map[string]any{"progress": 40}))
	before, _, err := getAs[models.Enrollment](f.ctx, f.st, models.EnrollmentPath("u1", "c1"), "inscription")
	require.NoError(t, err)

	res, err := a.Activate(f.ctx, paid("tx2"))
	require.NoError(t, err)
	assert.True(t, res.Activated)
	assert.False(t, res.Replayed)

	after, _, err := getAs[models.Enrollment](f.ctx, f.st, models.EnrollmentPath("u1", "c1"), "inscription")
	require.NoError(t, err)
	assert.Equal(t, 40, after.Progress)
	assert.Equal(t, "tx2", after.TransactionID)
	assert.Equal(t, before.EnrolledAt, after.EnrolledAt)
	assert.Len(t, f.auditsOf(t, "enrollment.activate"), 2)
}

func TestActivateEnrollmentIgnoredStatus(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")
	before := f.mem.Len()

	ev := paid("tx1")
	ev.Status = "failed"
	res, err := newActivator(f).Activate(f.ctx, ev)
	require.NoError(t, err)
	assert.False(t, res.Activated)
	assert.Equal(t, before, f.mem.Len())
	assert.Empty(t, f.queue.emails)
}

func TestActivateEnrollmentRejected(t *testing.T) {
	tests := []struct {
		name  string
		event func(PaymentEvent) PaymentEvent
		field string
	}{
		{"missing user", func(e PaymentEvent) PaymentEvent { e.UserID = ""; return e }, "metadata.userId"},
		{"missing course", func(e PaymentEvent) PaymentEvent { e.CourseID = ""; return e }, "metadata.courseId"},
		{"unknown course", func(e PaymentEvent) PaymentEvent { e.CourseID = "ghost"; return e }, "metadata.courseId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.course(t, "c1")
			before := f.mem.Len()

			_, err := newActivator(f).Activate(f.ctx, tt.event(paid("tx1")))
			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Contains(t, ae.Fields, tt.field)
			assert.Equal(t, before, f.mem.Len())
		})
	}
}

func TestActivateEnrollmentCommitFailure(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")
	f.mem.FailNextCommit(errors.New("connection reset"))

	_, err := newActivator(f).Activate(f.ctx, paid("tx1"))
	assert.True(t, apperr.Is(err, apperr.KindStoreWriteFailed))
	assert.Empty(t, f.mem.Paths(models.CollEnrollments))
	assert.Empty(t, f.mem.Paths(models.CollNotifications))
	assert.Empty(t, f.queue.emails)
}
