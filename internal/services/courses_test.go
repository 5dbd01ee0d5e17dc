package services

import (
	"testing"

	"ndara/internal/apperr"
	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validCourse = validator.CourseInput{
	Title:       "Comptabilité pour PME",
	Description: "Les bases de la comptabilité en zone OHADA",
	Category:    "finance",
	Price:       15000,
}

func loadCourse(t *testing.T, f *fixture, id string) *models.Course {
	t.Helper()
	course, _, err := getAs[models.Course](f.ctx, f.st, models.CoursePath(id), "cours")
	require.NoError(t, err)
	return course
}

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)
	created := make(chan any, 1)
	f.bus.On(events.CourseCreated, func(data any) { created <- data })

	res := f.svc.CreateCourse(f.ctx, instructor, validCourse)
	require.True(t, res.Success, "%v", res.Error)
	f.bus.Wait()

	course := loadCourse(t, f, res.ID)
	assert.Equal(t, models.CourseStatusDraft, course.Status)
	assert.Equal(t, "XOF", course.Currency)
	assert.Equal(t, instructor.UserID, course.InstructorID)
	assert.False(t, course.CreatedAt.IsZero())
	require.Len(t, f.auditsOf(t, "course.create"), 1)
	assert.Len(t, created, 1)
}

func TestCreateCourseRejected(t *testing.T) {
	f := newFixture(t)
	before := f.mem.Len()

	res := f.svc.CreateCourse(f.ctx, student, validCourse)
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind)

	bad := validCourse
	bad.Title = "Go"
	bad.Currency = "xof"
	res = f.svc.CreateCourse(f.ctx, instructor, bad)
	assert.Equal(t, apperr.KindValidation, res.Kind)
	fields, ok := res.Error.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "currency")

	assert.Equal(t, before, f.mem.Len(), "no document written")
}

func TestUpdateCourseOwnership(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")

	in := validCourse
	in.Title = "Comptabilité avancée"
	res := f.svc.UpdateCourse(f.ctx, rival, "c1", in)
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind)

	res = f.svc.UpdateCourse(f.ctx, instructor, "c1", in)
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, "Comptabilité avancée", loadCourse(t, f, "c1").Title)

	// admins manage every course
	in.Title = "Comptabilité générale"
	res = f.svc.UpdateCourse(f.ctx, admin, "c1", in)
	require.True(t, res.Success, "%v", res.Error)
	assert.Len(t, f.auditsOf(t, "course.update"), 2)
}

func TestCourseReviewFlow(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")

	res := f.svc.SubmitCourseForReview(f.ctx, instructor, "c1")
	assert.Equal(t, apperr.KindValidation, res.Kind)
	assert.Contains(t, res.Error, "sections")

	require.True(t, f.svc.CreateSection(f.ctx, instructor, "c1", validator.SectionInput{Title: "Introduction"}).Success)
	res = f.svc.SubmitCourseForReview(f.ctx, instructor, "c1")
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, models.CourseStatusPendingReview, loadCourse(t, f, "c1").Status)

	res = f.svc.ModerateCourse(f.ctx, instructor, "c1", validator.ModerationInput{Decision: "approve"})
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind)

	res = f.svc.ModerateCourse(f.ctx, admin, "c1", validator.ModerationInput{Decision: "reject"})
	assert.Equal(t, apperr.KindValidation, res.Kind)
	assert.Contains(t, res.Error, "note")

	res = f.svc.ModerateCourse(f.ctx, admin, "c1", validator.ModerationInput{Decision: "approve"})
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, models.CourseStatusPublished, loadCourse(t, f, "c1").Status)

	notes, err := listAs[models.Notification](f.ctx, f.st, storeQuery(models.CollNotifications))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, instructor.UserID, notes[0].UserID)
	assert.Contains(t, notes[0].Text, "publié")

	// a published course cannot be moderated again
	res = f.svc.ModerateCourse(f.ctx, admin, "c1", validator.ModerationInput{Decision: "approve"})
	assert.Equal(t, apperr.KindValidation, res.Kind)

	published, err := f.svc.ListCourses(f.ctx, models.CourseStatusPublished)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "c1", published[0].ID)
}

func TestDeleteCourseCascades(t *testing.T) {
	f := newFixture(t)
	f.course(t, "c1")
	f.course(t, "c2")
	f.put(t, models.SectionPath("c1", "s1"), map[string]any{"order": 0})
	f.put(t, models.LecturePath("c1", "s1", "l1"), map[string]any{"order": 0, "assetKey": "courses/c1/l1/intro.mp4"})
	f.put(t, models.LecturePath("c1", "s1", "l2"), map[string]any{"order": 1})
	f.put(t, models.QuizPath("c1", "s1", "q1"), map[string]any{"title": "Quiz"})
	f.put(t, models.QuestionPath("c1", "s1", "q1", "qa"), map[string]any{"order": 0})
	f.put(t, models.AssignmentPath("c1", "s1", "a1"), map[string]any{"title": "Bilan"})
	f.put(t, models.SubmissionPath("c1", "s1", "a1", "u1"), map[string]any{"content": "..."})
	f.put(t, models.ResourcePath("c1", "r1"), map[string]any{"title": "Plan comptable"})
	f.put(t, models.SectionPath("c2", "s1"), map[string]any{"order": 0})

	res := f.svc.DeleteCourse(f.ctx, instructor, "c1")
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 9, res.Deleted)
	assert.False(t, res.Partial)

	for _, p := range []string{
		models.CoursePath("c1"),
		models.LecturePath("c1", "s1", "l1"),
		models.QuestionPath("c1", "s1", "q1", "qa"),
		models.SubmissionPath("c1", "s1", "a1", "u1"),
		models.ResourcePath("c1", "r1"),
	} {
		assert.False(t, exists(t, f, p), p)
	}
	assert.True(t, exists(t, f, models.SectionPath("c2", "s1")))
	assert.Equal(t, []string{"courses/c1/l1/intro.mp4"}, f.blobs.deleted)
	assert.Len(t, f.auditsOf(t, "course.delete"), 1)
}

func TestDeleteCourseInChunks(t *testing.T) {
	f := newFixtureWithLimit(t, 4)
	f.course(t, "c1")
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		f.put(t, models.SectionPath("c1", id), map[string]any{"order": 0})
	}

	res := f.svc.DeleteCourse(f.ctx, admin, "c1")
	require.True(t, res.Success, "%v", res.Error)
	assert.Equal(t, 7, res.Deleted)
	assert.True(t, res.Partial, "spread over several batches")
	assert.Empty(t, f.mem.Paths(models.SectionsOf("c1")))
	assert.Len(t, f.auditsOf(t, "course.delete"), 1)
}
