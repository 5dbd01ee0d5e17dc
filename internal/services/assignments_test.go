package services

import (
	"testing"

	"ndara/internal/apperr"
	"ndara/internal/models"
	"ndara/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grade(v float64) *float64 { return &v }

func TestAssignmentSubmissionAndGrading(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")

	created := f.svc.CreateAssignment(f.ctx, instructor, "c1", "s1", validator.AssignmentInput{
		Title:       "Bilan d'ouverture",
		Description: "Établir le bilan d'ouverture d'une PME fictive.",
		MaxScore:    20,
	})
	require.True(t, created.Success, "%v", created.Error)
	assignmentID := created.ID

	work := validator.SubmissionInput{Content: "Actif : 1 200 000 XOF, passif : 1 200 000 XOF"}
	res := f.svc.SubmitAssignment(f.ctx, student, "c1", "s1", assignmentID, work)
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind, "students must be enrolled")

	f.put(t, models.EnrollmentPath(student.UserID, "c1"), map[string]any{"studentId": student.UserID, "courseId": "c1"})
	res = f.svc.SubmitAssignment(f.ctx, student, "c1", "s1", assignmentID, work)
	require.True(t, res.Success, "%v", res.Error)
	submission := models.SubmissionPath("c1", "s1", assignmentID, student.UserID)
	assert.True(t, exists(t, f, submission))

	res = f.svc.GradeSubmission(f.ctx, student, "c1", "s1", assignmentID, student.UserID, validator.GradeInput{Grade: grade(20)})
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind)

	res = f.svc.GradeSubmission(f.ctx, rival, "c1", "s1", assignmentID, student.UserID, validator.GradeInput{Grade: grade(15)})
	assert.Equal(t, apperr.KindPermissionDenied, res.Kind, "only the course instructor grades")

	res = f.svc.GradeSubmission(f.ctx, instructor, "c1", "s1", assignmentID, student.UserID, validator.GradeInput{Grade: grade(25)})
	assert.Equal(t, apperr.KindValidation, res.Kind)
	assert.Contains(t, res.Error, "grade")

	res = f.svc.GradeSubmission(f.ctx, instructor, "c1", "s1", assignmentID, student.UserID, validator.GradeInput{
		Grade:    grade(16.5),
		Feedback: "Bon travail, attention aux amortissements.",
	})
	require.True(t, res.Success, "%v", res.Error)

	graded, _, err := getAs[models.Submission](f.ctx, f.st, submission, "soumission")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 16.5, *graded.Grade)
	assert.Equal(t, instructor.UserID, graded.GradedBy)

	notes, err := listAs[models.Notification](f.ctx, f.st, storeQuery(models.CollNotifications))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, student.UserID, notes[0].UserID)
	assert.Contains(t, notes[0].Text, "16.5/20")

	res = f.svc.SubmitAssignment(f.ctx, student, "c1", "s1", assignmentID, work)
	assert.Equal(t, apperr.KindValidation, res.Kind, "graded work is final")

	assert.Len(t, f.auditsOf(t, "assignment.submit"), 1)
	assert.Len(t, f.auditsOf(t, "assignment.grade"), 1)
}

func TestGradeMissingSubmission(t *testing.T) {
	f := newFixture(t)
	seedSections(t, f, "s1")
	f.put(t, models.AssignmentPath("c1", "s1", "a1"), map[string]any{"title": "Bilan", "maxScore": 20})

	res := f.svc.GradeSubmission(f.ctx, instructor, "c1", "s1", "a1", "nobody", validator.GradeInput{Grade: grade(10)})
	assert.Equal(t, apperr.KindNotFound, res.Kind)
	assert.Empty(t, f.mem.Paths(models.CollNotifications))
}
