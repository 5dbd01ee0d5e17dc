package services

import (
	"context"
	"errors"
	"fmt"

	"ndara/internal/apperr"
	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/store"
	"ndara/internal/validator"
)

func (s *Service) CreateAssignment(ctx context.Context, actor Actor, courseID, sectionID string, in validator.AssignmentInput) Result {
	const action = "assignment.create"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	if _, _, err := getAs[models.Section](ctx, s.store, models.SectionPath(courseID, sectionID), "section"); err != nil {
		return fail(action, err)
	}

	assignment := models.Assignment{
		Base:        models.Base{ID: models.NewID()},
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		MaxScore:    in.MaxScore,
		SectionID:   sectionID,
		CourseID:    courseID,
	}
	data, err := encodeNew(assignment)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Create(models.AssignmentPath(courseID, sectionID, assignment.ID), data).
		Audit(s.audit(actor, action, "assignment", assignment.ID,
			fmt.Sprintf("Devoir %q (sur %d) ajouté à la section %s par %s", in.Title, in.MaxScore, sectionID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(assignment.ID)
}

// SubmitAssignment records an enrolled student's work. Resubmitting before
// grading replaces the previous submission.
func (s *Service) SubmitAssignment(ctx context.Context, actor Actor, courseID, sectionID, assignmentID string, in validator.SubmissionInput) Result {
	const action = "assignment.submit"

	if actor.UserID == "" {
		return fail(action, apperr.Denied("utilisateur non authentifié"))
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, err := s.store.Get(ctx, models.EnrollmentPath(actor.UserID, courseID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(action, apperr.Denied("vous n'êtes pas inscrit à ce cours"))
		}
		return fail(action, mutation.Classify(err))
	}
	assignment, _, err := getAs[models.Assignment](ctx, s.store, models.AssignmentPath(courseID, sectionID, assignmentID), "devoir")
	if err != nil {
		return fail(action, err)
	}

	path := models.SubmissionPath(courseID, sectionID, assignmentID, actor.UserID)
	existing, existingDoc, err := getAs[models.Submission](ctx, s.store, path, "soumission")
	switch {
	case err == nil && existing.Status == models.SubmissionStatusGraded:
		return fail(action, apperr.Validation(map[string]string{"content": "ce devoir a déjà été noté"}))
	case err != nil && !apperr.Is(err, apperr.KindNotFound):
		return fail(action, err)
	}

	data, err := encodeNew(models.Submission{
		Base:      models.Base{ID: actor.UserID},
		StudentID: actor.UserID,
		Content:   in.Content,
		Status:    models.SubmissionStatusSubmitted,
	})
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New()
	if existingDoc != nil {
		plan.Set(path, data, store.ReplaceIfVersion(existingDoc.Version))
	} else {
		plan.Create(path, data)
	}
	plan.
		Activity(models.Activity{
			UserID:   actor.UserID,
			Type:     "assignment_submitted",
			Title:    assignment.Title,
			CourseID: courseID,
		}).
		Audit(s.audit(actor, action, "assignment", assignmentID,
			fmt.Sprintf("Devoir %q rendu par %s (%d caractères)", assignment.Title, actor.UserID, len(in.Content))))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(actor.UserID)
}

// GradeSubmission grades a student's submission and notifies the student
// in the same batch.
func (s *Service) GradeSubmission(ctx context.Context, actor Actor, courseID, sectionID, assignmentID, studentID string, in validator.GradeInput) Result {
	const action = "assignment.grade"

	if err := permissions.Check(actor.Principal, models.PermGradeAssignments); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	course, _, err := getAs[models.Course](ctx, s.store, models.CoursePath(courseID), "cours")
	if err != nil {
		return fail(action, err)
	}
	if err := permissions.CheckCourseOwner(actor.Principal, course); err != nil {
		return fail(action, err)
	}
	assignment, _, err := getAs[models.Assignment](ctx, s.store, models.AssignmentPath(courseID, sectionID, assignmentID), "devoir")
	if err != nil {
		return fail(action, err)
	}
	if *in.Grade > float64(assignment.MaxScore) {
		return fail(action, apperr.Validation(map[string]string{
			"grade": fmt.Sprintf("la note ne peut pas dépasser %d", assignment.MaxScore),
		}))
	}
	path := models.SubmissionPath(courseID, sectionID, assignmentID, studentID)
	if _, _, err := getAs[models.Submission](ctx, s.store, path, "soumission"); err != nil {
		return fail(action, err)
	}

	plan := mutation.New().
		Update(path, map[string]any{
			"status":    models.SubmissionStatusGraded,
			"grade":     *in.Grade,
			"feedback":  in.Feedback,
			"gradedBy":  actor.UserID,
			"updatedAt": store.ServerTimestamp,
		}).
		Notify(models.Notification{
			UserID: studentID,
			Text:   fmt.Sprintf("Votre devoir « %s » a été noté : %g/%d", assignment.Title, *in.Grade, assignment.MaxScore),
			Link:   fmt.Sprintf("/courses/%s/assignments/%s", courseID, assignmentID),
		}).
		Audit(s.audit(actor, action, "submission", studentID, fmt.Sprintf(
			"Devoir %q de %s noté %g/%d par %s",
			assignment.Title, studentID, *in.Grade, assignment.MaxScore, actor.UserID,
		)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.SubmissionGraded, path)
	return ok(studentID)
}
