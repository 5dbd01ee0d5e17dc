package services

import (
	"context"
	"fmt"

	"ndara/internal/apperr"
	"ndara/internal/cascade"
	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/store"
	"ndara/internal/validator"
)

// requireAny passes when the actor holds at least one of perms
func requireAny(actor Actor, perms ...models.Permission) error {
	var err error
	for _, p := range perms {
		if err = permissions.Check(actor.Principal, p); err == nil {
			return nil
		}
	}
	return err
}

// authoredCourse loads a course the actor may edit
func (s *Service) authoredCourse(ctx context.Context, actor Actor, courseID string) (*models.Course, *store.Document, error) {
	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return nil, nil, err
	}
	course, doc, err := getAs[models.Course](ctx, s.store, models.CoursePath(courseID), "cours")
	if err != nil {
		return nil, nil, err
	}
	if err := permissions.CheckCourseOwner(actor.Principal, course); err != nil {
		return nil, nil, err
	}
	return course, doc, nil
}

func (s *Service) CreateCourse(ctx context.Context, actor Actor, in validator.CourseInput) Result {
	const action = "course.create"

	if err := permissions.Check(actor.Principal, models.PermAuthorContent); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}

	currency := in.Currency
	if currency == "" {
		currency = "XOF"
	}
	course := models.Course{
		Base:         models.Base{ID: models.NewID()},
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Price:        in.Price,
		Currency:     currency,
		ImageURL:     in.ImageURL,
		Status:       models.CourseStatusDraft,
		InstructorID: actor.UserID,
	}
	data, err := encodeNew(course)
	if err != nil {
		return fail(action, err)
	}

	plan := mutation.New().
		Create(models.CoursePath(course.ID), data).
		Audit(s.audit(actor, action, "course", course.ID,
			fmt.Sprintf("Cours %q (%s) créé par %s en brouillon", course.Title, course.ID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.CourseCreated, course)
	return ok(course.ID)
}

func (s *Service) UpdateCourse(ctx context.Context, actor Actor, courseID string, in validator.CourseInput) Result {
	const action = "course.update"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	course, doc, err := s.authoredCourse(ctx, actor, courseID)
	if err != nil {
		return fail(action, err)
	}

	fields := map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"price":       in.Price,
		"imageUrl":    in.ImageURL,
		"updatedAt":   store.ServerTimestamp,
	}
	if in.Currency != "" {
		fields["currency"] = in.Currency
	}

	plan := mutation.New().
		Update(models.CoursePath(courseID), fields, store.IfVersion(doc.Version)).
		Audit(s.audit(actor, action, "course", courseID, fmt.Sprintf(
			"Cours %s modifié par %s : titre %q -> %q, prix %.0f -> %.0f",
			courseID, actor.UserID, course.Title, in.Title, course.Price, in.Price,
		)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(courseID)
}

// SubmitCourseForReview moves a draft with at least one section to review
func (s *Service) SubmitCourseForReview(ctx context.Context, actor Actor, courseID string) Result {
	const action = "course.submit"

	course, doc, err := s.authoredCourse(ctx, actor, courseID)
	if err != nil {
		return fail(action, err)
	}
	if course.Status != models.CourseStatusDraft {
		return fail(action, apperr.Validation(map[string]string{
			"status": fmt.Sprintf("seul un brouillon peut être soumis (statut actuel : %s)", course.Status),
		}))
	}
	sections, err := s.store.Query(ctx, store.Query{Collection: models.SectionsOf(courseID), Limit: 1})
	if err != nil {
		return fail(action, mutation.Classify(err))
	}
	if len(sections) == 0 {
		return fail(action, apperr.Validation(map[string]string{"sections": "le cours doit contenir au moins une section"}))
	}

	plan := mutation.New().
		Update(models.CoursePath(courseID), map[string]any{
			"status":    models.CourseStatusPendingReview,
			"updatedAt": store.ServerTimestamp,
		}, store.IfVersion(doc.Version)).
		Audit(s.audit(actor, action, "course", courseID,
			fmt.Sprintf("Cours %q (%s) soumis pour révision par %s", course.Title, courseID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.CourseSubmitted, courseID)
	return ok(courseID)
}

// ModerateCourse publishes or sends back a course pending review
func (s *Service) ModerateCourse(ctx context.Context, actor Actor, courseID string, in validator.ModerationInput) Result {
	const action = "course.moderate"

	if err := permissions.Check(actor.Principal, models.PermModerateCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	course, doc, err := getAs[models.Course](ctx, s.store, models.CoursePath(courseID), "cours")
	if err != nil {
		return fail(action, err)
	}
	if course.Status != models.CourseStatusPendingReview {
		return fail(action, apperr.Validation(map[string]string{
			"status": fmt.Sprintf("le cours n'est pas en attente de révision (statut actuel : %s)", course.Status),
		}))
	}

	next, text := models.CourseStatusPublished, fmt.Sprintf("Votre cours « %s » est publié.", course.Title)
	if in.Decision == "reject" {
		next, text = models.CourseStatusDraft, fmt.Sprintf("Votre cours « %s » nécessite des modifications : %s", course.Title, in.Note)
	}

	plan := mutation.New().
		Update(models.CoursePath(courseID), map[string]any{
			"status":     next,
			"reviewNote": in.Note,
			"updatedAt":  store.ServerTimestamp,
		}, store.IfVersion(doc.Version)).
		Notify(models.Notification{
			UserID: course.InstructorID,
			Text:   text,
			Link:   "/instructor/courses/" + courseID,
		}).
		Audit(s.audit(actor, action, "course", courseID, fmt.Sprintf(
			"Cours %q (%s) : %s -> %s par %s (%s)",
			course.Title, courseID, course.Status, next, actor.UserID, in.Decision,
		)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.CourseModerated, courseID)
	return ok(courseID)
}

// DeleteCourse removes a course and everything beneath it
func (s *Service) DeleteCourse(ctx context.Context, actor Actor, courseID string) Result {
	const action = "course.delete"

	course, _, err := s.authoredCourse(ctx, actor, courseID)
	if err != nil {
		return fail(action, err)
	}

	plan := mutation.New().Audit(s.audit(actor, action, "course", courseID,
		fmt.Sprintf("Cours %q (%s) supprimé par %s avec tout son contenu", course.Title, courseID, actor.UserID)))
	report, err := s.cascade.Delete(ctx, models.CoursePath(courseID), cascade.CourseTree, plan)
	s.cleanupAssets(ctx, report.Removed)
	if err != nil {
		res := fail(action, err)
		res.Deleted, res.Partial = report.Deleted, report.Deleted > 0
		return res
	}

	s.bus.Emit(events.CourseDeleted, courseID)
	res := ok(courseID)
	res.Deleted, res.Partial = report.Deleted, !report.Atomic
	return res
}

// cleanupAssets removes the blobs of deleted lectures
func (s *Service) cleanupAssets(ctx context.Context, removed []*store.Document) {
	for _, doc := range removed {
		if key, ok := doc.Data["assetKey"].(string); ok && key != "" {
			s.removeBlob(ctx, key)
		}
	}
}

// ListCourses returns courses in a given status, newest first
func (s *Service) ListCourses(ctx context.Context, status models.CourseStatus) ([]models.Course, error) {
	q := store.Query{Collection: models.CollCourses, OrderBy: "createdAt", Desc: true}
	if status != "" {
		q = q.Where("status", string(status))
	}
	return listAs[models.Course](ctx, s.store, q)
}
