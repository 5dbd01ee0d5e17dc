package services

import (
	"context"
	"fmt"

	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/validator"
)

func (s *Service) CreateResource(ctx context.Context, actor Actor, courseID string, in validator.ResourceInput) Result {
	const action = "resource.create"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}

	resource := models.Resource{
		Base:     models.Base{ID: models.NewID()},
		Title:    in.Title,
		Type:     in.Type,
		URL:      in.URL,
		CourseID: courseID,
	}
	data, err := encodeNew(resource)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Create(models.ResourcePath(courseID, resource.ID), data).
		Audit(s.audit(actor, action, "resource", resource.ID,
			fmt.Sprintf("Ressource %s %q (%s) ajoutée au cours %s par %s", in.Type, in.Title, in.URL, courseID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(resource.ID)
}

func (s *Service) DeleteResource(ctx context.Context, actor Actor, courseID, resourceID string) Result {
	const action = "resource.delete"

	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	path := models.ResourcePath(courseID, resourceID)
	resource, _, err := getAs[models.Resource](ctx, s.store, path, "ressource")
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Delete(path).
		Audit(s.audit(actor, action, "resource", resourceID,
			fmt.Sprintf("Ressource %q (%s) du cours %s supprimée par %s", resource.Title, resourceID, courseID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(resourceID)
}
