package services

import (
	"context"
	"fmt"

	"ndara/internal/cascade"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/validator"
)

func (s *Service) CreateSection(ctx context.Context, actor Actor, courseID string, in validator.SectionInput) Result {
	const action = "section.create"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	order, err := nextOrder(ctx, s.store, models.SectionsOf(courseID))
	if err != nil {
		return fail(action, err)
	}

	section := models.Section{Base: models.Base{ID: models.NewID()}, Title: in.Title, Order: order, CourseID: courseID}
	data, err := encodeNew(section)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Create(models.SectionPath(courseID, section.ID), data).
		Audit(s.audit(actor, action, "section", section.ID,
			fmt.Sprintf("Section %q ajoutée au cours %s en position %d par %s", in.Title, courseID, order, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(section.ID)
}

// DeleteSection removes a section with its lectures, quizzes and
// assignments, and closes the gap in the remaining sections' order.
func (s *Service) DeleteSection(ctx context.Context, actor Actor, courseID, sectionID string) Result {
	const action = "section.delete"

	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	section, _, err := getAs[models.Section](ctx, s.store, models.SectionPath(courseID, sectionID), "section")
	if err != nil {
		return fail(action, err)
	}
	siblings, err := loadSiblings(ctx, s.store, models.SectionsOf(courseID))
	if err != nil {
		return fail(action, err)
	}

	plan := mutation.New()
	planCompaction(plan, siblings, models.SectionPath(courseID, sectionID), section.Order)
	plan.Audit(s.audit(actor, action, "section", sectionID,
		fmt.Sprintf("Section %q (%s) du cours %s supprimée par %s avec son contenu", section.Title, sectionID, courseID, actor.UserID)))

	report, err := s.cascade.Delete(ctx, models.SectionPath(courseID, sectionID), cascade.SectionTree, plan)
	s.cleanupAssets(ctx, report.Removed)
	if err != nil {
		res := fail(action, err)
		res.Deleted, res.Partial = report.Deleted, report.Deleted > 0
		return res
	}
	res := ok(sectionID)
	res.Deleted, res.Partial = report.Deleted, !report.Atomic
	return res
}

func (s *Service) ReorderSections(ctx context.Context, actor Actor, courseID string, in validator.ReorderInput) Result {
	const action = "section.reorder"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	return s.reorder(ctx, actor, action, "course", courseID, models.SectionsOf(courseID), in)
}

// reorder applies a validated reorder request to the siblings of collection
func (s *Service) reorder(ctx context.Context, actor Actor, action, parentType, parentID, collection string, in validator.ReorderInput) Result {
	siblings, err := loadSiblings(ctx, s.store, collection)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New()
	changes, err := planReorder(plan, siblings, in.Items)
	if err != nil {
		return fail(action, err)
	}
	plan.Audit(s.audit(actor, action, parentType, parentID,
		fmt.Sprintf("Nouvel ordre sous %s %s par %s : %s", parentType, parentID, actor.UserID, changes)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(parentID)
}
