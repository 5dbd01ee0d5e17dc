package services

import (
	"context"
	"fmt"
	"strings"

	"ndara/internal/apperr"
	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/store"
	"ndara/internal/validator"
)

func (s *Service) CreateLecture(ctx context.Context, actor Actor, courseID, sectionID string, in validator.LectureInput) Result {
	const action = "lecture.create"

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
	order, err := nextOrder(ctx, s.store, models.LecturesOf(courseID, sectionID))
	if err != nil {
		return fail(action, err)
	}

	lecture := models.Lecture{
		Base:        models.Base{ID: models.NewID()},
		Title:       in.Title,
		Type:        in.Type,
		Order:       order,
		SectionID:   sectionID,
		CourseID:    courseID,
		Duration:    in.Duration,
		VideoURL:    in.VideoURL,
		TextContent: in.TextContent,
		PDFURL:      in.PDFURL,
	}
	data, err := encodeNew(lecture)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Create(models.LecturePath(courseID, sectionID, lecture.ID), data).
		Audit(s.audit(actor, action, "lecture", lecture.ID, fmt.Sprintf(
			"Leçon %s %q ajoutée à la section %s du cours %s par %s",
			in.Type, in.Title, sectionID, courseID, actor.UserID,
		)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(lecture.ID)
}

// assetField names the lecture field an uploaded file of contentType fills.
// Text lectures carry no file.
func assetField(lectureType models.LectureType, contentType string) (string, error) {
	switch {
	case lectureType == models.LectureTypeVideo && strings.HasPrefix(contentType, "video/"):
		return "videoUrl", nil
	case lectureType == models.LectureTypePDF && contentType == "application/pdf":
		return "pdfUrl", nil
	case lectureType == models.LectureTypeText:
		return "", apperr.Validation(map[string]string{"type": "une leçon texte n'accepte pas de fichier"})
	}
	return "", apperr.Validation(map[string]string{
		"file": fmt.Sprintf("un fichier %s ne convient pas à une leçon %s", contentType, lectureType),
	})
}

// lectureForAsset loads a lecture the actor may attach a contentType file to
func (s *Service) lectureForAsset(ctx context.Context, actor Actor, courseID, sectionID, lectureID, contentType string) (*models.Lecture, *store.Document, string, error) {
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return nil, nil, "", err
	}
	lecture, doc, err := getAs[models.Lecture](ctx, s.store, models.LecturePath(courseID, sectionID, lectureID), "leçon")
	if err != nil {
		return nil, nil, "", err
	}
	field, err := assetField(lecture.Type, contentType)
	if err != nil {
		return nil, nil, "", err
	}
	return lecture, doc, field, nil
}

// CheckLectureAsset tells whether SetLectureAsset would accept a contentType
// file on the lecture, before anything is uploaded.
func (s *Service) CheckLectureAsset(ctx context.Context, actor Actor, courseID, sectionID, lectureID, contentType string) Result {
	if _, _, _, err := s.lectureForAsset(ctx, actor, courseID, sectionID, lectureID, contentType); err != nil {
		return fail("lecture.asset.check", err)
	}
	return ok(lectureID)
}

// SetLectureAsset points a video or pdf lecture at an uploaded file. The
// previously attached file, if any, is removed once the change is committed.
func (s *Service) SetLectureAsset(ctx context.Context, actor Actor, courseID, sectionID, lectureID, contentType, key, url string) Result {
	const action = "lecture.asset.update"

	lecture, doc, field, err := s.lectureForAsset(ctx, actor, courseID, sectionID, lectureID, contentType)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Update(doc.Path, map[string]any{
			field:       url,
			"assetKey":  key,
			"updatedAt": store.ServerTimestamp,
		}, store.IfVersion(doc.Version)).
		Audit(s.audit(actor, action, "lecture", lectureID,
			fmt.Sprintf("Fichier %s attaché à la leçon %s par %s (remplace %q)", key, lectureID, actor.UserID, lecture.AssetKey)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	if lecture.AssetKey != key {
		s.removeBlob(ctx, lecture.AssetKey)
	}
	return ok(lectureID)
}

// DeleteLecture removes a lecture, compacts its siblings and, best effort,
// the uploaded file it referenced.
func (s *Service) DeleteLecture(ctx context.Context, actor Actor, courseID, sectionID, lectureID string) Result {
	const action = "lecture.delete"

	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	path := models.LecturePath(courseID, sectionID, lectureID)
	lecture, _, err := getAs[models.Lecture](ctx, s.store, path, "leçon")
	if err != nil {
		return fail(action, err)
	}
	siblings, err := loadSiblings(ctx, s.store, models.LecturesOf(courseID, sectionID))
	if err != nil {
		return fail(action, err)
	}

	plan := mutation.New().Delete(path)
	planCompaction(plan, siblings, path, lecture.Order)
	plan.Audit(s.audit(actor, action, "lecture", lectureID,
		fmt.Sprintf("Leçon %q (%s) de la section %s supprimée par %s", lecture.Title, lectureID, sectionID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.removeBlob(ctx, lecture.AssetKey)
	s.bus.Emit(events.LectureDeleted, lectureID)
	return ok(lectureID)
}

func (s *Service) ReorderLectures(ctx context.Context, actor Actor, courseID, sectionID string, in validator.ReorderInput) Result {
	const action = "lecture.reorder"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	return s.reorder(ctx, actor, action, "section", sectionID, models.LecturesOf(courseID, sectionID), in)
}
