package services

import (
	"context"
	"fmt"

	"ndara/internal/cascade"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/validator"
)

func (s *Service) CreateQuiz(ctx context.Context, actor Actor, courseID, sectionID string, in validator.QuizInput) Result {
	const action = "quiz.create"

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

	quiz := models.Quiz{
		Base:        models.Base{ID: models.NewID()},
		Title:       in.Title,
		Description: in.Description,
		SectionID:   sectionID,
		CourseID:    courseID,
	}
	data, err := encodeNew(quiz)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Create(models.QuizPath(courseID, sectionID, quiz.ID), data).
		Audit(s.audit(actor, action, "quiz", quiz.ID,
			fmt.Sprintf("Quiz %q ajouté à la section %s par %s", in.Title, sectionID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(quiz.ID)
}

// DeleteQuiz removes a quiz and all of its questions
func (s *Service) DeleteQuiz(ctx context.Context, actor Actor, courseID, sectionID, quizID string) Result {
	const action = "quiz.delete"

	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	path := models.QuizPath(courseID, sectionID, quizID)
	quiz, _, err := getAs[models.Quiz](ctx, s.store, path, "quiz")
	if err != nil {
		return fail(action, err)
	}

	plan := mutation.New().Audit(s.audit(actor, action, "quiz", quizID,
		fmt.Sprintf("Quiz %q (%s) supprimé par %s avec ses questions", quiz.Title, quizID, actor.UserID)))
	report, err := s.cascade.Delete(ctx, path, cascade.QuizTree, plan)
	if err != nil {
		res := fail(action, err)
		res.Deleted, res.Partial = report.Deleted, report.Deleted > 0
		return res
	}
	res := ok(quizID)
	res.Deleted, res.Partial = report.Deleted, !report.Atomic
	return res
}

func (s *Service) AddQuestion(ctx context.Context, actor Actor, courseID, sectionID, quizID string, in validator.QuestionInput) Result {
	const action = "quiz.question.create"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	if _, _, err := getAs[models.Quiz](ctx, s.store, models.QuizPath(courseID, sectionID, quizID), "quiz"); err != nil {
		return fail(action, err)
	}
	order, err := nextOrder(ctx, s.store, models.QuestionsOf(courseID, sectionID, quizID))
	if err != nil {
		return fail(action, err)
	}

	options := make([]models.QuestionOption, 0, len(in.Options))
	correct := 0
	for _, o := range in.Options {
		options = append(options, models.QuestionOption{Text: o.Text, IsCorrect: o.IsCorrect})
		if o.IsCorrect {
			correct++
		}
	}
	question := models.Question{
		Base:    models.Base{ID: models.NewID()},
		Text:    in.Text,
		Options: options,
		Order:   order,
		QuizID:  quizID,
	}
	data, err := encodeNew(question)
	if err != nil {
		return fail(action, err)
	}
	plan := mutation.New().
		Create(models.QuestionPath(courseID, sectionID, quizID, question.ID), data).
		Audit(s.audit(actor, action, "question", question.ID, fmt.Sprintf(
			"Question %d ajoutée au quiz %s par %s (%d options, %d correctes)",
			order, quizID, actor.UserID, len(options), correct,
		)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(question.ID)
}

func (s *Service) DeleteQuestion(ctx context.Context, actor Actor, courseID, sectionID, quizID, questionID string) Result {
	const action = "quiz.question.delete"

	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	path := models.QuestionPath(courseID, sectionID, quizID, questionID)
	question, _, err := getAs[models.Question](ctx, s.store, path, "question")
	if err != nil {
		return fail(action, err)
	}
	siblings, err := loadSiblings(ctx, s.store, models.QuestionsOf(courseID, sectionID, quizID))
	if err != nil {
		return fail(action, err)
	}

	plan := mutation.New().Delete(path)
	planCompaction(plan, siblings, path, question.Order)
	plan.Audit(s.audit(actor, action, "question", questionID,
		fmt.Sprintf("Question %s du quiz %s supprimée par %s", questionID, quizID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}
	return ok(questionID)
}

func (s *Service) ReorderQuestions(ctx context.Context, actor Actor, courseID, sectionID, quizID string, in validator.ReorderInput) Result {
	const action = "quiz.question.reorder"

	if err := requireAny(actor, models.PermAuthorContent, models.PermManageCourses); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}
	if _, _, err := s.authoredCourse(ctx, actor, courseID); err != nil {
		return fail(action, err)
	}
	return s.reorder(ctx, actor, action, "quiz", quizID, models.QuestionsOf(courseID, sectionID, quizID), in)
}
