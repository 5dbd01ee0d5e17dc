package controllers

import (
	"net/http"

	"ndara/internal/api/middleware"
	"ndara/internal/services"
	"ndara/internal/validator"

	"github.com/labstack/echo/v4"
)

// ContentController serves sections, lectures, quizzes, questions and resources
type ContentController struct {
	svc *services.Service
}

func NewContentController(svc *services.Service) *ContentController {
	return &ContentController{svc: svc}
}

func (cc *ContentController) CreateSection(c echo.Context) error {
	in, err := bind[validator.SectionInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.CreateSection(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), in)
	return respond(c, http.StatusCreated, res)
}

func (cc *ContentController) DeleteSection(c echo.Context) error {
	res := cc.svc.DeleteSection(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), c.Param("sectionId"))
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) ReorderSections(c echo.Context) error {
	in, err := bind[validator.ReorderInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.ReorderSections(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), in)
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) CreateLecture(c echo.Context) error {
	in, err := bind[validator.LectureInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.CreateLecture(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), c.Param("sectionId"), in)
	return respond(c, http.StatusCreated, res)
}

func (cc *ContentController) DeleteLecture(c echo.Context) error {
	res := cc.svc.DeleteLecture(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("lectureId"))
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) ReorderLectures(c echo.Context) error {
	in, err := bind[validator.ReorderInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.ReorderLectures(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), c.Param("sectionId"), in)
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) CreateQuiz(c echo.Context) error {
	in, err := bind[validator.QuizInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.CreateQuiz(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), c.Param("sectionId"), in)
	return respond(c, http.StatusCreated, res)
}

func (cc *ContentController) DeleteQuiz(c echo.Context) error {
	res := cc.svc.DeleteQuiz(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("quizId"))
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) AddQuestion(c echo.Context) error {
	in, err := bind[validator.QuestionInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.AddQuestion(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("quizId"), in)
	return respond(c, http.StatusCreated, res)
}

func (cc *ContentController) DeleteQuestion(c echo.Context) error {
	res := cc.svc.DeleteQuestion(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("quizId"), c.Param("questionId"))
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) ReorderQuestions(c echo.Context) error {
	in, err := bind[validator.ReorderInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.ReorderQuestions(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("quizId"), in)
	return respond(c, http.StatusOK, res)
}

func (cc *ContentController) CreateResource(c echo.Context) error {
	in, err := bind[validator.ResourceInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.CreateResource(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), in)
	return respond(c, http.StatusCreated, res)
}

func (cc *ContentController) DeleteResource(c echo.Context) error {
	res := cc.svc.DeleteResource(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), c.Param("resourceId"))
	return respond(c, http.StatusOK, res)
}
