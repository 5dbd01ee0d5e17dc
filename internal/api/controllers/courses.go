package controllers

import (
	"net/http"

	"ndara/internal/api/middleware"
	"ndara/internal/models"
	"ndara/internal/services"
	"ndara/internal/validator"

	"github.com/labstack/echo/v4"
)

type CourseController struct {
	svc *services.Service
}

func NewCourseController(svc *services.Service) *CourseController {
	return &CourseController{svc: svc}
}

// List returns courses, optionally filtered by ?status=
func (cc *CourseController) List(c echo.Context) error {
	courses, err := cc.svc.ListCourses(c.Request().Context(), models.CourseStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list(courses))
}

func (cc *CourseController) Create(c echo.Context) error {
	in, err := bind[validator.CourseInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.CreateCourse(c.Request().Context(), middleware.GetActor(c), in)
	return respond(c, http.StatusCreated, res)
}

func (cc *CourseController) Update(c echo.Context) error {
	in, err := bind[validator.CourseInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.UpdateCourse(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), in)
	return respond(c, http.StatusOK, res)
}

func (cc *CourseController) SubmitForReview(c echo.Context) error {
	res := cc.svc.SubmitCourseForReview(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"))
	return respond(c, http.StatusOK, res)
}

func (cc *CourseController) Moderate(c echo.Context) error {
	in, err := bind[validator.ModerationInput](c)
	if err != nil {
		return err
	}
	res := cc.svc.ModerateCourse(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), in)
	return respond(c, http.StatusOK, res)
}

func (cc *CourseController) Delete(c echo.Context) error {
	res := cc.svc.DeleteCourse(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"))
	return respond(c, http.StatusOK, res)
}
