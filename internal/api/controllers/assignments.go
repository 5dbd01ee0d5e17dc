package controllers

import (
	"net/http"

	"ndara/internal/api/middleware"
	"ndara/internal/services"
	"ndara/internal/validator"

	"github.com/labstack/echo/v4"
)

type AssignmentController struct {
	svc *services.Service
}

func NewAssignmentController(svc *services.Service) *AssignmentController {
	return &AssignmentController{svc: svc}
}

func (ac *AssignmentController) Create(c echo.Context) error {
	in, err := bind[validator.AssignmentInput](c)
	if err != nil {
		return err
	}
	res := ac.svc.CreateAssignment(c.Request().Context(), middleware.GetActor(c), c.Param("courseId"), c.Param("sectionId"), in)
	return respond(c, http.StatusCreated, res)
}

// Submit stores the calling student's work
func (ac *AssignmentController) Submit(c echo.Context) error {
	in, err := bind[validator.SubmissionInput](c)
	if err != nil {
		return err
	}
	res := ac.svc.SubmitAssignment(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("assignmentId"), in)
	return respond(c, http.StatusOK, res)
}

func (ac *AssignmentController) Grade(c echo.Context) error {
	in, err := bind[validator.GradeInput](c)
	if err != nil {
		return err
	}
	res := ac.svc.GradeSubmission(c.Request().Context(), middleware.GetActor(c),
		c.Param("courseId"), c.Param("sectionId"), c.Param("assignmentId"), c.Param("studentId"), in)
	return respond(c, http.StatusOK, res)
}
