package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/service"
)

// CreateSubject godoc
// @Summary   Create a subject under a department
// @Tags      subjects
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body service.SubjectInput true "subject"
// @Success   201 {object} model.Subject
// @Failure   400,404 {object} errorPayload
// @Router    /subjects [post]
func CreateSubject(svc service.SubjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SubjectInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		s, err := svc.Create(c.UserContext(), callerID(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

// ListSubjects godoc
// @Summary  Subjects, optionally of one department
// @Tags     subjects
// @Produce  json
// @Param    department query string false "department id"
// @Success  200 {array} model.Subject
// @Router   /subjects [get]
func ListSubjects(svc service.SubjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dept := c.Query("department", c.Query("departmentId"))
		list, err := svc.List(c.UserContext(), dept)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

func GetSubject(svc service.SubjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

func UpdateSubject(svc service.SubjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p service.SubjectPatch
		if err := bindJSON(c, &p); err != nil {
			return err
		}
		s, err := svc.Update(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

func DeleteSubject(svc service.SubjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return deleted(c, "subject", id)
	}
}
