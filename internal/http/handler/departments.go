package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/service"
)

// CreateDepartment godoc
// @Summary   Create a department
// @Tags      departments
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body service.DepartmentInput true "department"
// @Success   201 {object} model.Department
// @Failure   400,409 {object} errorPayload
// @Router    /departments [post]
func CreateDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DepartmentInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		d, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

// ListDepartments godoc
// @Summary  All departments by name
// @Tags     departments
// @Produce  json
// @Success  200 {array} model.Department
// @Router   /departments [get]
func ListDepartments(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

func GetDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

func UpdateDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p service.DepartmentPatch
		if err := bindJSON(c, &p); err != nil {
			return err
		}
		d, err := svc.Update(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

// DeleteDepartment godoc
// @Summary      Delete a department
// @Description  Fails with 409 while subjects remain, unless the server runs with DELETE_POLICY=cascade.
// @Tags         departments
// @Security     BearerAuth
// @Param        id path string true "department id"
// @Success      200 {object} map[string]any
// @Failure      404,409 {object} errorPayload
// @Router       /departments/{id} [delete]
func DeleteDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return deleted(c, "department", id)
	}
}
