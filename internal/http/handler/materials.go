package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/service"
)

// readMaterial binds the document fields and the optional file from either a multipart
// form or a JSON body. release closes the uploaded file and is never nil.
func readMaterial(c *fiber.Ctx) (p service.MaterialPatch, file *service.Upload, release func(), err error) {
	release = func() {}
	if !isMultipart(c) {
		err = bindJSON(c, &p)
		return p, nil, release, err
	}

	p.Title = formValue(c, "title")
	p.Description = formValue(c, "description")
	p.Subject = formValue(c, "subject")
	p.Department = formValue(c, "department")
	p.FilePath = formValue(c, "filePath")
	if p.Year, err = formYear(c); err != nil {
		return p, nil, release, err
	}
	file, release, err = formFile(c)
	return p, file, release, err
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// CreateMaterial godoc
// @Summary      Upload a notes, PYQ or syllabus document
// @Description  Multipart with one "file" part, or JSON with a filePath. PYQs inherit the subject's department.
// @Tags         materials
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Param        collection path string true "notes, pyqs or syllabus"
// @Param        file formData file false "document"
// @Param        title formData string true "title"
// @Param        subject formData string true "subject id"
// @Param        year formData int false "required for pyqs and syllabus"
// @Success      201 {object} model.Material
// @Failure      400,404 {object} errorPayload
// @Router       /{collection} [post]
func CreateMaterial(svc service.MaterialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, file, closeFile, err := readMaterial(c)
		defer closeFile()
		if err != nil {
			return err
		}
		m, err := svc.Create(c.UserContext(), service.MaterialInput{
			Title:       deref(p.Title),
			Description: deref(p.Description),
			Subject:     deref(p.Subject),
			Department:  deref(p.Department),
			Year:        deref(p.Year),
			FilePath:    deref(p.FilePath),
		}, file)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// ListMaterials godoc
// @Summary  Documents of one collection, newest first
// @Tags     materials
// @Produce  json
// @Param    collection path string true "notes, pyqs or syllabus"
// @Param    subject query string false "subject id, takes precedence"
// @Param    departmentId query string false "department id (alias: department)"
// @Success  200 {array} model.Material
// @Router   /{collection} [get]
func ListMaterials(svc service.MaterialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), service.MaterialQuery{
			Subject:    c.Query("subject"),
			Department: c.Query("departmentId", c.Query("department")),
		})
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

func GetMaterial(svc service.MaterialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(m)
	}
}

func UpdateMaterial(svc service.MaterialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, file, closeFile, err := readMaterial(c)
		defer closeFile()
		if err != nil {
			return err
		}
		m, err := svc.Update(c.UserContext(), c.Params("id"), p, file)
		if err != nil {
			return err
		}
		return c.JSON(m)
	}
}

func DeleteMaterial(svc service.MaterialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return deleted(c, svc.Kind().Label(), id)
	}
}
