package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/apperror"
	"smartstudy/internal/http/middleware"
	"smartstudy/internal/service"
)

var errInvalidBody = apperror.Validation("request body is not valid JSON", nil)

// bindJSON decodes the request body into dst. An empty body leaves dst untouched.
func bindJSON(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// formValue returns a pointer to the named form value when the field was sent at all.
func formValue(c *fiber.Ctx, name string) *string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	vals, ok := form.Value[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func formYear(c *fiber.Ctx) (*int, error) {
	raw := formValue(c, "year")
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperror.Validation("year must be a number", map[string]string{"year": "year must be a number"})
	}
	return &y, nil
}

// formFile opens the optional "file" part. The returned closer must always be called.
func formFile(c *fiber.Ctx) (*service.Upload, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// No file part in the request.
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperror.Validation("cannot open uploaded file", map[string]string{"file": "cannot open uploaded file"})
	}
	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// callerID returns the id of the authenticated caller, or "" on public routes.
func callerID(c *fiber.Ctx) string {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.UserID
	}
	return ""
}

// deleted is the body returned by every successful delete.
func deleted(c *fiber.Ctx, what, id string) error {
	return c.JSON(fiber.Map{"message": what + " deleted successfully", "id": id})
}
