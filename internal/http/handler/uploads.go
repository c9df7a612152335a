package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/apperror"
	"smartstudy/internal/storage"
)

// ServeUpload streams a stored file back under /uploads/*. With a positive presignTTL the
// client is redirected to a time-limited storage URL instead.
func ServeUpload(store storage.Storage, presignTTL time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := storage.KeyFromPath(storage.UploadPrefix + "/" + c.Params("*"))
		if key == "" {
			return apperror.NotFound("file not found")
		}

		if presignTTL > 0 {
			url, err := store.PresignGet(c.UserContext(), key, presignTTL)
			if err != nil {
				return apperror.Internal(err)
			}
			return c.Redirect(url, fiber.StatusTemporaryRedirect)
		}

		body, info, err := store.Get(c.UserContext(), key)
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.NotFound("file not found")
		}
		if err != nil {
			return apperror.Internal(err)
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, strconv.Quote(info.ETag))
		}
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		// Fiber closes body once the response is written.
		return c.SendStream(body, size)
	}
}
