package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"smartstudy/internal/apperror"
	"smartstudy/internal/errreport"
	"smartstudy/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, env errorEnvelope) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     env,
	})
}

// fiberCodes names the framework-level failures that never reach a handler.
var fiberCodes = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {Code: "BAD_REQUEST", Message: "bad request"},
	fiber.StatusNotFound:              {Code: "NOT_FOUND", Message: "resource not found"},
	fiber.StatusMethodNotAllowed:      {Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {Code: "PAYLOAD_TOO_LARGE", Message: "request body is too large"},
	fiber.StatusUnsupportedMediaType:  {Code: "UNSUPPORTED_MEDIA_TYPE", Message: "unsupported content type"},
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Application errors keep their caller-safe message; anything else is hidden behind a
// generic 500 and forwarded to the reporter.
func ErrorHandler(log zerolog.Logger, reporter errreport.Reporter) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if env, ok := fiberCodes[fe.Code]; ok {
				return writeError(c, fe.Code, env)
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, errorEnvelope{Code: "BAD_REQUEST", Message: fe.Message})
			}
		}

		appErr := apperror.As(err)
		status := appErr.Status()
		if status >= fiber.StatusInternalServerError && appErr.Kind != apperror.KindUnavailable {
			log.Error().Err(err).
				Str("request_id", requestIDFromCtx(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request_failed")
			reporter.Report(err, map[string]any{
				"request_id": requestIDFromCtx(c),
				"method":     c.Method(),
				"path":       c.Path(),
			})
		}
		return writeError(c, status, errorEnvelope{
			Code:    appErr.ErrorCode(),
			Message: appErr.Message,
			Detail:  appErr.Detail,
			Fields:  appErr.Fields,
		})
	}
}
