package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/service"
)

// Subscribe godoc
// @Summary  Join the newsletter
// @Tags     subscribe
// @Accept   json
// @Produce  json
// @Param    body body service.SubscribeInput true "email"
// @Success  201 {object} map[string]any
// @Failure  400,409 {object} errorPayload
// @Router   /subscribe [post]
func Subscribe(svc service.SubscriberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SubscribeInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		sub, err := svc.Subscribe(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Successfully subscribed to the newsletter!",
			"data":    sub,
		})
	}
}
