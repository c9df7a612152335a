package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/service"
)

// Predict godoc
// @Summary      Predict likely exam questions for a topic
// @Description  Relays the prediction program's JSON. Unparseable output yields a placeholder list plus "raw".
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        body body service.PredictInput true "query"
// @Success      200 {object} service.Prediction
// @Failure      400,500,503 {object} errorPayload
// @Router       /predict [post]
func Predict(svc service.PredictService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PredictInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		res, err := svc.Predict(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
