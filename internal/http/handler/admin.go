package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/model"
	"smartstudy/internal/service"
)

// Stats godoc
// @Summary   Record counts across collections
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} model.Stats
// @Failure   401,403 {object} errorPayload
// @Router    /admin/stats [get]
func Stats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(st)
	}
}

// GetSettings godoc
// @Summary   Site settings
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} model.Settings
// @Router    /admin/settings [get]
func GetSettings(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Get(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(st)
	}
}

// UpdateSettings godoc
// @Summary      Change site settings
// @Description  Omitted fields keep their value; an explicit false is stored. Modules merge key by key.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body model.SettingsPatch true "changes"
// @Success      200 {object} model.Settings
// @Router       /admin/settings [put]
func UpdateSettings(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.SettingsPatch
		if err := bindJSON(c, &p); err != nil {
			return err
		}
		st, err := svc.Update(c.UserContext(), p)
		if err != nil {
			return err
		}
		return c.JSON(st)
	}
}
