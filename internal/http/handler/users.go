package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/apperror"
	"smartstudy/internal/http/middleware"
	"smartstudy/internal/service"
)

// Register godoc
// @Summary  Create a student account
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body service.RegisterInput true "account"
// @Success  201 {object} map[string]any
// @Failure  400,403,409 {object} errorPayload
// @Router   /users/register [post]
func Register(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Register Success",
			"id":       res.User.ID,
			"username": res.User.Username,
			"email":    res.User.Email,
			"role":     res.User.Role,
			"token":    res.Token,
		})
	}
}

// Login godoc
// @Summary  Exchange credentials for a token
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body service.LoginInput true "credentials"
// @Success  200 {object} map[string]any
// @Failure  400 {object} errorPayload
// @Router   /users/login [post]
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if err := bindJSON(c, &in); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Login Successful", "token": res.Token})
	}
}

// Profile godoc
// @Summary   Current user's account
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} map[string]any
// @Failure   401,404 {object} errorPayload
// @Router    /users/profile [get]
func Profile(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := middleware.IdentityFrom(c)
		if !ok {
			return apperror.Unauthenticated("not authorized, no token")
		}
		u, err := svc.Profile(c.UserContext(), id.UserID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		})
	}
}

// ListUsers godoc
// @Summary   All accounts, newest first
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} model.User
// @Router    /users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(users)
	}
}

// UpdateUser godoc
// @Summary   Change an account's username, email, role or password
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "user id"
// @Param     body body service.UserPatch true "fields to change"
// @Success   200 {object} model.User
// @Router    /users/{id} [put]
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p service.UserPatch
		if err := bindJSON(c, &p); err != nil {
			return err
		}
		u, err := svc.Update(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// DeleteUser godoc
// @Summary   Remove an account
// @Tags      users
// @Security  BearerAuth
// @Param     id path string true "user id"
// @Success   200 {object} map[string]any
// @Router    /users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return deleted(c, "user", id)
	}
}
