package handler

import (
	"github.com/gofiber/fiber/v2"

	"datamorph/internal/http/middleware"
	"datamorph/internal/model"
	"datamorph/internal/service"
)

// Signup godoc
// @Summary     Create an account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body body     model.SignupRequest true "New account"
// @Success     201  {object} model.AuthResponse
// @Failure     409  {object} model.ErrorDetail
// @Failure     422  {object} model.ErrorDetail
// @Router      /api/v1/auth/signup [post]
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.SignupRequest
		if errs := bindJSON(c, &req); errs != nil {
			return writeValidation(c, errs)
		}
		res, err := svc.Signup(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login godoc
// @Summary     Exchange credentials for tokens
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body body     model.Credentials true "Credentials"
// @Success     200  {object} model.AuthResponse
// @Failure     401  {object} model.ErrorDetail
// @Router      /api/v1/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Credentials
		if errs := bindJSON(c, &req); errs != nil {
			return writeValidation(c, errs)
		}
		res, err := svc.Login(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Refresh godoc
// @Summary     Exchange a refresh token for a new token pair
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body body     model.RefreshRequest true "Refresh token"
// @Success     200  {object} model.TokenPair
// @Failure     401  {object} model.ErrorDetail
// @Router      /api/v1/auth/refresh [post]
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.RefreshRequest
		if errs := bindJSON(c, &req); errs != nil {
			return writeValidation(c, errs)
		}
		pair, err := svc.Refresh(c.UserContext(), req.RefreshToken)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(pair)
	}
}

// Me godoc
// @Summary     Current user's profile
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} model.User
// @Failure     401 {object} model.ErrorDetail
// @Router      /api/v1/auth/me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Profile(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}
