package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"datamorph/internal/http/middleware"
	"datamorph/internal/model"
	"datamorph/internal/service"
)

// fieldError is one entry of a 422 validation body: {"detail": [{"loc": [...], "msg": "..."}]}.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type validationBody struct {
	Detail    []fieldError `json:"detail"`
	RequestID string       `json:"request_id,omitempty"`
}

func writeError(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(model.ErrorDetail{
		Detail:    detail,
		RequestID: middleware.GetRequestID(c),
	})
}

func writeValidation(c *fiber.Ctx, errs []fieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(validationBody{
		Detail:    errs,
		RequestID: middleware.GetRequestID(c),
	})
}

// writeServiceError renders known service errors. Anything else is returned
// unchanged for ErrorHandler to log and turn into a 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var limitErr *service.StorageLimitError
	switch {
	case errors.As(err, &limitErr):
		return writeError(c, fiber.StatusRequestEntityTooLarge, limitErr.Detail())
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, service.ErrEmailTaken):
		return writeError(c, fiber.StatusConflict, "An account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return writeError(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrFileNotFound):
		return writeError(c, fiber.StatusNotFound, "File not found")
	case errors.Is(err, service.ErrProjectNotFound):
		return writeError(c, fiber.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "File is required")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "Missing identifier")
	}
	return err
}

// ErrorHandler renders every unhandled error as {"detail": ...}.
// Internal errors are logged and never leaked to the caller.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			switch status {
			case fiber.StatusNotFound:
				detail = "Not Found"
			case fiber.StatusMethodNotAllowed:
				detail = "Method Not Allowed"
			case fiber.StatusRequestEntityTooLarge:
				detail = "File too large"
			default:
				if status < fiber.StatusInternalServerError {
					detail = fe.Message
				}
			}
		}

		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", middleware.GetRequestID(c)).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return writeError(c, status, detail)
	}
}
