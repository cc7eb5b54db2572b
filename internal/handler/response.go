package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/service"
)

// ok writes a success envelope. message may be empty.
func ok(c fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// fail maps a service error onto a status code and error code. Unknown errors
// are logged and reported with fallback as the message.
func fail(c fiber.Ctx, err error, fallback string) error {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, service.ErrCannotModifySelf):
		status, code = fiber.StatusForbidden, "CANNOT_MODIFY_SELF"
	case errors.Is(err, service.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, service.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, service.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrUpstream):
		log.Error().Err(err).Str("path", c.Path()).Msg("upstream failure")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "UPSTREAM_FAILURE", service.Message(err, fallback))
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
	return middleware.ErrorResponse(c, status, code, service.Message(err, fallback))
}

func badRequest(c fiber.Ctx, msg string) error {
	return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", msg)
}

func invalidBody(c fiber.Ctx) error {
	return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
}
