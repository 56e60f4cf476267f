package serverutils

import (
	"errors"

	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler turns errors returned by handlers into the response envelope.
// Store and unknown failures are logged and answered without details.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code, message := classify(err)

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err.Error(),
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func classify(err error) (int, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperror.KindNotFound:
			return fiber.StatusNotFound, appErr.Message
		case apperror.KindValidation:
			return fiber.StatusBadRequest, appErr.Message
		case apperror.KindServiceUnavailable:
			return fiber.StatusServiceUnavailable, appErr.Message
		}
		return fiber.StatusInternalServerError, "Internal server error"
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	return fiber.StatusInternalServerError, "Internal server error"
}
