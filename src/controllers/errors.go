package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"welfare-committee-backend/src/models"
	"welfare-committee-backend/src/repositories"
	"welfare-committee-backend/src/services/uploads"
	"welfare-committee-backend/src/utils"
)

// respondError maps a service error onto its HTTP status. Unclassified
// errors are logged in full and answered with the generic message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error, message string) error {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("requestId", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.String("path", c.Path()),
	}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.HandleValidationError(c, verr)
	case errors.Is(err, repositories.ErrNotFound):
		return utils.HandleError(c, fiber.StatusNotFound, "Submission not found")
	// an unreachable store is transient, so it gets the 503 flavour of a 5xx
	case errors.Is(err, repositories.ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Warn("Storage unavailable", fields...)
		return utils.HandleError(c, fiber.StatusServiceUnavailable, "Storage is temporarily unavailable, please try again")
	case errors.Is(err, uploads.ErrUpload):
		log.Error("Photo upload failed", fields...)
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to store photo")
	}

	log.Error(message, fields...)
	return utils.HandleError(c, fiber.StatusInternalServerError, message)
}
