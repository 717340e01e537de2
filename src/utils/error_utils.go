// error_utils.go
package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"welfare-committee-backend/src/models"
)

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// HandleValidationError reports every problem found, not just the first.
func HandleValidationError(c *fiber.Ctx, err error) error {
	resp := models.ErrorResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Validation failed",
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = verr.Problems
	} else {
		resp.Errors = []string{err.Error()}
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}
