package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welfare-committee-backend/src/models"
)

func TestHandleValidationError(t *testing.T) {
	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		return HandleValidationError(c, models.NewValidationError("name is required", "gender is required"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return HandleValidationError(c, errors.New("bad input"))
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return HandleError(c, fiber.StatusNotFound, "Submission not found")
	})

	decode := func(path string) (int, models.ErrorResponse) {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body
	}

	status, body := decode("/validation")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, []string{"name is required", "gender is required"}, body.Errors)

	status, body = decode("/plain")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, []string{"bad input"}, body.Errors)

	status, body = decode("/error")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Submission not found", body.Message)
	assert.Empty(t, body.Errors)
}
