package controllers

import "github.com/gofiber/fiber/v2"

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Backend string `json:"backend"`
}

// Health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /healthz [get]
func Health(backend string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{Status: "ok", Message: "Service is running", Backend: backend})
	}
}
