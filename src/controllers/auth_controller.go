package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"welfare-committee-backend/src/services"
	"welfare-committee-backend/src/utils"
)

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthController(auth *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

// Login godoc
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  services.LoginResult
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}

	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		return respondError(c, h.log, err, "Login failed")
	}
	return c.JSON(res)
}

// Logout godoc
// @Summary      Revoke the current admin token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthController) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*utils.JWTClaims)
	if !ok {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Missing or invalid Authorization header")
	}
	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return respondError(c, h.log, err, "Logout failed")
	}
	return c.JSON(MessageResponse{Message: "Logged out successfully"})
}
