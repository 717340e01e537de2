package routes

import (
	"github.com/gofiber/fiber/v2"

	"welfare-committee-backend/src/controllers"
	"welfare-committee-backend/src/middleware"
)

func authRoutes(router fiber.Router, deps Deps) {
	ctrl := controllers.NewAuthController(deps.Auth, deps.Logger)

	auth := router.Group("/auth")
	auth.Post("/login", ctrl.Login)
	auth.Post("/logout", middleware.AuthJWT(deps.Auth), ctrl.Logout)
}
