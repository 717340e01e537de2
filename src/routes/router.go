package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"welfare-committee-backend/src/controllers"
	"welfare-committee-backend/src/middleware"
	"welfare-committee-backend/src/services"
	submissionSvc "welfare-committee-backend/src/services/submission"
	"welfare-committee-backend/src/utils"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Submissions    *submissionSvc.SubmissionService
	Auth           *services.AuthService
	Logger         *zap.Logger
	UploadsDir     string
	ExportsDir     string
	FrontendURL    string
	Production     bool
	BodyLimit      int
	RequestTimeout time.Duration
}

// NewApp builds the Fiber app with middleware and every route registered.
func NewApp(deps Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 45 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      "welfare-committee-backend",
		BodyLimit:    deps.BodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(deps.Logger))
	app.Use(middleware.HTTPSRedirect(deps.Production))
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(corsConfig(deps.FrontendURL)))

	InitRoutes(app, deps)
	return app
}

func InitRoutes(app *fiber.App, deps Deps) {
	app.Get("/healthz", controllers.Health(deps.Submissions.Backend()))
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Static("/uploads", deps.UploadsDir)

	api := app.Group("/api", middleware.RequestTimeout(deps.RequestTimeout))
	authRoutes(api, deps)
	SubmissionRoutes(api, deps)
}

// corsConfig allows credentials only for a concrete frontend origin.
func corsConfig(frontendURL string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     frontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}
	if frontendURL == "" || frontendURL == "*" {
		cfg.AllowOrigins = "*"
		cfg.AllowCredentials = false
	}
	return cfg
}

// errorHandler keeps Fiber's own errors (404 route, body too large) in the
// ErrorResponse shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return utils.HandleError(c, code, message)
}
