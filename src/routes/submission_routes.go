// file: src/routes/submission_routes.go
package routes

import (
	"github.com/gofiber/fiber/v2"

	"welfare-committee-backend/src/controllers"
	"welfare-committee-backend/src/middleware"
)

func SubmissionRoutes(router fiber.Router, deps Deps) {
	ctrl := controllers.NewSubmissionController(deps.Submissions, deps.Logger)
	exportCtrl := controllers.NewExportController(deps.Submissions, deps.ExportsDir, deps.Logger)
	requireAdmin := middleware.AuthJWT(deps.Auth)

	// public form
	router.Post("/submit", ctrl.Submit)

	// admin dashboard
	submissions := router.Group("/submissions", requireAdmin)
	submissions.Get("/", ctrl.ListSubmissions)
	submissions.Get("/stats", ctrl.GetStats)
	submissions.Get("/:id", ctrl.GetSubmission)

	router.Get("/export-excel", requireAdmin, exportCtrl.ExportExcel)
}
