package controllers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"welfare-committee-backend/src/services/export"
	submissionSvc "welfare-committee-backend/src/services/submission"
)

const exportFilename = "welfare_committee_data.xlsx"

type ExportController struct {
	svc        *submissionSvc.SubmissionService
	exportsDir string
	log        *zap.Logger
}

// NewExportController keeps a timestamped copy of every export in
// exportsDir when it is not empty.
func NewExportController(svc *submissionSvc.SubmissionService, exportsDir string, log *zap.Logger) *ExportController {
	return &ExportController{svc: svc, exportsDir: exportsDir, log: log}
}

// ExportExcel godoc
// @Summary      Download every submission as a spreadsheet
// @Description  Two sheets: Submissions (one row per submission) and Children (one row per child).
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/export-excel [get]
func (h *ExportController) ExportExcel(c *fiber.Ctx) error {
	subs, err := h.svc.ListForExport(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Failed to export data to Excel")
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, export.Project(subs)); err != nil {
		return respondError(c, h.log, err, "Failed to export data to Excel")
	}
	h.keepCopy(buf.Bytes())

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+exportFilename)
	return c.Send(buf.Bytes())
}

func (h *ExportController) keepCopy(data []byte) {
	if h.exportsDir == "" {
		return
	}
	name := fmt.Sprintf("welfare_committee_data_%s.xlsx", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(h.exportsDir, name), data, 0o644); err != nil {
		h.log.Warn("Failed to keep export copy", zap.String("dir", h.exportsDir), zap.Error(err))
	}
}
