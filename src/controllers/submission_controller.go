package controllers

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"welfare-committee-backend/src/models"
	"welfare-committee-backend/src/repositories"
	submissionSvc "welfare-committee-backend/src/services/submission"
	"welfare-committee-backend/src/utils"
)

type SubmitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type SubmissionController struct {
	svc *submissionSvc.SubmissionService
	log *zap.Logger
}

func NewSubmissionController(svc *submissionSvc.SubmissionService, log *zap.Logger) *SubmissionController {
	return &SubmissionController{svc: svc, log: log}
}

// Submit godoc
// @Summary      Submit or update a welfare form
// @Description  Multipart form. Without an id a new submission is created and a photo is required; with an id the stored submission is replaced and its photo kept unless a new one is sent. childrenDetails is a JSON array of {name, dob, gender}.
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        id               formData  string  false  "Submission id to update"
// @Param        name             formData  string  true   "Employee name"
// @Param        gender           formData  string  true   "Male or Female"
// @Param        childrenDetails  formData  string  false  "JSON array of children"
// @Param        photo            formData  file    false  "Employee photo (required on create)"
// @Success      201  {object}  SubmitResponse
// @Success      200  {object}  SubmitResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/submit [post]
func (h *SubmissionController) Submit(c *fiber.Ctx) error {
	fields, photo, err := formFields(c)
	if err != nil {
		return utils.HandleValidationError(c, models.NewValidationError("request must be multipart/form-data or urlencoded"))
	}

	res, err := h.svc.Submit(c.UserContext(), fields, photo, fields["id"])
	if err != nil {
		return respondError(c, h.log, err, "Failed to submit form")
	}

	if res.Created {
		return c.Status(fiber.StatusCreated).JSON(SubmitResponse{Message: "Form submitted successfully", ID: res.ID})
	}
	return c.JSON(SubmitResponse{Message: "Form updated successfully", ID: res.ID})
}

// ListSubmissions godoc
// @Summary      List submissions
// @Description  Newest first by default. The relational backend omits children unless children=true.
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        search    query  string  false  "Matches name, employee code, designation or official email"
// @Param        gender    query  string  false  "Male or Female"
// @Param        sort      query  string  false  "newest, oldest or name" default(newest)
// @Param        children  query  bool    false  "Attach children"
// @Success      200  {array}   models.Submission
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/submissions [get]
func (h *SubmissionController) ListSubmissions(c *fiber.Ctx) error {
	opts := repositories.ListOptions{
		Search:       strings.TrimSpace(c.Query("search")),
		Sort:         repositories.ParseSortOrder(c.Query("sort")),
		WithChildren: c.QueryBool("children", false),
	}
	if raw := strings.TrimSpace(c.Query("gender")); raw != "" {
		gender, ok := models.ParseGender(raw)
		if !ok {
			return utils.HandleValidationError(c, models.NewValidationError("gender must be one of: Male, Female"))
		}
		opts.Gender = gender
	}

	subs, err := h.svc.List(c.UserContext(), opts)
	if err != nil {
		return respondError(c, h.log, err, "Failed to fetch submissions")
	}
	return c.JSON(subs)
}

// GetSubmission godoc
// @Summary      Get one submission with its children
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  models.Submission
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/submissions/{id} [get]
func (h *SubmissionController) GetSubmission(c *fiber.Ctx) error {
	sub, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Failed to fetch submission")
	}
	return c.JSON(models.NewSubmissionDetail(sub))
}

// GetStats godoc
// @Summary      Submission totals by gender
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  repositories.CountSummary
// @Failure      401  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/submissions/stats [get]
func (h *SubmissionController) GetStats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Failed to fetch statistics")
	}
	return c.JSON(stats)
}

// formFields flattens a multipart or urlencoded body into single values.
// The first value wins for repeated keys.
func formFields(c *fiber.Ctx) (map[string]string, *multipart.FileHeader, error) {
	fields := map[string]string{}
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		var photo *multipart.FileHeader
		if files := form.File["photo"]; len(files) > 0 {
			photo = files[0]
		}
		return fields, photo, nil
	}

	if strings.HasPrefix(contentType, fiber.MIMEApplicationForm) {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			if _, seen := fields[string(key)]; !seen {
				fields[string(key)] = string(value)
			}
		})
		return fields, nil, nil
	}
	return nil, nil, fiber.ErrUnsupportedMediaType
}
