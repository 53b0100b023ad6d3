package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util"
)

// JobsHandler manages job posting endpoints.
type JobsHandler struct {
	jobs *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{jobs: jobService}
}

// CreateJob handles POST /data/jobs. Expects a multipart form with a
// mandatory logo file.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	logo, contentType, err := readLogoFile(c)
	if err != nil {
		return err
	}
	if logo == nil {
		return apperrors.NewValidationError("logo image required", nil)
	}

	title := c.FormValue("title")
	company := c.FormValue("company")
	if title == "" || company == "" {
		return apperrors.NewValidationError("title and company required", nil)
	}

	job, err := h.jobs.Create(c.Context(), service.JobCreateInput{
		Title:           title,
		Company:         company,
		Category:        c.FormValue("category"),
		Location:        c.FormValue("location"),
		Duration:        c.FormValue("duration"),
		Description:     c.FormValue("description"),
		Logo:            logo,
		LogoContentType: contentType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewJobResponse(job))
}

// UpdateJob handles PUT /data/jobs/:id. Fields absent from the form are
// left unchanged; a supplied logo file replaces the hosted image.
func (h *JobsHandler) UpdateJob(c *fiber.Ctx) error {
	logo, contentType, err := readLogoFile(c)
	if err != nil {
		return err
	}

	input := service.JobUpdateInput{
		Logo:            logo,
		LogoContentType: contentType,
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		input.Title = formField(form, "title")
		input.Company = formField(form, "company")
		input.Category = formField(form, "category")
		input.Location = formField(form, "location")
		input.Duration = formField(form, "duration")
		input.Description = formField(form, "description")
	}

	job, err := h.jobs.Update(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobResponse(job))
}

// GetJob handles GET /data/jobs/:id.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.jobs.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobResponse(job))
}

// ListJobs handles GET /data/jobs.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobs.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobListResponse(jobs))
}

// ListJobsByCategory handles GET /data/jobs/category/:value. The segment is
// path-unescaped, so a literal "+" stays a "+".
func (h *JobsHandler) ListJobsByCategory(c *fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("value"))
	if err != nil {
		category = c.Params("value")
	}
	jobs, err := h.jobs.ListByCategory(c.Context(), category)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobListResponse(jobs))
}

// DeleteJob handles DELETE /data/jobs/:id.
func (h *JobsHandler) DeleteJob(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.jobs.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "message": "job deleted"})
}

// readLogoFile extracts the optional "logo" multipart file. A missing file
// is not an error here; handlers decide whether it is mandatory.
func readLogoFile(c *fiber.Ctx) ([]byte, string, error) {
	header, err := c.FormFile("logo")
	if err != nil {
		return nil, "", nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return data, header.Header.Get("Content-Type"), nil
}

func formField(form *multipart.Form, name string) *string {
	vals, ok := form.Value[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}
