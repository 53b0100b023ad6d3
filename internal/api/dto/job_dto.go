package dto

import (
	"time"

	"github.com/spec-kit/job-board/internal/domain"
)

// JobResponse is the public projection of a posting.
type JobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Logo        string    `json:"logo"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Duration    string    `json:"duration"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewJobResponse maps a domain job to its response projection.
func NewJobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Company:     job.Company,
		Logo:        job.LogoURL,
		Category:    job.Category,
		Location:    job.Location,
		Duration:    job.Duration,
		Description: job.Description,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

// NewJobListResponse maps a slice of jobs.
func NewJobListResponse(jobs []domain.Job) []JobResponse {
	items := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, NewJobResponse(&jobs[i]))
	}
	return items
}
