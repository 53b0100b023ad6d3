package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/repository"
	"github.com/spec-kit/job-board/internal/storage"
	apperrors "github.com/spec-kit/job-board/pkg/util"
)

const (
	jobCacheTTL    = 5 * time.Minute
	jobCacheAllKey = "jobs:all"
	jobCacheCatKey = "jobs:category:"
)

// ListingCache is the slice of the redis client the job service needs for its
// read-through listing cache. *redis.Client satisfies it.
type ListingCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// JobService coordinates job posting workflows, logo uploads and the
// best-effort Redis listing cache.
type JobService struct {
	jobs       repository.JobRepository
	uploader   storage.Uploader
	cache      ListingCache
	dispatcher events.Dispatcher
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo    repository.JobRepository
	Uploader   storage.Uploader
	Cache      ListingCache
	Dispatcher events.Dispatcher
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		jobs:       deps.JobRepo,
		uploader:   deps.Uploader,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// JobCreateInput describes job creation payload. Logo bytes are mandatory.
type JobCreateInput struct {
	Title           string
	Company         string
	Category        string
	Location        string
	Duration        string
	Description     string
	Logo            []byte
	LogoContentType string
}

// JobUpdateInput describes partial updates; nil fields are left untouched.
type JobUpdateInput struct {
	Title           *string
	Company         *string
	Category        *string
	Location        *string
	Duration        *string
	Description     *string
	Logo            []byte
	LogoContentType string
}

// Create uploads the logo and persists the posting.
func (s *JobService) Create(ctx context.Context, input JobCreateInput) (*domain.Job, error) {
	logoURL, err := s.uploader.Upload(ctx, input.Logo, input.LogoContentType)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	job := &domain.Job{
		Title:       input.Title,
		Company:     input.Company,
		LogoURL:     logoURL,
		Category:    input.Category,
		Location:    input.Location,
		Duration:    input.Duration,
		Description: input.Description,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.invalidateCache(ctx, job.Category)
	s.publishJobEvent(ctx, events.EventJobCreated, job)
	return job, nil
}

// Update applies partial changes; a supplied logo replaces the hosted image.
func (s *JobService) Update(ctx context.Context, id string, input JobUpdateInput) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	oldCategory := job.Category

	if len(input.Logo) > 0 {
		logoURL, err := s.uploader.Upload(ctx, input.Logo, input.LogoContentType)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		job.LogoURL = logoURL
	}

	if input.Title != nil {
		job.Title = *input.Title
	}
	if input.Company != nil {
		job.Company = *input.Company
	}
	if input.Category != nil {
		job.Category = *input.Category
	}
	if input.Location != nil {
		job.Location = *input.Location
	}
	if input.Duration != nil {
		job.Duration = *input.Duration
	}
	if input.Description != nil {
		job.Description = *input.Description
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.invalidateCache(ctx, oldCategory, job.Category)
	s.publishJobEvent(ctx, events.EventJobUpdated, job)
	return job, nil
}

// Get loads a single posting.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return job, nil
}

// List returns all postings, served from cache when warm.
func (s *JobService) List(ctx context.Context) ([]domain.Job, error) {
	if jobs, ok := s.cachedList(ctx, jobCacheAllKey); ok {
		return jobs, nil
	}

	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.storeList(ctx, jobCacheAllKey, jobs)
	return jobs, nil
}

// ListByCategory returns postings filtered by exact category value.
func (s *JobService) ListByCategory(ctx context.Context, category string) ([]domain.Job, error) {
	key := jobCacheCatKey + category
	if jobs, ok := s.cachedList(ctx, key); ok {
		return jobs, nil
	}

	jobs, err := s.jobs.ListByCategory(ctx, category)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.storeList(ctx, key, jobs)
	return jobs, nil
}

// Delete removes a posting permanently.
func (s *JobService) Delete(ctx context.Context, id string) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job", map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}

	if err := s.jobs.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job", map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}

	s.invalidateCache(ctx, job.Category)
	s.publishJobEvent(ctx, events.EventJobDeleted, job)
	return nil
}

// cachedList reads a listing from Redis. Any cache failure degrades to a miss.
func (s *JobService) cachedList(ctx context.Context, key string) ([]domain.Job, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var jobs []domain.Job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, false
	}
	return jobs, true
}

func (s *JobService) storeList(ctx context.Context, key string, jobs []domain.Job) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, raw, jobCacheTTL).Err()
}

func (s *JobService) invalidateCache(ctx context.Context, categories ...string) {
	if s.cache == nil {
		return
	}
	keys := []string{jobCacheAllKey}
	for _, category := range categories {
		keys = append(keys, jobCacheCatKey+category)
	}
	_ = s.cache.Del(ctx, keys...).Err()
}

func (s *JobService) publishJobEvent(ctx context.Context, eventType events.EventType, job *domain.Job) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.JobPayload{
			JobID:    job.ID,
			Title:    job.Title,
			Company:  job.Company,
			Category: job.Category,
		},
	})
}
