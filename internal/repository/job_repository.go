package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/job-board/internal/domain"
)

// JobRepository encapsulates job posting persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Job, error)
	Delete(ctx context.Context, id string) error
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (title, company, logo_url, category, location, duration, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		job.Title,
		job.Company,
		job.LogoURL,
		job.Category,
		job.Location,
		job.Duration,
		job.Description,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	const query = `
        UPDATE jobs SET title=$1, company=$2, logo_url=$3, category=$4, location=$5,
            duration=$6, description=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		job.Title,
		job.Company,
		job.LogoURL,
		job.Category,
		job.Location,
		job.Duration,
		job.Description,
		job.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	const query = `
        SELECT id, title, company, logo_url, category, location, duration, description, created_at, updated_at
        FROM jobs WHERE id=$1`

	var job domain.Job
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.LogoURL,
		&job.Category,
		&job.Location,
		&job.Duration,
		&job.Description,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context) ([]domain.Job, error) {
	const query = `
        SELECT id, title, company, logo_url, category, location, duration, description, created_at, updated_at
        FROM jobs ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *jobRepository) ListByCategory(ctx context.Context, category string) ([]domain.Job, error) {
	const query = `
        SELECT id, title, company, logo_url, category, location, duration, description, created_at, updated_at
        FROM jobs WHERE category=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM jobs WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	var jobs []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Company,
			&job.LogoURL,
			&job.Category,
			&job.Location,
			&job.Duration,
			&job.Description,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
