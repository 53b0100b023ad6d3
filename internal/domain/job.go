package domain

import "time"

// Job is the domain model for published job postings. LogoURL always
// points at the external image host, never at bytes stored locally.
type Job struct {
	ID          string
	Title       string
	Company     string
	LogoURL     string
	Category    string
	Location    string
	Duration    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
