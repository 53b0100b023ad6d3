package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventUserDeleted            EventType = "user_deleted"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventJobCreated             EventType = "job_created"
	EventJobUpdated             EventType = "job_updated"
	EventJobDeleted             EventType = "job_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}

// PasswordResetRequestedPayload carries the one-time code for mail delivery.
// The code never appears in HTTP responses.
type PasswordResetRequestedPayload struct {
	Email     string `json:"email"`
	ResetCode string `json:"-"`
}

// PasswordResetCompletedPayload payload.
type PasswordResetCompletedPayload struct {
	Email string `json:"email"`
}

// JobPayload describes job lifecycle events.
type JobPayload struct {
	JobID    string `json:"job_id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Category string `json:"category"`
}
