package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// WorkerApplication is a citizen's request to become a collection worker.
// Approval promotes the applicant's role to worker.
type WorkerApplication struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	Experience   string            `json:"experience"`
	Availability string            `json:"availability"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
}
