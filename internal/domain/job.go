package domain

import "time"

// JobType is the employment type of a posting.
type JobType string

const (
	JobFullTime   JobType = "full-time"
	JobInternship JobType = "internship"
	JobPartTime   JobType = "part-time"
)

// Job is a posting published by a recruiter.
type Job struct {
	ID             string    `json:"id" yaml:"id"`
	Title          string    `json:"title" yaml:"title"`
	Company        string    `json:"company" yaml:"company"`
	Location       string    `json:"location,omitempty" yaml:"location,omitempty"`
	Type           JobType   `json:"type" yaml:"type"`
	Deadline       time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	OrganizationID string    `json:"organizationId,omitempty" yaml:"organization_id,omitempty"`
}

// JobQuery filters and paginates the job listing.
type JobQuery struct {
	Page   int
	Limit  int
	Search string
	Type   JobType
}

// Application is a student's application to a job.
type Application struct {
	ID        string    `json:"id" yaml:"id"`
	JobID     string    `json:"jobId" yaml:"job_id"`
	Status    string    `json:"status" yaml:"status"`
	AppliedAt time.Time `json:"appliedAt" yaml:"applied_at"`
}

// PendingUser is an account awaiting TPO or admin approval.
type PendingUser struct {
	ID             string    `json:"id" yaml:"id"`
	FirstName      string    `json:"firstName" yaml:"first_name"`
	LastName       string    `json:"lastName" yaml:"last_name"`
	Email          string    `json:"email" yaml:"email"`
	Role           Role      `json:"role" yaml:"role"`
	OrganizationID string    `json:"organizationId,omitempty" yaml:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"createdAt" yaml:"created_at"`
}
