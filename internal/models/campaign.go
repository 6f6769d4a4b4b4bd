package models

import (
	"time"

	"github.com/google/uuid"
)

// Email statuses
const (
	EmailStatusDraft = "draft"
	EmailStatusReady = "ready"
)

// Email is one message in a campaign sequence. Ordering is list position;
// day offsets are scheduling hints and need not be monotonic.
type Email struct {
	Day     int    `json:"day"`
	Subject string `json:"subject"`
	Preview string `json:"preview"`
	Body    string `json:"body"`
	Status  string `json:"status"` // draft | ready
}

// Campaign is a named, ordered sequence of emails
type Campaign struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	Status      string    `json:"status" db:"status"` // draft | ready
	Emails      []Email   `json:"emails" db:"emails"` // JSONB
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
