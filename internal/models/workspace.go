package models

import (
	"time"

	"github.com/google/uuid"

	"MAILMUSE_BACK-END/internal/profile"
)

// Workspace pairs one business profile with its campaigns for a user
type Workspace struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Name      string          `json:"name" db:"name"`
	IsDefault bool            `json:"is_default" db:"is_default"`
	Profile   profile.Profile `json:"profile" db:"profile"` // JSONB
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
