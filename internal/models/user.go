package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription plans and statuses
const (
	PlanAnonymous = "anonymous"
	PlanFree      = "free"
	PlanPro       = "pro"

	SubscriptionNone     = "none"
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// User represents an account in the system
type User struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	PasswordHash       string    `json:"-" db:"password_hash"` // Hidden from JSON responses
	Username           string    `json:"username" db:"username"`
	DisplayName        *string   `json:"display_name" db:"display_name"`
	AvatarURL          *string   `json:"avatar_url" db:"avatar_url"`
	GoogleID           *string   `json:"-" db:"google_id"`
	Plan               string    `json:"plan" db:"plan"`                               // free | pro
	SubscriptionStatus string    `json:"subscription_status" db:"subscription_status"` // none | active | canceled
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
