package utils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a private type for request context keys
type contextKey string

const (
	// UserIDKey is the context key holding the authenticated user's ID
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key holding the authenticated user's email
	EmailKey contextKey = "email"
	// PlanKey is the context key holding the caller's subscription plan
	PlanKey contextKey = "plan"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a standard error payload
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, detail string) {
	WriteJSONResponse(w, status, errorResponse{Error: errMsg, Message: detail})
}

// DecodeJSONRequest decodes the request body into dst and writes a 400 on failure.
// Returns a non-nil error when the response has already been written.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return err
	}
	return nil
}

// WithUser returns a context carrying the authenticated user's identity
func WithUser(ctx context.Context, userID uuid.UUID, email, plan string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, EmailKey, email)
	return context.WithValue(ctx, PlanKey, plan)
}

// GetUserIDFromContext extracts the authenticated user id from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// GetEmailFromContext extracts the authenticated user's email from the request context
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// GetPlanFromContext extracts the caller's plan; anonymous callers have none
func GetPlanFromContext(ctx context.Context) (string, bool) {
	plan, ok := ctx.Value(PlanKey).(string)
	return plan, ok
}
