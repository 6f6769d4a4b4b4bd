package dto

// SetAPIKeyRequest represents the request payload for storing a personal
// AI provider key. Calls made with a personal key bypass the monthly
// quota.
type SetAPIKeyRequest struct {
	Key string `json:"key" validate:"required"`
}

// APIKeyStatusResponse reports whether a personal key is on file; the key
// itself is never echoed back
type APIKeyStatusResponse struct {
	Configured bool `json:"configured"`
}
