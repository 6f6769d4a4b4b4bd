package dto

import "MAILMUSE_BACK-END/internal/profile"

// ExtractRequest represents the request payload for profile extraction.
// Exactly one of Text or URL should be set; file uploads arrive as
// multipart form data instead of this body.
type ExtractRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ExtractResponse represents the extracted business profile
type ExtractResponse struct {
	Profile profile.Profile `json:"profile"`
	Source  string          `json:"source"`
}

// SaveContextRequest represents the request payload for saving a profile
// into a workspace
type SaveContextRequest struct {
	WorkspaceID string          `json:"workspace_id,omitempty"`
	Profile     profile.Profile `json:"profile"`
}
