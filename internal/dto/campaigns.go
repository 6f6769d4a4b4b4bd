package dto

import (
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
)

// GenerateCampaignRequest represents the request payload for campaign
// generation. Anonymous callers pass the profile inline; authenticated
// callers may pass a workspace ID instead to use the stored profile and
// persist the result.
type GenerateCampaignRequest struct {
	Name        string           `json:"name,omitempty"`
	EmailCount  int              `json:"email_count,omitempty"`
	Profile     *profile.Profile `json:"profile,omitempty"`
	WorkspaceID string           `json:"workspace_id,omitempty"`
}

// SaveCampaignRequest represents the request payload for persisting a
// client-side campaign into a workspace
type SaveCampaignRequest struct {
	WorkspaceID string         `json:"workspace_id"`
	Name        string         `json:"name"`
	Status      string         `json:"status,omitempty"`
	Emails      []models.Email `json:"emails"`
}

// UpdateCampaignRequest represents the request payload for campaign edits.
// Omitted fields keep their stored values.
type UpdateCampaignRequest struct {
	Name   string         `json:"name,omitempty"`
	Status string         `json:"status,omitempty"`
	Emails []models.Email `json:"emails,omitempty"`
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	Campaign models.Campaign `json:"campaign"`
}

// CampaignListResponse represents a list of campaigns in API responses
type CampaignListResponse struct {
	Campaigns []models.Campaign `json:"campaigns"`
}
