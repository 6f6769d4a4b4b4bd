package dto

import "MAILMUSE_BACK-END/internal/models"

// ExportRequest represents the request payload for exporting a campaign.
// Anonymous callers pass the campaign inline; authenticated callers may
// pass workspace and campaign IDs to export a stored one.
type ExportRequest struct {
	Format      string         `json:"format"`
	Name        string         `json:"name,omitempty"`
	Emails      []models.Email `json:"emails,omitempty"`
	WorkspaceID string         `json:"workspace_id,omitempty"`
	CampaignID  string         `json:"campaign_id,omitempty"`
}
