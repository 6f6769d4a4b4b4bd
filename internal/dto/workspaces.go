package dto

import (
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/service"
)

// CreateWorkspaceRequest represents the request payload for creating a
// workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// RenameWorkspaceRequest represents the request payload for renaming a
// workspace
type RenameWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	Workspace models.Workspace `json:"workspace"`
}

// WorkspaceListResponse represents the user's workspaces in API responses
type WorkspaceListResponse struct {
	Workspaces []models.Workspace `json:"workspaces"`
}

// WorkspaceStateResponse represents a workspace with its campaigns, used
// when switching the active workspace so the client swaps its view in one
// shot
type WorkspaceStateResponse struct {
	Workspace models.Workspace  `json:"workspace"`
	Campaigns []models.Campaign `json:"campaigns"`
}

// ImportWorkspaceRequest represents an anonymous local-storage snapshot
// posted after sign-in
type ImportWorkspaceRequest struct {
	Name      string                     `json:"name,omitempty"`
	Profile   profile.Profile            `json:"profile"`
	Campaigns []service.ImportedCampaign `json:"campaigns,omitempty"`
}
