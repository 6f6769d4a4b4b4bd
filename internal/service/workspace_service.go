package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/repository"
)

// DefaultWorkspaceName is used when a workspace has to be created implicitly
const DefaultWorkspaceName = "My workspace"

// WorkspaceService owns the workspace reconciliation flows: resolving and
// repairing the default workspace, switching the active workspace, and
// importing anonymous local state after sign-in.
type WorkspaceService struct {
	WorkspaceRepo repository.WorkspaceRepositoryInterface
	CampaignRepo  repository.CampaignRepositoryInterface
}

// ResolveDefault returns the user's default workspace. The data is allowed
// to drift (zero or several defaults); this pass repairs it: the most
// recently updated default wins, duplicates are cleared, and a user with no
// workspaces gets one created.
func (s *WorkspaceService) ResolveDefault(ctx context.Context, userID uuid.UUID) (*models.Workspace, error) {
	workspaces, err := s.WorkspaceRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// ListByUser orders by updated_at DESC, so the first default seen is the
	// most recently updated one
	var keep *models.Workspace
	defaults := 0
	for i := range workspaces {
		if workspaces[i].IsDefault {
			defaults++
			if keep == nil {
				keep = &workspaces[i]
			}
		}
	}

	switch {
	case defaults == 1:
		return keep, nil
	case defaults > 1:
		// Repair duplicate defaults in one pass
		if err := s.WorkspaceRepo.SetDefault(ctx, userID, keep.ID); err != nil {
			return nil, err
		}
		return keep, nil
	case len(workspaces) > 0:
		// No default; promote the most recently updated workspace
		promoted := &workspaces[0]
		if err := s.WorkspaceRepo.SetDefault(ctx, userID, promoted.ID); err != nil {
			return nil, err
		}
		promoted.IsDefault = true
		return promoted, nil
	}

	// First visit: create the default workspace
	ws := &models.Workspace{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      DefaultWorkspaceName,
		IsDefault: true,
		Profile:   profile.Empty(),
	}
	if err := s.WorkspaceRepo.Create(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// ActiveState loads a workspace together with its campaigns so the client
// can swap its whole view in one shot, with no residue from the previous
// workspace.
func (s *WorkspaceService) ActiveState(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Workspace, []models.Campaign, error) {
	ws, err := s.WorkspaceRepo.GetByID(ctx, userID, workspaceID)
	if err != nil {
		return nil, nil, err
	}
	campaigns, err := s.CampaignRepo.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		return nil, nil, err
	}
	return ws, campaigns, nil
}

// Switch makes the given workspace the default and returns its full state
func (s *WorkspaceService) Switch(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Workspace, []models.Campaign, error) {
	// Verify ownership before flipping flags
	if _, err := s.WorkspaceRepo.GetByID(ctx, userID, workspaceID); err != nil {
		return nil, nil, err
	}
	if err := s.WorkspaceRepo.SetDefault(ctx, userID, workspaceID); err != nil {
		return nil, nil, err
	}
	return s.ActiveState(ctx, userID, workspaceID)
}

// ImportedCampaign is one locally-stored campaign posted at import time
type ImportedCampaign struct {
	Name   string         `json:"name"`
	Status string         `json:"status"`
	Emails []models.Email `json:"emails"`
}

// ImportLocal turns an anonymous local-storage snapshot into a workspace
// after sign-in. It never touches existing workspaces; an empty snapshot is
// rejected so sign-in alone doesn't spawn junk workspaces.
func (s *WorkspaceService) ImportLocal(ctx context.Context, userID uuid.UUID, name string, p profile.Profile, campaigns []ImportedCampaign) (*models.Workspace, error) {
	if p.IsEmpty() && len(campaigns) == 0 {
		return nil, fmt.Errorf("nothing to import")
	}
	if name == "" {
		name = "Imported workspace"
	}

	existing, err := s.WorkspaceRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ws := &models.Workspace{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		// Only becomes the default when the user had nothing yet
		IsDefault: len(existing) == 0,
		Profile:   p,
	}
	if err := s.WorkspaceRepo.Create(ctx, ws); err != nil {
		return nil, err
	}

	for _, imported := range campaigns {
		campaign := &models.Campaign{
			ID:          uuid.New(),
			WorkspaceID: ws.ID,
			Name:        imported.Name,
			Status:      normalizeCampaignStatus(imported.Status),
			Emails:      normalizeEmails(imported.Emails),
		}
		if campaign.Name == "" {
			campaign.Name = "Imported campaign"
		}
		if err := s.CampaignRepo.Create(ctx, campaign); err != nil {
			// Remove the half-imported workspace; the cascade takes any
			// campaigns already written with it. The client keeps its local
			// snapshot and can retry the import whole.
			if delErr := s.WorkspaceRepo.Delete(ctx, userID, ws.ID); delErr != nil {
				return nil, fmt.Errorf("import failed: %v (workspace cleanup also failed: %v)", err, delErr)
			}
			return nil, fmt.Errorf("import failed: %w", err)
		}
	}

	return ws, nil
}
