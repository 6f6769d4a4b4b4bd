package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"MAILMUSE_BACK-END/internal/ai"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/repository"
)

// Email-count bounds for one generated sequence
const (
	DefaultEmailCount = 5
	MaxEmailCount     = 10
)

// ErrEmptyProfile is returned when generation is attempted before any
// business context exists
var ErrEmptyProfile = errors.New("profile is empty; extract a business profile first")

// CampaignService orchestrates generation and campaign mutations
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	AI           ai.Generator
}

// Generate produces a new campaign from the profile. The result is not
// persisted; anonymous callers keep it client-side, authenticated callers
// save it into a workspace via Save.
func (s *CampaignService) Generate(ctx context.Context, p profile.Profile, name string, emailCount int, personalKey string) (*models.Campaign, error) {
	if p.IsEmpty() {
		return nil, ErrEmptyProfile
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "New sequence"
	}
	if emailCount <= 0 {
		emailCount = DefaultEmailCount
	}
	if emailCount > MaxEmailCount {
		emailCount = MaxEmailCount
	}

	emails, err := s.AI.GenerateCampaign(ctx, p, name, emailCount, personalKey)
	if err != nil {
		return nil, err
	}

	return &models.Campaign{
		ID:     uuid.New(),
		Name:   name,
		Status: models.EmailStatusDraft,
		Emails: emails,
	}, nil
}

// Save persists a campaign into a workspace
func (s *CampaignService) Save(ctx context.Context, workspaceID uuid.UUID, c *models.Campaign) error {
	c.WorkspaceID = workspaceID
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Status = normalizeCampaignStatus(c.Status)
	c.Emails = normalizeEmails(c.Emails)
	return s.CampaignRepo.Create(ctx, c)
}

// Update applies a client edit to a stored campaign (last write wins)
func (s *CampaignService) Update(ctx context.Context, workspaceID, id uuid.UUID, name, status string, emails []models.Email) (*models.Campaign, error) {
	existing, err := s.CampaignRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		existing.Name = name
	}
	if status != "" {
		existing.Status = normalizeCampaignStatus(status)
	}
	if emails != nil {
		existing.Emails = normalizeEmails(emails)
	}

	if err := s.CampaignRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a campaign from the backing store
func (s *CampaignService) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.CampaignRepo.Delete(ctx, workspaceID, id)
}

// normalizeCampaignStatus restricts status to the known vocabulary
func normalizeCampaignStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.EmailStatusReady:
		return models.EmailStatusReady
	default:
		return models.EmailStatusDraft
	}
}

// normalizeEmails fills field defaults so stored lists always validate
func normalizeEmails(emails []models.Email) []models.Email {
	if emails == nil {
		return []models.Email{}
	}
	out := make([]models.Email, 0, len(emails))
	for _, e := range emails {
		if e.Day < 0 {
			e.Day = 0
		}
		e.Status = normalizeCampaignStatus(e.Status)
		out = append(out, e)
	}
	return out
}
