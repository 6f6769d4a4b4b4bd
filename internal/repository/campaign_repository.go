package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"MAILMUSE_BACK-END/internal/models"
)

// CampaignRepositoryInterface is the persistence surface for campaigns
type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Campaign, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
}

// CampaignRepository implements CampaignRepositoryInterface over Postgres
type CampaignRepository struct {
	DB *pgxpool.Pool
}

const campaignColumns = `id, workspace_id, name, status, emails, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	var emailsJSON []byte
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Status, &emailsJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c.Emails = []models.Email{}
	if len(emailsJSON) > 0 {
		if err := json.Unmarshal(emailsJSON, &c.Emails); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// Create inserts a campaign
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	emailsJSON, err := json.Marshal(c.Emails)
	if err != nil {
		return err
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = r.DB.Exec(ctx,
		`INSERT INTO campaigns (id, workspace_id, name, status, emails, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.WorkspaceID, c.Name, c.Status, emailsJSON, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetByID fetches one campaign within a workspace
func (r *CampaignRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Campaign, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 AND workspace_id = $2`,
		id, workspaceID)
	return scanCampaign(row)
}

// ListByWorkspace returns the workspace's campaigns, newest first
func (r *CampaignRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Campaign, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE workspace_id = $1 ORDER BY created_at DESC`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// Update replaces the campaign's name, status, and email list.
// Concurrent edits are last-write-wins.
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	emailsJSON, err := json.Marshal(c.Emails)
	if err != nil {
		return err
	}

	c.UpdatedAt = time.Now()
	tag, err := r.DB.Exec(ctx,
		`UPDATE campaigns SET name = $1, status = $2, emails = $3, updated_at = $4
		 WHERE id = $5 AND workspace_id = $6`,
		c.Name, c.Status, emailsJSON, c.UpdatedAt, c.ID, c.WorkspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a campaign
func (r *CampaignRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM campaigns WHERE id = $1 AND workspace_id = $2`,
		id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
