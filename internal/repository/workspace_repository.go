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
	"MAILMUSE_BACK-END/internal/profile"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting user
var ErrNotFound = errors.New("not found")

// WorkspaceRepositoryInterface is the persistence surface for workspaces
type WorkspaceRepositoryInterface interface {
	Create(ctx context.Context, ws *models.Workspace) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error)
	UpdateProfile(ctx context.Context, userID, id uuid.UUID, p profile.Profile) error
	Rename(ctx context.Context, userID, id uuid.UUID, name string) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// WorkspaceRepository implements WorkspaceRepositoryInterface over Postgres
type WorkspaceRepository struct {
	DB *pgxpool.Pool
}

const workspaceColumns = `id, user_id, name, is_default, profile, created_at, updated_at`

func scanWorkspace(row pgx.Row) (*models.Workspace, error) {
	var ws models.Workspace
	var profileJSON []byte
	err := row.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.IsDefault, &profileJSON, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ws.Profile = profile.Empty()
	if len(profileJSON) > 0 {
		// Stored profiles may predate the current schema; normalize on read
		var raw map[string]interface{}
		if err := json.Unmarshal(profileJSON, &raw); err == nil {
			ws.Profile = profile.Normalize(raw)
		}
	}
	return &ws, nil
}

// Create inserts a workspace
func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	profileJSON, err := json.Marshal(ws.Profile)
	if err != nil {
		return err
	}

	now := time.Now()
	ws.CreatedAt = now
	ws.UpdatedAt = now

	_, err = r.DB.Exec(ctx,
		`INSERT INTO workspaces (id, user_id, name, is_default, profile, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ws.ID, ws.UserID, ws.Name, ws.IsDefault, profileJSON, ws.CreatedAt, ws.UpdatedAt)
	return err
}

// GetByID fetches one workspace owned by the user
func (r *WorkspaceRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1 AND user_id = $2`,
		id, userID)
	return scanWorkspace(row)
}

// ListByUser returns the user's workspaces, most recently updated first
func (r *WorkspaceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workspaces := []models.Workspace{}
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, *ws)
	}
	return workspaces, rows.Err()
}

// UpdateProfile replaces the workspace's profile document (last write wins)
func (r *WorkspaceRepository) UpdateProfile(ctx context.Context, userID, id uuid.UUID, p profile.Profile) error {
	profileJSON, err := json.Marshal(p)
	if err != nil {
		return err
	}

	tag, err := r.DB.Exec(ctx,
		`UPDATE workspaces SET profile = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		profileJSON, time.Now(), id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Rename updates the workspace name
func (r *WorkspaceRepository) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE workspaces SET name = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		name, time.Now(), id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault marks exactly one workspace as the user's default. The single
// statement also clears any duplicate defaults the data may have
// accumulated.
func (r *WorkspaceRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE workspaces SET is_default = (id = $1) WHERE user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a workspace; campaigns cascade via the schema
func (r *WorkspaceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM workspaces WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
