package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/repository"
)

// mockWorkspaceRepo is an in-memory WorkspaceRepositoryInterface.
// Workspaces keeps list order as "most recently updated first" to mirror
// the real repository's ordering.
type mockWorkspaceRepo struct {
	workspaces      []models.Workspace
	setDefaultCalls []uuid.UUID
}

func (m *mockWorkspaceRepo) Create(ctx context.Context, ws *models.Workspace) error {
	m.workspaces = append([]models.Workspace{*ws}, m.workspaces...)
	return nil
}

func (m *mockWorkspaceRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error) {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id && m.workspaces[i].UserID == userID {
			ws := m.workspaces[i]
			return &ws, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockWorkspaceRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	out := []models.Workspace{}
	for _, ws := range m.workspaces {
		if ws.UserID == userID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (m *mockWorkspaceRepo) UpdateProfile(ctx context.Context, userID, id uuid.UUID, p profile.Profile) error {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id && m.workspaces[i].UserID == userID {
			m.workspaces[i].Profile = p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockWorkspaceRepo) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id && m.workspaces[i].UserID == userID {
			m.workspaces[i].Name = name
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockWorkspaceRepo) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	m.setDefaultCalls = append(m.setDefaultCalls, id)
	found := false
	for i := range m.workspaces {
		if m.workspaces[i].UserID == userID {
			m.workspaces[i].IsDefault = m.workspaces[i].ID == id
			if m.workspaces[i].ID == id {
				found = true
			}
		}
	}
	if !found {
		return repository.ErrNotFound
	}
	return nil
}

func (m *mockWorkspaceRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id && m.workspaces[i].UserID == userID {
			m.workspaces = append(m.workspaces[:i], m.workspaces[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// mockCampaignRepo is an in-memory CampaignRepositoryInterface
type mockCampaignRepo struct {
	campaigns map[uuid.UUID]models.Campaign
	createErr error
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{campaigns: map[uuid.UUID]models.Campaign{}}
}

func (m *mockCampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.campaigns[c.ID] = *c
	return nil
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok || c.WorkspaceID != workspaceID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *mockCampaignRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Campaign, error) {
	out := []models.Campaign{}
	for _, c := range m.campaigns {
		if c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	existing, ok := m.campaigns[c.ID]
	if !ok || existing.WorkspaceID != c.WorkspaceID {
		return repository.ErrNotFound
	}
	m.campaigns[c.ID] = *c
	return nil
}

func (m *mockCampaignRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	c, ok := m.campaigns[id]
	if !ok || c.WorkspaceID != workspaceID {
		return repository.ErrNotFound
	}
	delete(m.campaigns, id)
	return nil
}

// fakeGenerator implements ai.Generator with canned output
type fakeGenerator struct {
	lastEmailCount int
	lastName       string
	err            error
}

func (f *fakeGenerator) ExtractProfile(ctx context.Context, input, personalKey string) (profile.Profile, error) {
	p := profile.Empty()
	p.Brand.Name = "Fake Brand"
	return p, f.err
}

func (f *fakeGenerator) GenerateCampaign(ctx context.Context, p profile.Profile, name string, emailCount int, personalKey string) ([]models.Email, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastEmailCount = emailCount
	f.lastName = name
	emails := make([]models.Email, emailCount)
	for i := range emails {
		emails[i] = models.Email{Day: i * 2, Subject: "Subject", Body: "Body", Status: models.EmailStatusDraft}
	}
	return emails, nil
}

func contextProfile() profile.Profile {
	p := profile.Empty()
	p.Brand.Name = "Acme"
	p.Audience.Description = "busy founders"
	p.Offer.Description = "a subscription"
	return p
}

func TestResolveDefaultSingleDefault(t *testing.T) {
	userID := uuid.New()
	wsRepo := &mockWorkspaceRepo{workspaces: []models.Workspace{
		{ID: uuid.New(), UserID: userID, Name: "A"},
		{ID: uuid.New(), UserID: userID, Name: "B", IsDefault: true},
	}}
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: newMockCampaignRepo()}

	ws, err := svc.ResolveDefault(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "B", ws.Name)
	assert.Empty(t, wsRepo.setDefaultCalls, "a healthy default needs no repair")
}

func TestResolveDefaultRepairsDuplicates(t *testing.T) {
	userID := uuid.New()
	newest := models.Workspace{ID: uuid.New(), UserID: userID, Name: "Newest", IsDefault: true}
	older := models.Workspace{ID: uuid.New(), UserID: userID, Name: "Older", IsDefault: true}
	wsRepo := &mockWorkspaceRepo{workspaces: []models.Workspace{newest, older}}
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: newMockCampaignRepo()}

	ws, err := svc.ResolveDefault(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, ws.ID, "most recently updated default wins")
	require.Len(t, wsRepo.setDefaultCalls, 1)

	// The duplicate was cleared
	repaired, _ := wsRepo.ListByUser(context.Background(), userID)
	defaults := 0
	for _, w := range repaired {
		if w.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestResolveDefaultPromotesWhenNoDefault(t *testing.T) {
	userID := uuid.New()
	recent := models.Workspace{ID: uuid.New(), UserID: userID, Name: "Recent"}
	wsRepo := &mockWorkspaceRepo{workspaces: []models.Workspace{recent,
		{ID: uuid.New(), UserID: userID, Name: "Stale"}}}
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: newMockCampaignRepo()}

	ws, err := svc.ResolveDefault(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, recent.ID, ws.ID)
	assert.True(t, ws.IsDefault)
}

func TestResolveDefaultCreatesFirstWorkspace(t *testing.T) {
	userID := uuid.New()
	wsRepo := &mockWorkspaceRepo{}
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: newMockCampaignRepo()}

	ws, err := svc.ResolveDefault(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkspaceName, ws.Name)
	assert.True(t, ws.IsDefault)
	assert.True(t, ws.Profile.IsEmpty())
	require.Len(t, wsRepo.workspaces, 1)
}

func TestSwitchReplacesStateAtomically(t *testing.T) {
	userID := uuid.New()
	wsA := models.Workspace{ID: uuid.New(), UserID: userID, Name: "A", IsDefault: true}
	wsB := models.Workspace{ID: uuid.New(), UserID: userID, Name: "B"}
	wsRepo := &mockWorkspaceRepo{workspaces: []models.Workspace{wsA, wsB}}

	campRepo := newMockCampaignRepo()
	campA := models.Campaign{ID: uuid.New(), WorkspaceID: wsA.ID, Name: "A's campaign", Emails: []models.Email{}}
	campB := models.Campaign{ID: uuid.New(), WorkspaceID: wsB.ID, Name: "B's campaign", Emails: []models.Email{}}
	require.NoError(t, campRepo.Create(context.Background(), &campA))
	require.NoError(t, campRepo.Create(context.Background(), &campB))

	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: campRepo}

	ws, campaigns, err := svc.Switch(context.Background(), userID, wsB.ID)
	require.NoError(t, err)
	assert.Equal(t, wsB.ID, ws.ID)
	require.Len(t, campaigns, 1, "no residue from the previous workspace")
	assert.Equal(t, "B's campaign", campaigns[0].Name)

	// B is now the sole default
	got, err := svc.ResolveDefault(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, wsB.ID, got.ID)
}

func TestSwitchRejectsForeignWorkspace(t *testing.T) {
	userID := uuid.New()
	other := models.Workspace{ID: uuid.New(), UserID: uuid.New(), Name: "not yours"}
	wsRepo := &mockWorkspaceRepo{workspaces: []models.Workspace{other}}
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: newMockCampaignRepo()}

	_, _, err := svc.Switch(context.Background(), userID, other.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImportLocalRejectsEmptySnapshot(t *testing.T) {
	svc := &WorkspaceService{WorkspaceRepo: &mockWorkspaceRepo{}, CampaignRepo: newMockCampaignRepo()}

	_, err := svc.ImportLocal(context.Background(), uuid.New(), "", profile.Empty(), nil)
	assert.Error(t, err)
}

func TestImportLocalCreatesWorkspaceAndCampaigns(t *testing.T) {
	userID := uuid.New()
	wsRepo := &mockWorkspaceRepo{}
	campRepo := newMockCampaignRepo()
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: campRepo}

	imported := []ImportedCampaign{{
		Name:   "Local launch",
		Status: "READY",
		Emails: []models.Email{{Day: -2, Subject: "s", Body: "b", Status: "bogus"}},
	}}

	ws, err := svc.ImportLocal(context.Background(), userID, "", contextProfile(), imported)
	require.NoError(t, err)
	assert.Equal(t, "Imported workspace", ws.Name)
	assert.True(t, ws.IsDefault, "first workspace becomes the default")

	campaigns, err := campRepo.ListByWorkspace(context.Background(), ws.ID)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, models.EmailStatusReady, campaigns[0].Status)
	assert.Equal(t, 0, campaigns[0].Emails[0].Day, "negative day offsets are clamped")
	assert.Equal(t, models.EmailStatusDraft, campaigns[0].Emails[0].Status, "unknown statuses fall back to draft")
}

func TestImportLocalRollsBackOnFailure(t *testing.T) {
	userID := uuid.New()
	wsRepo := &mockWorkspaceRepo{}
	campRepo := newMockCampaignRepo()
	campRepo.createErr = errors.New("insert failed")
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: campRepo}

	imported := []ImportedCampaign{{Name: "Doomed", Emails: []models.Email{{Subject: "s"}}}}
	_, err := svc.ImportLocal(context.Background(), userID, "", contextProfile(), imported)
	require.Error(t, err)

	// No half-imported workspace is left behind
	remaining, listErr := wsRepo.ListByUser(context.Background(), userID)
	require.NoError(t, listErr)
	assert.Empty(t, remaining)
}

func TestImportLocalNeverStealsDefault(t *testing.T) {
	userID := uuid.New()
	existing := models.Workspace{ID: uuid.New(), UserID: userID, Name: "Existing", IsDefault: true}
	wsRepo := &mockWorkspaceRepo{workspaces: []models.Workspace{existing}}
	svc := &WorkspaceService{WorkspaceRepo: wsRepo, CampaignRepo: newMockCampaignRepo()}

	ws, err := svc.ImportLocal(context.Background(), userID, "From my laptop", contextProfile(), nil)
	require.NoError(t, err)
	assert.False(t, ws.IsDefault)

	resolved, err := svc.ResolveDefault(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resolved.ID)
}

func TestGenerateRequiresProfile(t *testing.T) {
	svc := &CampaignService{CampaignRepo: newMockCampaignRepo(), AI: &fakeGenerator{}}

	_, err := svc.Generate(context.Background(), profile.Empty(), "x", 5, "")
	assert.ErrorIs(t, err, ErrEmptyProfile)
}

func TestGenerateClampsEmailCountAndDefaultsName(t *testing.T) {
	gen := &fakeGenerator{}
	svc := &CampaignService{CampaignRepo: newMockCampaignRepo(), AI: gen}

	c, err := svc.Generate(context.Background(), contextProfile(), "  ", 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultEmailCount, gen.lastEmailCount)
	assert.Equal(t, "New sequence", c.Name)
	assert.Equal(t, models.EmailStatusDraft, c.Status)
	assert.Len(t, c.Emails, DefaultEmailCount)

	_, err = svc.Generate(context.Background(), contextProfile(), "Big", 50, "")
	require.NoError(t, err)
	assert.Equal(t, MaxEmailCount, gen.lastEmailCount)
}

func TestUpdateMergesFields(t *testing.T) {
	campRepo := newMockCampaignRepo()
	workspaceID := uuid.New()
	original := models.Campaign{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        "Original",
		Status:      models.EmailStatusDraft,
		Emails:      []models.Email{{Day: 0, Subject: "old", Body: "old", Status: models.EmailStatusDraft}},
	}
	require.NoError(t, campRepo.Create(context.Background(), &original))

	svc := &CampaignService{CampaignRepo: campRepo, AI: &fakeGenerator{}}

	updated, err := svc.Update(context.Background(), workspaceID, original.ID, "", models.EmailStatusReady, nil)
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Name, "blank name keeps the old one")
	assert.Equal(t, models.EmailStatusReady, updated.Status)
	assert.Len(t, updated.Emails, 1, "nil emails keep the stored list")

	newEmails := []models.Email{{Day: 1, Subject: "new", Body: "new"}}
	updated, err = svc.Update(context.Background(), workspaceID, original.ID, "Renamed", "", newEmails)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Emails, 1)
	assert.Equal(t, "new", updated.Emails[0].Subject)
}

func TestDeleteRemovesFromStore(t *testing.T) {
	campRepo := newMockCampaignRepo()
	workspaceID := uuid.New()
	c := models.Campaign{ID: uuid.New(), WorkspaceID: workspaceID, Name: "Doomed", Emails: []models.Email{}}
	require.NoError(t, campRepo.Create(context.Background(), &c))

	svc := &CampaignService{CampaignRepo: campRepo, AI: &fakeGenerator{}}

	require.NoError(t, svc.Delete(context.Background(), workspaceID, c.ID))

	_, err := campRepo.GetByID(context.Background(), workspaceID, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting again reports not found
	assert.ErrorIs(t, svc.Delete(context.Background(), workspaceID, c.ID), repository.ErrNotFound)
}
