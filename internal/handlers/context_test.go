package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/usage"
)

// memoryCounter is an in-memory usage.CounterStore for handler tests
type memoryCounter struct {
	counts map[string]int64
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: map[string]int64{}}
}

func (m *memoryCounter) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryCounter) Get(ctx context.Context, key string) (int64, error) {
	return m.counts[key], nil
}

// stubGenerator implements ai.Generator with canned output
type stubGenerator struct {
	lastKey string
	err     error
}

func (s *stubGenerator) ExtractProfile(ctx context.Context, input, personalKey string) (profile.Profile, error) {
	s.lastKey = personalKey
	p := profile.Empty()
	p.Brand.Name = "Stub Brand"
	return p, s.err
}

func (s *stubGenerator) GenerateCampaign(ctx context.Context, p profile.Profile, name string, emailCount int, personalKey string) ([]models.Email, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Email{{Day: 0, Subject: "s", Body: "b", Status: models.EmailStatusDraft}}, nil
}

func limitsConfig() *config.Config {
	return &config.Config{Limits: config.LimitsConfig{
		AnonymousMonthly: 3,
		FreeMonthly:      10,
		ProMonthly:       500,
	}}
}

func newTestContextHandler(limiter *usage.Limiter) (*ContextHandler, *stubGenerator) {
	gen := &stubGenerator{}
	return &ContextHandler{
		ai:      gen,
		limiter: limiter,
		cfg:     limitsConfig(),
		logger:  zap.NewNop(),
	}, gen
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	body := map[string]string{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestExtractRejectsOversizedText(t *testing.T) {
	h, _ := newTestContextHandler(usage.NewLimiter(newMemoryCounter()))

	text := strings.Repeat("a", maxTextBytes+1024)
	payload, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/context/extract", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Input too large", errorBody(t, rec)["error"])
}

func TestExtractRejectsOversizedFile(t *testing.T) {
	h, _ := newTestContextHandler(usage.NewLimiter(newMemoryCounter()))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pitch.txt")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("b"), maxFileBytes+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/context/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large", errorBody(t, rec)["error"])
}

func TestExtractRejectsMissingInput(t *testing.T) {
	h, _ := newTestContextHandler(usage.NewLimiter(newMemoryCounter()))

	req := httptest.NewRequest(http.MethodPost, "/api/context/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing input", errorBody(t, rec)["error"])
}

func TestExtractReturnsLimitReachedContract(t *testing.T) {
	limiter := usage.NewLimiter(newMemoryCounter())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Record(ctx, "client:exhausted"))
	}
	h, gen := newTestContextHandler(limiter)

	req := httptest.NewRequest(http.MethodPost, "/api/context/extract", strings.NewReader(`{"text":"we sell lamps"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "exhausted")
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := errorBody(t, rec)
	assert.Equal(t, "limit_reached", body["error"])
	assert.Contains(t, body["message"], "API key")
	assert.Empty(t, gen.lastKey, "the model must not be called past the limit")
}

func TestExtractRecordsUsageOnSuccess(t *testing.T) {
	limiter := usage.NewLimiter(newMemoryCounter())
	h, _ := newTestContextHandler(limiter)

	req := httptest.NewRequest(http.MethodPost, "/api/context/extract", strings.NewReader(`{"text":"we sell lamps"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "fresh")
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	status, err := limiter.Check(context.Background(), "client:fresh", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Used)
}

func TestExtractPersonalKeySkipsQuota(t *testing.T) {
	limiter := usage.NewLimiter(newMemoryCounter())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Record(ctx, "client:payer"))
	}
	h, gen := newTestContextHandler(limiter)

	req := httptest.NewRequest(http.MethodPost, "/api/context/extract", strings.NewReader(`{"text":"we sell lamps"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "payer")
	req.Header.Set("X-AI-Key", "sk-own-key")
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sk-own-key", gen.lastKey)

	// The exhausted shared counter stays where it was
	status, err := limiter.Check(ctx, "client:payer", 3)
	assert.ErrorIs(t, err, usage.ErrLimitReached)
	assert.Equal(t, 3, status.Used)
}
