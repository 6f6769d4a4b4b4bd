package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"MAILMUSE_BACK-END/internal/ai"
	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/logging"
	"MAILMUSE_BACK-END/internal/metrics"
	"MAILMUSE_BACK-END/internal/scrape"
	"MAILMUSE_BACK-END/internal/service"
	"MAILMUSE_BACK-END/internal/usage"
	"MAILMUSE_BACK-END/internal/utils"
)

// Input size caps for extraction
const (
	maxTextBytes = 200 * 1024      // pasted text
	maxFileBytes = 2 * 1024 * 1024 // uploaded document
)

// ContextHandler handles business profile extraction and saving
type ContextHandler struct {
	db         *pgxpool.Pool
	ai         ai.Generator
	scraper    *scrape.Scraper
	limiter    *usage.Limiter
	workspaces *service.WorkspaceService
	cfg        *config.Config
	logger     *zap.Logger
}

// NewContextHandler creates a new ContextHandler instance
func NewContextHandler(db *pgxpool.Pool, gen ai.Generator, scraper *scrape.Scraper, limiter *usage.Limiter, workspaces *service.WorkspaceService, cfg *config.Config, logger *zap.Logger) *ContextHandler {
	return &ContextHandler{
		db:         db,
		ai:         gen,
		scraper:    scraper,
		limiter:    limiter,
		workspaces: workspaces,
		cfg:        cfg,
		logger:     logger,
	}
}

// Extract derives a structured business profile from pasted text, an
// uploaded document, or a scraped URL
// @Summary Extract business profile
// @Description Derive a structured brand/audience/offer profile from pasted text, an uploaded document, or a website URL
// @Tags context
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body dto.ExtractRequest false "Text or URL input"
// @Success 200 {object} dto.ExtractResponse "Profile extracted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid or oversized input"
// @Failure 429 {object} dto.ErrorResponse "Monthly quota exhausted"
// @Failure 502 {object} dto.ErrorResponse "AI provider failure"
// @Router /api/context/extract [post]
func (h *ContextHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	input, source, ok := h.readExtractionInput(w, r)
	if !ok {
		return
	}

	who := identifyCaller(r)
	who.Plan = callerPlan(r.Context(), h.db, who)
	log := logging.WithCaller(h.logger, who.Key)
	personalKey, err := personalAIKey(r.Context(), h.db, r, who)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load API key", err.Error())
		return
	}

	// A personal key means the caller pays for the call themselves
	if personalKey == "" {
		if !enforceQuota(w, r, h.limiter, h.cfg, who) {
			metrics.ExtractionCount.WithLabelValues(source, "limited").Inc()
			return
		}
	}

	p, err := h.ai.ExtractProfile(r.Context(), input, personalKey)
	if err != nil {
		metrics.ExtractionCount.WithLabelValues(source, "error").Inc()
		log.Warn("extraction failed", zap.String("source", source), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Extraction failed", "Failed to analyze. Please try again.")
		return
	}
	metrics.ExtractionCount.WithLabelValues(source, "ok").Inc()

	if personalKey == "" {
		if err := h.limiter.Record(r.Context(), who.Key); err != nil {
			log.Warn("failed to record usage", zap.Error(err))
		}
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ExtractResponse{
		Profile: p,
		Source:  source,
	})
}

// readExtractionInput pulls the raw text out of the request, whichever of
// the three input modes was used. Writes the error response itself.
func (h *ContextHandler) readExtractionInput(w http.ResponseWriter, r *http.Request) (input, source string, ok bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.readUploadedFile(w, r)
	}

	var req dto.ExtractRequest
	// The reader cap leaves headroom over maxTextBytes so oversized text
	// still decodes and gets the explicit size error below
	if err := json.NewDecoder(io.LimitReader(r.Body, 2*maxTextBytes)).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return "", "", false
	}

	switch {
	case req.URL != "":
		text, err := h.scraper.FetchText(r.Context(), req.URL)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Failed to fetch URL", err.Error())
			return "", "", false
		}
		if strings.TrimSpace(text) == "" {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Empty page", "The URL returned no readable text")
			return "", "", false
		}
		return text, "url", true

	case req.Text != "":
		if len(req.Text) > maxTextBytes {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Input too large", "Pasted text must be under 200KB")
			return "", "", false
		}
		return req.Text, "text", true

	default:
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing input", "Provide text, a URL, or an uploaded file")
		return "", "", false
	}
}

func (h *ContextHandler) readUploadedFile(w http.ResponseWriter, r *http.Request) (input, source string, ok bool) {
	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid upload", err.Error())
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing file", "Upload a document in the 'file' field")
		return "", "", false
	}
	defer file.Close()

	if header.Size > maxFileBytes {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "File too large", "Uploaded documents must be under 2MB")
		return "", "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, maxFileBytes))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Failed to read file", err.Error())
		return "", "", false
	}

	text := string(data)
	if strings.HasSuffix(strings.ToLower(header.Filename), ".html") {
		if extracted, err := scrape.ExtractText(strings.NewReader(text)); err == nil {
			text = extracted
		}
	}
	if strings.TrimSpace(text) == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Empty file", "The uploaded document contains no readable text")
		return "", "", false
	}
	return text, "file", true
}

// SaveContext persists an extracted profile into a workspace
// @Summary Save business profile
// @Description Save the profile into the given workspace, or the default workspace when none is given
// @Tags context
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveContextRequest true "Profile to save"
// @Success 200 {object} dto.WorkspaceResponse "Profile saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Workspace not found"
// @Router /api/context [put]
func (h *ContextHandler) SaveContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	var req dto.SaveContextRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	var workspaceID uuid.UUID
	if req.WorkspaceID != "" {
		parsed, err := uuid.Parse(req.WorkspaceID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
			return
		}
		workspaceID = parsed
	} else {
		ws, err := h.workspaces.ResolveDefault(r.Context(), userID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to resolve workspace", err.Error())
			return
		}
		workspaceID = ws.ID
	}

	if err := h.workspaces.WorkspaceRepo.UpdateProfile(r.Context(), userID, workspaceID, req.Profile); err != nil {
		writeRepoError(w, err, "Workspace not found")
		return
	}

	ws, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), userID, workspaceID)
	if err != nil {
		writeRepoError(w, err, "Workspace not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.WorkspaceResponse{Workspace: *ws})
}
