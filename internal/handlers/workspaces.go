package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/service"
	"MAILMUSE_BACK-END/internal/utils"
)

// WorkspaceHandler handles workspace management routes
type WorkspaceHandler struct {
	workspaces *service.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler instance
func NewWorkspaceHandler(workspaces *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// Collection handles the workspace collection routes
// @Summary List or create workspaces
// @Description GET lists the user's workspaces; POST creates a new one
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.WorkspaceListResponse "Workspaces"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/workspaces [get]
func (h *WorkspaceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	switch r.Method {
	case http.MethodGet:
		workspaces, err := h.workspaces.WorkspaceRepo.ListByUser(r.Context(), userID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list workspaces", err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.WorkspaceListResponse{Workspaces: workspaces})

	case http.MethodPost:
		var req dto.CreateWorkspaceRequest
		if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing name", "Workspace name is required")
			return
		}

		ws := &models.Workspace{
			ID:      uuid.New(),
			UserID:  userID,
			Name:    strings.TrimSpace(req.Name),
			Profile: profile.Empty(),
		}
		if err := h.workspaces.WorkspaceRepo.Create(r.Context(), ws); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create workspace", err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusCreated, dto.WorkspaceResponse{Workspace: *ws})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Default resolves the user's default workspace, repairing duplicate or
// missing default flags on the way
// @Summary Get default workspace
// @Description Return the default workspace with its campaigns, creating one on first visit
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.WorkspaceStateResponse "Default workspace state"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/workspaces/default [get]
func (h *WorkspaceHandler) Default(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	ws, err := h.workspaces.ResolveDefault(r.Context(), userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to resolve workspace", err.Error())
		return
	}

	_, campaigns, err := h.workspaces.ActiveState(r.Context(), userID, ws.ID)
	if err != nil {
		writeRepoError(w, err, "Workspace not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.WorkspaceStateResponse{
		Workspace: *ws,
		Campaigns: campaigns,
	})
}

// Import turns an anonymous local-storage snapshot into a workspace
// @Summary Import local data
// @Description Create a workspace from the client's anonymous local-storage snapshot after sign-in
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ImportWorkspaceRequest true "Local snapshot"
// @Success 201 {object} dto.WorkspaceResponse "Workspace created"
// @Failure 400 {object} dto.ErrorResponse "Nothing to import"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/workspaces/import [post]
func (h *WorkspaceHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	var req dto.ImportWorkspaceRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	ws, err := h.workspaces.ImportLocal(r.Context(), userID, req.Name, req.Profile, req.Campaigns)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Import failed", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.WorkspaceResponse{Workspace: *ws})
}

// ByID handles single-workspace routes (/api/workspaces/{id} and
// /api/workspaces/{id}/switch)
// @Summary Get, rename, delete, or switch to a workspace
// @Description GET fetches with campaigns, PUT renames, DELETE removes, POST on /switch makes it the default
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workspace ID"
// @Success 200 {object} dto.WorkspaceStateResponse "Workspace state"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Workspace not found"
// @Router /api/workspaces/{id} [get]
func (h *WorkspaceHandler) ByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/workspaces/")
	idStr, action, _ := strings.Cut(rest, "/")
	workspaceID, err := uuid.Parse(idStr)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
		return
	}

	if action == "switch" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ws, campaigns, err := h.workspaces.Switch(r.Context(), userID, workspaceID)
		if err != nil {
			writeRepoError(w, err, "Workspace not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.WorkspaceStateResponse{
			Workspace: *ws,
			Campaigns: campaigns,
		})
		return
	}

	switch r.Method {
	case http.MethodGet:
		ws, campaigns, err := h.workspaces.ActiveState(r.Context(), userID, workspaceID)
		if err != nil {
			writeRepoError(w, err, "Workspace not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.WorkspaceStateResponse{
			Workspace: *ws,
			Campaigns: campaigns,
		})

	case http.MethodPut:
		var req dto.RenameWorkspaceRequest
		if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing name", "Workspace name is required")
			return
		}
		if err := h.workspaces.WorkspaceRepo.Rename(r.Context(), userID, workspaceID, strings.TrimSpace(req.Name)); err != nil {
			writeRepoError(w, err, "Workspace not found")
			return
		}
		ws, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), userID, workspaceID)
		if err != nil {
			writeRepoError(w, err, "Workspace not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.WorkspaceResponse{Workspace: *ws})

	case http.MethodDelete:
		if err := h.workspaces.WorkspaceRepo.Delete(r.Context(), userID, workspaceID); err != nil {
			writeRepoError(w, err, "Workspace not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Workspace deleted"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
