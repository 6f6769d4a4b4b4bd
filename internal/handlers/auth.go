package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/middleware"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/utils"
)

const userColumns = `id, email, username, display_name, avatar_url, plan, subscription_status, created_at, updated_at`

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	db  *pgxpool.Pool
	cfg *config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(db *pgxpool.Pool, cfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

func userToResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 user.ID.String(),
		Email:              user.Email,
		Username:           user.Username,
		DisplayName:        user.DisplayName,
		AvatarURL:          user.AvatarURL,
		Plan:               user.Plan,
		SubscriptionStatus: user.SubscriptionStatus,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          user.UpdatedAt.Format(time.RFC3339),
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with username, email, and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.RegisterRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	// Validate required fields
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Username, email, and password are required")
		return
	}

	// Check if user already exists
	var existingUserID uuid.UUID
	err := h.db.QueryRow(context.Background(),
		"SELECT id FROM users WHERE email = $1 OR username = $2",
		req.Email, req.Username).Scan(&existingUserID)

	if err == nil {
		utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username already registered")
		return
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	// Create user on the free plan
	userID := uuid.New()
	now := time.Now()

	_, err = h.db.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash, username, display_name,
		 plan, subscription_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID, req.Email, string(hashedPassword), req.Username, req.DisplayName,
		models.PlanFree, models.SubscriptionNone, now, now)

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create user", err.Error())
		return
	}

	// Generate JWT token
	token, err := middleware.GenerateToken(userID, req.Email, models.PlanFree, h.cfg)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	user := models.User{
		ID:                 userID,
		Email:              req.Email,
		Username:           req.Username,
		DisplayName:        req.DisplayName,
		Plan:               models.PlanFree,
		SubscriptionStatus: models.SubscriptionNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	response := dto.AuthResponse{
		User:  userToResponse(&user),
		Token: token,
	}

	utils.WriteJSONResponse(w, http.StatusCreated, response)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	// Validate required fields
	if req.Email == "" || req.Password == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Email and password are required")
		return
	}

	// Get user from database
	var user models.User
	err := h.db.QueryRow(context.Background(),
		`SELECT id, email, password_hash, username, display_name, avatar_url,
		 plan, subscription_status, created_at, updated_at FROM users WHERE email = $1`,
		req.Email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username,
		&user.DisplayName, &user.AvatarURL, &user.Plan, &user.SubscriptionStatus,
		&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	// Verify password
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	// Generate JWT token
	token, err := middleware.GenerateToken(user.ID, user.Email, user.Plan, h.cfg)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	response := dto.AuthResponse{
		User:  userToResponse(&user),
		Token: token,
	}

	utils.WriteJSONResponse(w, http.StatusOK, response)
}

// GetProfile returns the current user's account
// @Summary Get user account
// @Description Get the current authenticated user's account information
// @Tags authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse "User account retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		h.updateProfile(w, r)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	var user models.User
	err := h.db.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Email, &user.Username, &user.DisplayName,
		&user.AvatarURL, &user.Plan, &user.SubscriptionStatus, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, userToResponse(&user))
}

// updateProfile applies partial account edits
// @Summary Update user account
// @Description Update the authenticated user's username, display name, or avatar
// @Tags authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse "User account updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/profile [put]
func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	_, err := h.db.Exec(context.Background(),
		`UPDATE users SET
		 username = COALESCE($1, username),
		 display_name = COALESCE($2, display_name),
		 avatar_url = COALESCE($3, avatar_url),
		 updated_at = $4
		 WHERE id = $5`,
		req.Username, req.DisplayName, req.AvatarURL, time.Now(), userID)

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update user", err.Error())
		return
	}

	var user models.User
	err = h.db.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Email, &user.Username, &user.DisplayName,
		&user.AvatarURL, &user.Plan, &user.SubscriptionStatus, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load user", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, userToResponse(&user))
}
