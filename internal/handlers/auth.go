package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lgramweb/lgram-web/internal/audit"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/models"
	"github.com/lgramweb/lgram-web/internal/request"
	"github.com/lgramweb/lgram-web/internal/session"
	"github.com/lgramweb/lgram-web/internal/validation"
)

// AuthHandler handles registration, login, logout and profile management
type AuthHandler struct {
	users         database.UserRepositoryInterface
	sessions      *session.Store
	audit         *audit.Log
	sessionTTL    time.Duration
	secureCookies bool
	logger        *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users database.UserRepositoryInterface,
	sessions *session.Store,
	auditLog *audit.Log,
	sessionTTL time.Duration,
	secureCookies bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:         users,
		sessions:      sessions,
		audit:         auditLog,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// RegisterRoutes registers auth routes on the given router
func (h *AuthHandler) RegisterRoutes(r *mux.Router, requireUser func(http.Handler) http.Handler) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.Handle("/logout", requireUser(http.HandlerFunc(h.Logout))).Methods("POST")
	r.Handle("/profile", requireUser(http.HandlerFunc(h.Profile))).Methods("GET")
	r.Handle("/profile", requireUser(http.HandlerFunc(h.UpdateProfile))).Methods("PATCH")
	r.Handle("/password", requireUser(http.HandlerFunc(h.ChangePassword))).Methods("POST")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// Register creates a new account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondJSONError(w, http.StatusBadRequest, "Validation Error", verrs.Error())
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "Invalid request")
		return
	}

	ctx := r.Context()

	if _, err := h.users.GetByUsername(ctx, req.Username); err == nil {
		respondJSONError(w, http.StatusConflict, "Conflict", "Username is already taken")
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		h.logger.Error("register_lookup_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("password_hash_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     validation.SanitizeText(req.Username),
		Email:        validation.SanitizeText(req.Email),
		PasswordHash: string(hash),
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.logger.Error("user_create_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	sessionKey, err := h.openSession(w, r, user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Account created but login failed")
		return
	}

	if _, err := h.audit.RecordActivity(ctx, user, sessionKey, models.ActionRegister,
		"New account registered", request.ClientIP(r), request.UserAgent(r), nil); err != nil {
		h.logger.Error("register_activity_failed", zap.Error(err))
	}
	if _, err := h.audit.RecordLoginAttempt(ctx, user, request.ClientIP(r), request.UserAgent(r), sessionKey, true); err != nil {
		h.logger.Error("login_record_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login authenticates an account and rotates the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "Username and password are required")
		return
	}

	ctx := r.Context()

	user, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid credentials")
			return
		}
		h.logger.Error("login_lookup_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Login failed")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		if _, err := h.audit.RecordLoginAttempt(ctx, user, request.ClientIP(r), request.UserAgent(r), request.SessionCookie(r), false); err != nil {
			h.logger.Error("login_record_failed", zap.Error(err))
		}
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid credentials")
		return
	}

	sessionKey, err := h.openSession(w, r, user)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Login failed")
		return
	}

	if _, err := h.audit.RecordLoginAttempt(ctx, user, request.ClientIP(r), request.UserAgent(r), sessionKey, true); err != nil {
		h.logger.Error("login_record_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, user)
}

// openSession rotates the browser session at authentication: a fresh session
// key replaces whatever cookie arrived, and the login binding is written under
// the new key only.
func (h *AuthHandler) openSession(w http.ResponseWriter, r *http.Request, user *models.User) (string, error) {
	ctx := r.Context()

	sessionKey, err := h.sessions.Create(ctx)
	if err != nil {
		h.logger.Error("session_create_failed", zap.Error(err))
		return "", err
	}
	if err := h.sessions.BindUser(ctx, sessionKey, user.ID); err != nil {
		h.logger.Error("session_bind_failed", zap.Error(err))
		return "", err
	}

	if old := request.SessionCookie(r); old != "" && old != sessionKey {
		if err := h.sessions.UnbindUser(ctx, old); err != nil {
			h.logger.Warn("session_unbind_failed", zap.Error(err))
		}
	}

	h.setSessionCookie(w, sessionKey, int(h.sessionTTL.Seconds()))
	return sessionKey, nil
}

// Logout stamps the open login entry and drops the login binding
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := request.UserFromContext(r)

	if err := h.audit.RecordLogout(ctx, user, request.ClientIP(r), request.UserAgent(r), request.SessionCookie(r)); err != nil {
		h.logger.Error("logout_record_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Logout failed")
		return
	}

	if cookie := request.SessionCookie(r); cookie != "" {
		if err := h.sessions.UnbindUser(ctx, cookie); err != nil {
			h.logger.Warn("session_unbind_failed", zap.Error(err))
		}
	}
	h.setSessionCookie(w, "", -1)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Profile returns the authenticated account
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, request.UserFromContext(r))
}

// UpdateProfile updates the mutable profile fields
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "A valid email is required")
		return
	}

	ctx := r.Context()
	user := request.UserFromContext(r)
	user.Email = validation.SanitizeText(req.Email)

	if err := h.users.UpdateProfile(ctx, user); err != nil {
		h.logger.Error("profile_update_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update profile")
		return
	}

	if _, err := h.audit.RecordActivity(ctx, user, request.IdentityKeyFromContext(r), models.ActionProfileUpdate,
		"Profile updated", request.ClientIP(r), request.UserAgent(r), nil); err != nil {
		h.logger.Error("profile_activity_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, user)
}

// ChangePassword replaces the account password after verifying the current one
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "Current and new passwords are required; new password must be at least 8 characters")
		return
	}

	ctx := r.Context()
	user := request.UserFromContext(r)

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("password_hash_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to change password")
		return
	}

	if err := h.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		h.logger.Error("password_update_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to change password")
		return
	}

	if _, err := h.audit.RecordActivity(ctx, user, request.IdentityKeyFromContext(r), models.ActionPasswordChange,
		"Password changed", request.ClientIP(r), request.UserAgent(r), nil); err != nil {
		h.logger.Error("password_activity_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     request.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
