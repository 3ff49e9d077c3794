package handlers

import (
	"net/http"

	"github.com/iamvtyagi/99acres/internal/config"
	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/services"
	jwtutil "github.com/iamvtyagi/99acres/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles registration, login and the caller's own profile.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// POST /api/auth/register
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), in)
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		respondError(w, r, err)
		return
	}
	h.sendToken(w, r, user, http.StatusCreated)
}

// POST /api/auth/login
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &credentials); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.sendToken(w, r, user, http.StatusOK)
}

// GET /api/auth/logout. Tokens are stateless; the client drops its copy.
func (h *UserHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GET /api/auth/me
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user.Public())
}

// PUT /api/auth/update-details
func (h *UserHandler) UpdateDetailsHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in services.UpdateDetailsInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.Service.UpdateDetails(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user.Public())
}

// PUT /api/auth/update-password
func (h *UserHandler) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.Service.UpdatePassword(r.Context(), userID, in.CurrentPassword, in.NewPassword)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.sendToken(w, r, user, http.StatusOK)
}

func (h *UserHandler) sendToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("Issued token")
	respondJSON(w, status, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}
