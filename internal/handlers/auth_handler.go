package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/NewMtnGoat/new-status/internal/config"
	"github.com/NewMtnGoat/new-status/internal/services"
	jwtutil "github.com/NewMtnGoat/new-status/pkg/jwt"
	"github.com/NewMtnGoat/new-status/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler issues session tokens. Identity is anonymous or
// custom-token based; there are no passwords in this system.
type AuthHandler struct {
	Service *services.ProfileService
	Config  *config.Config
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(service *services.ProfileService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Service: service,
		Config:  cfg,
	}
}

type authResponse struct {
	Token   string      `json:"token"`
	UserID  string      `json:"user_id"`
	Profile interface{} `json:"profile"`
}

// AnonymousSignInHandler mints a fresh anonymous identity, creates its
// profile document and returns a session token.
func (h *AuthHandler) AnonymousSignInHandler(w http.ResponseWriter, r *http.Request) {
	userID := primitive.NewObjectID().Hex()

	profile, err := h.Service.EnsureProfile(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to create anonymous profile: %v", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	token, err := jwtutil.GenerateToken(userID, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		logger.Log.Errorf("Failed to generate session token: %v", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	logger.Log.WithField("userID", userID).Info("Anonymous sign-in")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResponse{Token: token, UserID: userID, Profile: profile})
}

// TokenSignInHandler exchanges a pre-issued custom token for a session
// token, creating the profile on first sign-in if it does not exist yet.
func (h *AuthHandler) TokenSignInHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	claims, err := jwtutil.ValidateToken(body.Token, h.Config.JWTSecret)
	if err != nil {
		logger.Log.Warnf("Custom token sign-in rejected: %v", err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	profile, err := h.Service.EnsureProfile(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to ensure profile for %s: %v", claims.UserID, err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	token, err := jwtutil.GenerateToken(claims.UserID, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		logger.Log.Errorf("Failed to generate session token: %v", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	logger.Log.WithField("userID", claims.UserID).Info("Custom token sign-in")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResponse{Token: token, UserID: claims.UserID, Profile: profile})
}
