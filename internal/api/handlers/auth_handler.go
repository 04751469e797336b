package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/pkg/errors"
	"alertgate/internal/platform/auth"
	"alertgate/internal/platform/models"
	"alertgate/internal/platform/repositories"
)

// API keys look like "agk_<32 hex>"; the first keyPrefixLen characters
// are stored in clear for lookup, the full key only as a bcrypt hash.
const keyPrefixLen = 12

type AuthHandler struct {
	keys     *repositories.APIKeyRepository
	tokenSvc *auth.TokenService
}

func NewAuthHandler(keys *repositories.APIKeyRepository, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{keys: keys, tokenSvc: tokenSvc}
}

// Token handles POST /api/v1/auth/token: exchanges an API key for a
// short-lived access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.APIKey) < keyPrefixLen {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "api_key is required", nil)
		return
	}

	candidates, err := h.keys.GetByPrefix(req.APIKey[:keyPrefixLen])
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to look up API key", nil)
		return
	}

	var key *models.APIKey
	for _, candidate := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidate.KeyHash), []byte(req.APIKey)) == nil {
			key = candidate
			break
		}
	}
	if key == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
		return
	}
	if key.ExpiresAt != nil && *key.ExpiresAt < time.Now().Unix() {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "API key has expired", nil)
		return
	}

	token, err := h.tokenSvc.GenerateAccessToken(key.ID, key.Name, key.Role)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	h.keys.TouchLastUsed(key.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}{AccessToken: token, TokenType: "Bearer"})
}

// CreateKey handles POST /api/v1/auth/keys. The raw key appears only in
// this response.
func (h *AuthHandler) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "name is required", nil)
		return
	}

	rawKey := "agk_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash key", nil)
		return
	}

	key := &models.APIKey{
		Name:      req.Name,
		Role:      req.Role,
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:keyPrefixLen],
	}
	if err := h.keys.Create(key); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create key", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		*models.APIKey
		Key string `json:"key"`
	}{APIKey: key, Key: rawKey})
}

// RevokeKey handles DELETE /api/v1/auth/keys/:key_id.
func (h *AuthHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("key_id")

	if err := h.keys.Revoke(id); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to revoke key", nil)
		return
	}

	w.WriteHeader(http.StatusOK)
}
