package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/brandpulse/brandpulse/internal/api/middleware"
	"github.com/brandpulse/brandpulse/internal/api/response"
	"github.com/brandpulse/brandpulse/internal/store"
	"github.com/brandpulse/brandpulse/pkg/models"
)

// KeyHandlers serves API key provisioning. Admin scope required at the route
// level.
type KeyHandlers struct {
	store store.Store
}

func NewKeyHandlers(st store.Store) *KeyHandlers {
	return &KeyHandlers{store: st}
}

// Create mints a new API key. The raw key is returned exactly once; only the
// bcrypt hash is stored.
func (h *KeyHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	var req struct {
		Name   string   `json:"name"`
		Scopes []string `json:"scopes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
		return
	}
	if len(req.Scopes) == 0 {
		req.Scopes = []string{"read", "write"}
	}

	rawKey, err := generateRawKey()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate key", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash key", nil)
		return
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:8],
		Scopes:    req.Scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateAPIKey(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			response.Error(w, http.StatusConflict, "DUPLICATE_KEY", "A key with this name already exists", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create key", nil)
		return
	}

	response.Created(w, map[string]any{
		"id":         key.ID,
		"name":       key.Name,
		"key":        rawKey,
		"key_prefix": key.KeyPrefix,
		"scopes":     key.Scopes,
		"created_at": key.CreatedAt,
	})
}

func generateRawKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("bp_%s", hex.EncodeToString(buf)), nil
}
