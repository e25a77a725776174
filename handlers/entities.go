package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"lingotale/models"
	"lingotale/taste"
)

// TasteService is the preferences surface the entity handlers drive.
type TasteService interface {
	Search(ctx context.Context, query string) ([]models.EntitySummary, error)
	AddEntity(ctx context.Context, entityID string) (*models.Profile, error)
	Preferences(ctx context.Context) ([]models.EntityInfo, error)
}

type EntityHandlers struct {
	taste TasteService
}

func NewEntityHandlers(service TasteService) *EntityHandlers {
	return &EntityHandlers{taste: service}
}

// Search handles GET /api/entities.
func (h *EntityHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	results, err := h.taste.Search(r.Context(), query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("entity search failed")
		writeError(w, http.StatusInternalServerError, "Failed to search entities")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

type AddEntityRequest struct {
	ID string `json:"id"`
}

type AddEntityResponse struct {
	Message string          `json:"message"`
	Data    *models.Profile `json:"data,omitempty"`
}

// AddEntity handles POST /api/entity.
func (h *EntityHandlers) AddEntity(w http.ResponseWriter, r *http.Request) {
	var req AddEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "Invalid entity ID provided.")
		return
	}

	profile, err := h.taste.AddEntity(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, taste.ErrDuplicateEntity) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "The entity is already added"})
			return
		}
		log.Error().Err(err).Str("entity_id", req.ID).Msg("add entity failed")
		writeError(w, http.StatusInternalServerError, "Failed to add the entity to preferences")
		return
	}

	writeJSON(w, http.StatusCreated, AddEntityResponse{
		Message: "Entity successfully added to preferences!",
		Data:    profile,
	})
}

type PreferencesResponse struct {
	Items []models.EntityInfo `json:"items"`
	Count int                 `json:"count"`
}

// Preferences handles GET /api/preferences.
func (h *EntityHandlers) Preferences(w http.ResponseWriter, r *http.Request) {
	items, err := h.taste.Preferences(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("fetch preferences failed")
		writeError(w, http.StatusInternalServerError, "Failed to load preferences")
		return
	}

	writeJSON(w, http.StatusOK, PreferencesResponse{Items: items, Count: len(items)})
}
