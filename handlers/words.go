package handlers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"lingotale/story"
	"lingotale/vocab"
)

// Words handles GET /api/words.
func (h *StoryHandlers) Words(w http.ResponseWriter, r *http.Request) {
	pool, err := h.stories.Words(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("fetch words failed")
		writeError(w, http.StatusInternalServerError, "Failed to load the word pool")
		return
	}

	writeJSON(w, http.StatusOK, pool)
}

type SelectedWord struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type MoveWordsRequest struct {
	SelectedWords []SelectedWord `json:"selectedWords"`
	Target        string         `json:"target"`
}

// MoveWords handles POST /api/words.
func (h *StoryHandlers) MoveWords(w http.ResponseWriter, r *http.Request) {
	var req MoveWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if len(req.SelectedWords) == 0 {
		writeError(w, http.StatusBadRequest, "No words selected")
		return
	}

	words := make([]string, 0, len(req.SelectedWords))
	for _, sw := range req.SelectedWords {
		words = append(words, sw.Value)
	}

	err := h.stories.MoveWords(r.Context(), words, req.Target)
	if err != nil {
		switch {
		case errors.Is(err, vocab.ErrInvalidTier):
			writeError(w, http.StatusBadRequest, "Invalid target tier")
		case errors.Is(err, story.ErrNoPool):
			writeError(w, http.StatusNotFound, "The word pool does not exist yet")
		default:
			log.Error().Err(err).Str("target", req.Target).Msg("move words failed")
			writeError(w, http.StatusInternalServerError, "Failed to update the word pool")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Words successfully updated"})
}
