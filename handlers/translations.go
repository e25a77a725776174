package handlers

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"lingotale/story"
)

type TranslateRequest struct {
	StoryID      string `json:"storyId"`
	SegmentIndex *int   `json:"segmentIndex"`
	Segment      string `json:"segment"`
}

type TranslateResponse struct {
	Translation string `json:"translation"`
}

// Translate handles POST /api/translations.
func (h *StoryHandlers) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if strings.TrimSpace(req.StoryID) == "" || req.SegmentIndex == nil || strings.TrimSpace(req.Segment) == "" {
		writeError(w, http.StatusBadRequest, "storyId, segmentIndex and segment are required")
		return
	}

	text, err := h.stories.TranslateSegment(r.Context(), req.StoryID, *req.SegmentIndex, req.Segment)
	if err != nil {
		if errors.Is(err, story.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Story not found")
			return
		}
		log.Error().Err(err).Str("story_id", req.StoryID).Msg("translate segment failed")
		writeError(w, http.StatusInternalServerError, "Failed to translate the segment")
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{Translation: text})
}
