package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"lingotale/models"
	"lingotale/story"
)

// StoryService is the orchestration surface the story handlers drive.
type StoryService interface {
	StartStory(ctx context.Context) (string, error)
	ContinueStory(ctx context.Context, storyID string) (int, string, error)
	Story(ctx context.Context, storyID string) (*models.Story, error)
	Feed(ctx context.Context) ([]models.StoryFeedItem, error)
	TranslateSegment(ctx context.Context, storyID string, index int, segment string) (string, error)
	Words(ctx context.Context) (models.Pool, error)
	MoveWords(ctx context.Context, words []string, target string) error
}

type StoryHandlers struct {
	stories StoryService
}

func NewStoryHandlers(service StoryService) *StoryHandlers {
	return &StoryHandlers{stories: service}
}

type StartStoryResponse struct {
	Message string `json:"message"`
	StoryID string `json:"storyId"`
}

// Start handles POST /api/stories. An empty preference list is not an
// error: the client gets 204 and knows to ask for preferences first.
func (h *StoryHandlers) Start(w http.ResponseWriter, r *http.Request) {
	storyID, err := h.stories.StartStory(r.Context())
	if err != nil {
		if errors.Is(err, story.ErrNotReady) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Error().Err(err).Msg("start story failed")
		writeError(w, http.StatusInternalServerError, "Failed to generate the story")
		return
	}

	writeJSON(w, http.StatusOK, StartStoryResponse{
		Message: "The story segment was generated successfully!",
		StoryID: storyID,
	})
}

// Feed handles GET /api/stories.
func (h *StoryHandlers) Feed(w http.ResponseWriter, r *http.Request) {
	items, err := h.stories.Feed(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("story feed failed")
		writeError(w, http.StatusInternalServerError, "Failed to load stories")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

type StoryDetailResponse struct {
	Title        string   `json:"title"`
	Segments     []string `json:"segments"`
	IsGenerating bool     `json:"is_generating"`
	IsEnded      bool     `json:"is_ended"`
}

// Detail handles GET /api/stories/{storyId}.
func (h *StoryHandlers) Detail(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyId")
	if storyID == "" {
		writeError(w, http.StatusBadRequest, "Story ID is required")
		return
	}

	current, err := h.stories.Story(r.Context(), storyID)
	if err != nil {
		if errors.Is(err, story.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Story not found"})
			return
		}
		log.Error().Err(err).Str("story_id", storyID).Msg("fetch story failed")
		writeError(w, http.StatusInternalServerError, "Failed to load the story")
		return
	}

	writeJSON(w, http.StatusOK, StoryDetailResponse{
		Title:        current.Title,
		Segments:     current.Segments,
		IsGenerating: current.GenerationStatus,
		IsEnded:      current.Ended,
	})
}

type ContinueStoryResponse struct {
	CountSegment int    `json:"countSegment"`
	NewSegment   string `json:"newSegment"`
}

// Continue handles POST /api/stories/{storyId}/continue.
func (h *StoryHandlers) Continue(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyId")
	if storyID == "" {
		writeError(w, http.StatusBadRequest, "Story ID is required")
		return
	}

	count, segment, err := h.stories.ContinueStory(r.Context(), storyID)
	if err != nil {
		switch {
		case errors.Is(err, story.ErrNotFound):
			writeError(w, http.StatusNotFound, "Story not found")
		case errors.Is(err, story.ErrAlreadyGenerating):
			writeError(w, http.StatusConflict, "A segment is already being generated for this story")
		case errors.Is(err, story.ErrStoryEnded):
			writeError(w, http.StatusConflict, "The story has already ended")
		default:
			log.Error().Err(err).Str("story_id", storyID).Msg("continue story failed")
			writeError(w, http.StatusInternalServerError, "Failed to generate the next segment")
		}
		return
	}

	writeJSON(w, http.StatusOK, ContinueStoryResponse{
		CountSegment: count,
		NewSegment:   segment,
	})
}
