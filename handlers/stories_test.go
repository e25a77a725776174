package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"

	"lingotale/models"
	"lingotale/story"
	"lingotale/vocab"
)

type fakeStoryService struct {
	startID     string
	startErr    error
	continueErr error
	story       *models.Story
	storyErr    error
	moveErr     error
}

func (f *fakeStoryService) StartStory(ctx context.Context) (string, error) {
	return f.startID, f.startErr
}

func (f *fakeStoryService) ContinueStory(ctx context.Context, storyID string) (int, string, error) {
	if f.continueErr != nil {
		return 0, "", f.continueErr
	}
	return 3, "next segment", nil
}

func (f *fakeStoryService) Story(ctx context.Context, storyID string) (*models.Story, error) {
	return f.story, f.storyErr
}

func (f *fakeStoryService) Feed(ctx context.Context) ([]models.StoryFeedItem, error) {
	return []models.StoryFeedItem{}, nil
}

func (f *fakeStoryService) TranslateSegment(ctx context.Context, storyID string, index int, segment string) (string, error) {
	return "", nil
}

func (f *fakeStoryService) Words(ctx context.Context) (models.Pool, error) {
	return models.Pool{}, nil
}

func (f *fakeStoryService) MoveWords(ctx context.Context, words []string, target string) error {
	return f.moveErr
}

func newTestRouter(svc StoryService) http.Handler {
	h := NewStoryHandlers(svc)
	r := chi.NewRouter()
	r.Post("/api/stories", h.Start)
	r.Get("/api/stories/{storyId}", h.Detail)
	r.Post("/api/stories/{storyId}/continue", h.Continue)
	r.Post("/api/words", h.MoveWords)
	return r
}

func TestStartStoryNotReady(t *testing.T) {
	router := newTestRouter(&fakeStoryService{startErr: story.ErrNotReady})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stories", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestStartStorySuccess(t *testing.T) {
	router := newTestRouter(&fakeStoryService{startID: "abc-123"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp StartStoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StoryID != "abc-123" {
		t.Errorf("storyId = %q, want %q", resp.StoryID, "abc-123")
	}
}

func TestContinueStoryErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", story.ErrNotFound, http.StatusNotFound},
		{"already generating", story.ErrAlreadyGenerating, http.StatusConflict},
		{"ended", story.ErrStoryEnded, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeStoryService{continueErr: tt.err})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stories/abc/continue", nil))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStoryDetailNotFound(t *testing.T) {
	router := newTestRouter(&fakeStoryService{storyErr: story.ErrNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stories/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMoveWordsInvalidTier(t *testing.T) {
	router := newTestRouter(&fakeStoryService{moveErr: vocab.ErrInvalidTier})

	body := strings.NewReader(`{"selectedWords":[{"id":"1","value":"faro"}],"target":"nonsense"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/words", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMoveWordsEmptySelection(t *testing.T) {
	router := newTestRouter(&fakeStoryService{})

	body := strings.NewReader(`{"selectedWords":[],"target":"comfortable_words"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/words", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
