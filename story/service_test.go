package story

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"lingotale/db"
	"lingotale/models"
	"lingotale/prompts"
)

var testSpec = prompts.LanguageSpec{
	Language:        "english",
	ForeignLanguage: "spanish",
	WordType:        "common",
}

type fakeGenerator struct {
	opening    *models.Opening
	openingErr error
	segment    string
	segmentErr error
}

func (f *fakeGenerator) GenerateOpening(ctx context.Context, prompt string) (*models.Opening, error) {
	return f.opening, f.openingErr
}

func (f *fakeGenerator) ContinueChat(ctx context.Context, history []models.ContextTurn, message string) (string, error) {
	return f.segment, f.segmentErr
}

func (f *fakeGenerator) Translate(ctx context.Context, prompt string) (string, error) {
	return "la traduccion", nil
}

type fakeProfileStore struct {
	narratives []models.Narrative
}

func (f *fakeProfileStore) ListNarratives(ctx context.Context) ([]models.Narrative, error) {
	return f.narratives, nil
}

type fakePoolStore struct {
	mu        sync.Mutex
	pool      *models.Pool
	version   int64
	conflicts int

	// insertConflicts makes Insert lose the creation race: the pool appears
	// with seededWords as if a concurrent caller wrote it first.
	insertConflicts int
	seededWords     []string

	inserted  []string
	baseWords []string
}

func (f *fakePoolStore) Get(ctx context.Context) (*models.Pool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pool == nil {
		return nil, 0, nil
	}
	copied := *f.pool
	return &copied, f.version, nil
}

func (f *fakePoolStore) Insert(ctx context.Context, baseWords []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertConflicts > 0 {
		f.insertConflicts--
		f.pool = &models.Pool{BaseWords: f.seededWords}
		f.version = 1
		return db.ErrVersionConflict
	}
	f.inserted = baseWords
	f.pool = &models.Pool{BaseWords: baseWords}
	f.version = 1
	return nil
}

func (f *fakePoolStore) UpdateBase(ctx context.Context, version int64, baseWords []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		f.version++
		return db.ErrVersionConflict
	}
	if version != f.version {
		return db.ErrVersionConflict
	}
	f.baseWords = baseWords
	f.pool.BaseWords = baseWords
	f.version++
	return nil
}

func (f *fakePoolStore) ReplaceTiers(ctx context.Context, version int64, pool models.Pool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if version != f.version {
		return db.ErrVersionConflict
	}
	f.pool = &pool
	f.version++
	return nil
}

type fakeStoryStore struct {
	mu      sync.Mutex
	stories map[string]*models.Story

	inserted *models.Story
	appends  int
	releases int
}

func newFakeStoryStore(stories ...*models.Story) *fakeStoryStore {
	f := &fakeStoryStore{stories: map[string]*models.Story{}}
	for _, s := range stories {
		f.stories[s.StoryID] = s
	}
	return f
}

func (f *fakeStoryStore) Insert(ctx context.Context, story *models.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = story
	f.stories[story.StoryID] = story
	return nil
}

func (f *fakeStoryStore) Get(ctx context.Context, storyID string) (*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[storyID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStoryStore) List(ctx context.Context) ([]models.StoryFeedItem, error) {
	return []models.StoryFeedItem{}, nil
}

func (f *fakeStoryStore) AcquireGenerationLock(ctx context.Context, storyID string) (*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[storyID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if s.GenerationStatus {
		return nil, db.ErrLocked
	}
	s.GenerationStatus = true
	copied := *s
	return &copied, nil
}

func (f *fakeStoryStore) ReleaseGenerationLock(ctx context.Context, storyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stories[storyID]; ok {
		s.GenerationStatus = false
	}
	f.releases++
	return nil
}

func (f *fakeStoryStore) AppendSegment(ctx context.Context, storyID, directive, segment string, ended bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[storyID]
	if !ok {
		return db.ErrNotFound
	}
	s.Segments = append(s.Segments, segment)
	s.Context = append(s.Context,
		models.ContextTurn{Role: models.RoleUser, Text: directive},
		models.ContextTurn{Role: models.RoleModel, Text: segment},
	)
	s.Ended = ended
	s.GenerationStatus = false
	f.appends++
	return nil
}

func (f *fakeStoryStore) SaveTranslation(ctx context.Context, storyID string, index int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[storyID]
	if !ok {
		return db.ErrNotFound
	}
	s.Translations = append(s.Translations, models.Translation{Index: index, Text: text})
	return nil
}

func (f *fakeStoryStore) locked(storyID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stories[storyID].GenerationStatus
}

func newTestService(profiles ProfileStore, pool PoolStore, stories StoryStore, gen Generator) *Service {
	return NewService(profiles, pool, stories, gen, testSpec, 20, zerolog.Nop())
}

func storyWithSegments(id string, count int) *models.Story {
	segments := make([]string, count)
	for i := range segments {
		segments[i] = "segment"
	}
	return &models.Story{
		StoryID:  id,
		Title:    "Test Story",
		Segments: segments,
		Context: []models.ContextTurn{
			{Role: models.RoleUser, Text: "begin"},
			{Role: models.RoleModel, Text: "segment"},
		},
		Components: models.NewNarrative(),
	}
}

func TestStartStoryNoProfiles(t *testing.T) {
	stories := newFakeStoryStore()
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, &fakeGenerator{})

	_, err := svc.StartStory(context.Background())
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	if stories.inserted != nil {
		t.Error("story was persisted despite empty preferences")
	}
}

func TestStartStorySeedsPool(t *testing.T) {
	pool := &fakePoolStore{}
	stories := newFakeStoryStore()
	gen := &fakeGenerator{opening: &models.Opening{
		Title:     "El Faro",
		Story:     "Una noche oscura.",
		PoolWords: []string{"mar", "faro", "niebla"},
	}}
	svc := newTestService(&fakeProfileStore{narratives: []models.Narrative{models.NewNarrative()}}, pool, stories, gen)

	storyID, err := svc.StartStory(context.Background())
	if err != nil {
		t.Fatalf("StartStory: %v", err)
	}
	if storyID == "" {
		t.Fatal("empty story id")
	}
	if stories.inserted == nil {
		t.Fatal("story was not persisted")
	}
	if got := len(stories.inserted.Context); got != 2 {
		t.Errorf("context turns = %d, want 2", got)
	}
	if len(pool.inserted) != 3 {
		t.Errorf("seeded pool = %v, want the 3 generated words", pool.inserted)
	}
}

func TestStartStoryFiltersGraduatedWords(t *testing.T) {
	pool := &fakePoolStore{
		pool: &models.Pool{
			BaseWords:        []string{"mar"},
			GettingUsedWords: []string{"puerto"},
			ComfortableWords: []string{"faro"},
		},
		version: 1,
	}
	stories := newFakeStoryStore()
	gen := &fakeGenerator{opening: &models.Opening{
		Title:     "El Faro",
		Story:     "Una noche oscura.",
		PoolWords: []string{"faro", "niebla"},
	}}
	svc := newTestService(&fakeProfileStore{narratives: []models.Narrative{models.NewNarrative()}}, pool, stories, gen)

	if _, err := svc.StartStory(context.Background()); err != nil {
		t.Fatalf("StartStory: %v", err)
	}

	for _, w := range pool.baseWords {
		if w == "faro" {
			t.Error("comfortable word leaked back into the base tier")
		}
	}
	found := false
	for _, w := range pool.baseWords {
		if w == "niebla" {
			found = true
		}
	}
	if !found {
		t.Errorf("base tier %v missing the new word", pool.baseWords)
	}
}

func TestStartStoryMergesIntoConcurrentlySeededPool(t *testing.T) {
	pool := &fakePoolStore{
		insertConflicts: 1,
		seededWords:     []string{"mar", "faro"},
	}
	gen := &fakeGenerator{opening: &models.Opening{
		Title:     "El Faro",
		Story:     "Una noche oscura.",
		PoolWords: []string{"niebla", "faro"},
	}}
	svc := newTestService(&fakeProfileStore{narratives: []models.Narrative{models.NewNarrative()}}, pool, newFakeStoryStore(), gen)

	if _, err := svc.StartStory(context.Background()); err != nil {
		t.Fatalf("StartStory: %v", err)
	}

	// The losing first write must merge into the pool the winner created,
	// not replace it and not create a second one.
	final, _, err := pool.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	counts := map[string]int{}
	for _, w := range final.BaseWords {
		counts[w]++
	}
	for _, w := range []string{"mar", "faro", "niebla"} {
		if counts[w] != 1 {
			t.Errorf("base tier = %v, want exactly one %q", final.BaseWords, w)
		}
	}
}

func TestStartStoryRetriesPoolConflict(t *testing.T) {
	pool := &fakePoolStore{
		pool:      &models.Pool{BaseWords: []string{"mar"}},
		version:   1,
		conflicts: 1,
	}
	gen := &fakeGenerator{opening: &models.Opening{
		Title:     "El Faro",
		Story:     "Una noche oscura.",
		PoolWords: []string{"niebla"},
	}}
	svc := newTestService(&fakeProfileStore{narratives: []models.Narrative{models.NewNarrative()}}, pool, newFakeStoryStore(), gen)

	if _, err := svc.StartStory(context.Background()); err != nil {
		t.Fatalf("StartStory: %v", err)
	}
	if len(pool.baseWords) == 0 {
		t.Error("pool update never succeeded after the version conflict")
	}
}

func TestContinueStoryAppendsSegment(t *testing.T) {
	stories := newFakeStoryStore(storyWithSegments("s1", 3))
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, &fakeGenerator{segment: "El viento creció."})

	count, segment, err := svc.ContinueStory(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ContinueStory: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if segment != "El viento creció." {
		t.Errorf("segment = %q", segment)
	}
	if stories.locked("s1") {
		t.Error("generation flag still set after a successful append")
	}
}

func TestContinueStoryUnknownID(t *testing.T) {
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, newFakeStoryStore(), &fakeGenerator{})

	_, _, err := svc.ContinueStory(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestContinueStorySerializesCallers(t *testing.T) {
	stories := newFakeStoryStore(storyWithSegments("s1", 3))
	gen := &fakeGenerator{segment: "El viento creció."}
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, gen)

	// Hold the lock like an in-flight generation would.
	if _, err := stories.AcquireGenerationLock(context.Background(), "s1"); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	_, _, err := svc.ContinueStory(context.Background(), "s1")
	if !errors.Is(err, ErrAlreadyGenerating) {
		t.Fatalf("err = %v, want ErrAlreadyGenerating", err)
	}
	if stories.appends != 0 {
		t.Error("a locked story still produced a segment")
	}
}

func TestContinueStoryEnded(t *testing.T) {
	ended := storyWithSegments("s1", 10)
	ended.Ended = true
	stories := newFakeStoryStore(ended)
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, &fakeGenerator{})

	_, _, err := svc.ContinueStory(context.Background(), "s1")
	if !errors.Is(err, ErrStoryEnded) {
		t.Fatalf("err = %v, want ErrStoryEnded", err)
	}
	if stories.locked("s1") {
		t.Error("generation flag left set on an ended story")
	}
}

func TestContinueStoryTerminalSegmentEnds(t *testing.T) {
	stories := newFakeStoryStore(storyWithSegments("s1", 60))
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, &fakeGenerator{segment: "Fin."})

	count, _, err := svc.ContinueStory(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ContinueStory: %v", err)
	}
	if count != 60 {
		t.Errorf("count = %d, want 60", count)
	}

	final, err := stories.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !final.Ended {
		t.Error("story not marked ended after the terminal segment")
	}

	_, _, err = svc.ContinueStory(context.Background(), "s1")
	if !errors.Is(err, ErrStoryEnded) {
		t.Fatalf("continuation after the end: err = %v, want ErrStoryEnded", err)
	}
}

func TestContinueStoryReleasesLockOnFailure(t *testing.T) {
	stories := newFakeStoryStore(storyWithSegments("s1", 3))
	gen := &fakeGenerator{segmentErr: errors.New("upstream unavailable")}
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, gen)

	if _, _, err := svc.ContinueStory(context.Background(), "s1"); err == nil {
		t.Fatal("expected an error from the failed generation")
	}
	if stories.locked("s1") {
		t.Error("generation flag left set after a failed generation")
	}

	// The story must be usable again immediately.
	gen.segmentErr = nil
	gen.segment = "Recuperado."
	if _, _, err := svc.ContinueStory(context.Background(), "s1"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestTranslateSegmentMemoized(t *testing.T) {
	s := storyWithSegments("s1", 2)
	s.Translations = []models.Translation{{Index: 0, Text: "cached"}}
	stories := newFakeStoryStore(s)
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, stories, &fakeGenerator{})

	text, err := svc.TranslateSegment(context.Background(), "s1", 0, "segment")
	if err != nil {
		t.Fatalf("TranslateSegment: %v", err)
	}
	if text != "cached" {
		t.Errorf("translation = %q, want the memoized value", text)
	}
}

func TestMoveWordsNoPool(t *testing.T) {
	svc := newTestService(&fakeProfileStore{}, &fakePoolStore{}, newFakeStoryStore(), &fakeGenerator{})

	err := svc.MoveWords(context.Background(), []string{"faro"}, models.TierComfortable)
	if !errors.Is(err, ErrNoPool) {
		t.Fatalf("err = %v, want ErrNoPool", err)
	}
}

func TestMoveWordsReassignsTier(t *testing.T) {
	pool := &fakePoolStore{
		pool:    &models.Pool{BaseWords: []string{"mar", "faro"}},
		version: 1,
	}
	svc := newTestService(&fakeProfileStore{}, pool, newFakeStoryStore(), &fakeGenerator{})

	if err := svc.MoveWords(context.Background(), []string{"faro"}, models.TierComfortable); err != nil {
		t.Fatalf("MoveWords: %v", err)
	}

	final, _, err := pool.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(final.BaseWords) != 1 || final.BaseWords[0] != "mar" {
		t.Errorf("base tier = %v, want [mar]", final.BaseWords)
	}
	if len(final.ComfortableWords) != 1 || final.ComfortableWords[0] != "faro" {
		t.Errorf("comfortable tier = %v, want [faro]", final.ComfortableWords)
	}
}
