// Package story orchestrates story generation: it assembles directives from
// stored profiles, drives the five-act progression, calls the generation
// service and keeps the story and vocabulary pool state consistent.
package story

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lingotale/arc"
	"lingotale/db"
	"lingotale/models"
	"lingotale/narrative"
	"lingotale/prompts"
	"lingotale/vocab"
)

// casRetries bounds how often a lost pool compare-and-swap is retried.
const casRetries = 3

// Generator is the generation service surface the orchestrator needs.
type Generator interface {
	GenerateOpening(ctx context.Context, prompt string) (*models.Opening, error)
	ContinueChat(ctx context.Context, history []models.ContextTurn, message string) (string, error)
	Translate(ctx context.Context, prompt string) (string, error)
}

// ProfileStore supplies the stored narrative profiles.
type ProfileStore interface {
	ListNarratives(ctx context.Context) ([]models.Narrative, error)
}

// PoolStore persists the vocabulary pool with optimistic concurrency.
type PoolStore interface {
	Get(ctx context.Context) (*models.Pool, int64, error)
	Insert(ctx context.Context, baseWords []string) error
	UpdateBase(ctx context.Context, version int64, baseWords []string) error
	ReplaceTiers(ctx context.Context, version int64, pool models.Pool) error
}

// StoryStore persists novel documents and the generation lock.
type StoryStore interface {
	Insert(ctx context.Context, story *models.Story) error
	Get(ctx context.Context, storyID string) (*models.Story, error)
	List(ctx context.Context) ([]models.StoryFeedItem, error)
	AcquireGenerationLock(ctx context.Context, storyID string) (*models.Story, error)
	ReleaseGenerationLock(ctx context.Context, storyID string) error
	AppendSegment(ctx context.Context, storyID, directive, segment string, ended bool) error
	SaveTranslation(ctx context.Context, storyID string, index int, text string) error
}

type Service struct {
	profiles ProfileStore
	pool     PoolStore
	stories  StoryStore
	gen      Generator
	spec     prompts.LanguageSpec
	poolSize int
	log      zerolog.Logger
}

func NewService(profiles ProfileStore, pool PoolStore, stories StoryStore, gen Generator,
	spec prompts.LanguageSpec, poolSize int, log zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		pool:     pool,
		stories:  stories,
		gen:      gen,
		spec:     spec,
		poolSize: poolSize,
		log:      log,
	}
}

// StartStory samples stored profiles into a directive, requests the opening
// segment with an adaptively sized word pool, persists the new story and
// reconciles the vocabulary pool. Returns ErrNotReady when no profiles
// exist; no story is created in that case.
func (s *Service) StartStory(ctx context.Context) (string, error) {
	narratives, err := s.profiles.ListNarratives(ctx)
	if err != nil {
		return "", fmt.Errorf("list narrative profiles: %w", err)
	}

	directive, ok := narrative.BuildDirective(narratives)
	if !ok {
		return "", ErrNotReady
	}

	pool, version, err := s.pool.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch vocabulary pool: %w", err)
	}

	// The quota is computed per request and passed down explicitly; it is
	// never shared process state.
	quota := vocab.AdjustedQuota(s.poolSize, pool)
	instructions := prompts.Instructions(directive, s.spec)

	opening, err := s.gen.GenerateOpening(ctx, prompts.Opening(instructions, quota, s.spec))
	if err != nil {
		return "", fmt.Errorf("generate opening: %w", err)
	}

	poolWords := opening.PoolWords
	if pool != nil {
		// Graduated words never re-enter a story's pool; getting-used
		// words ride along for reinforcement.
		poolWords = vocab.EditWords(poolWords, pool.ComfortableWords, pool.GettingUsedWords)
	}

	storyID := uuid.NewString()
	newStory := &models.Story{
		StoryID:  storyID,
		Title:    opening.Title,
		Segments: []string{opening.Story},
		Context: []models.ContextTurn{
			{Role: models.RoleUser, Text: prompts.StoredOpening(instructions, poolWords, s.spec)},
			{Role: models.RoleModel, Text: opening.Story},
		},
		Components:   directive,
		Translations: []models.Translation{},
	}
	if err := s.stories.Insert(ctx, newStory); err != nil {
		return "", fmt.Errorf("store new story: %w", err)
	}

	if err := s.reconcilePool(ctx, pool, version, poolWords); err != nil {
		return "", fmt.Errorf("reconcile vocabulary pool: %w", err)
	}

	s.log.Info().Str("story_id", storyID).Str("title", opening.Title).
		Int("quota", quota).Msg("story started")
	return storyID, nil
}

func (s *Service) reconcilePool(ctx context.Context, pool *models.Pool, version int64, words []string) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		var err error
		if pool == nil {
			// First write races are conflicts too: a concurrent first
			// generation may have seeded the pool since our read.
			err = s.pool.Insert(ctx, vocab.Reconcile(nil, words))
		} else {
			err = s.pool.UpdateBase(ctx, version, vocab.Reconcile(pool, words))
		}
		if !errors.Is(err, db.ErrVersionConflict) {
			return err
		}
		if pool, version, err = s.pool.Get(ctx); err != nil {
			return err
		}
	}
	return fmt.Errorf("vocabulary pool contention, giving up after %d attempts", casRetries)
}

// ContinueStory generates the next segment for a story. The persisted
// generation flag serializes continuations: the conditional lock acquisition
// admits exactly one caller, everyone else observes ErrAlreadyGenerating.
// Every failure path releases the lock so a story can never stay stuck.
func (s *Service) ContinueStory(ctx context.Context, storyID string) (int, string, error) {
	current, err := s.stories.AcquireGenerationLock(ctx, storyID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return 0, "", ErrNotFound
		case errors.Is(err, db.ErrLocked):
			return 0, "", ErrAlreadyGenerating
		}
		return 0, "", fmt.Errorf("acquire generation lock: %w", err)
	}

	count := len(current.Segments)
	if current.Ended {
		s.release(ctx, storyID)
		return 0, "", ErrStoryEnded
	}
	step, err := arc.Next(count)
	if err != nil {
		s.release(ctx, storyID)
		return 0, "", ErrStoryEnded
	}

	directive := s.directiveFor(step, current.Components)

	segment, err := s.gen.ContinueChat(ctx, current.Context, directive)
	if err != nil {
		s.release(ctx, storyID)
		return 0, "", fmt.Errorf("generate segment: %w", err)
	}

	if err := s.stories.AppendSegment(ctx, storyID, directive, segment, step.Terminal); err != nil {
		s.release(ctx, storyID)
		return 0, "", fmt.Errorf("store segment: %w", err)
	}

	s.log.Info().Str("story_id", storyID).Int("count", count).
		Str("phase", step.Phase.String()).Bool("terminal", step.Terminal).
		Msg("segment generated")
	return count, segment, nil
}

// directiveFor picks the instruction text for the next generation: the final
// directive at the terminal count, the act directive at an exact boundary,
// and the generic continuation everywhere else.
func (s *Service) directiveFor(step arc.Step, comps models.Narrative) string {
	switch {
	case step.Terminal:
		return prompts.Final()
	case step.NewPhase && step.Phase != arc.Exposition:
		return prompts.PhaseDirective(step.Phase, comps)
	}
	return prompts.Continue(s.spec)
}

func (s *Service) release(ctx context.Context, storyID string) {
	if err := s.stories.ReleaseGenerationLock(ctx, storyID); err != nil {
		s.log.Error().Err(err).Str("story_id", storyID).
			Msg("failed to release generation lock")
	}
}

// Story fetches one story by id.
func (s *Service) Story(ctx context.Context, storyID string) (*models.Story, error) {
	current, err := s.stories.Get(ctx, storyID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	return current, err
}

// Feed lists the saved stories.
func (s *Service) Feed(ctx context.Context) ([]models.StoryFeedItem, error) {
	return s.stories.List(ctx)
}

// TranslateSegment returns the translation of one segment, memoized per
// story and index so repeated requests never hit the generation service.
func (s *Service) TranslateSegment(ctx context.Context, storyID string, index int, segment string) (string, error) {
	current, err := s.stories.Get(ctx, storyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("fetch story: %w", err)
	}

	if text, ok := current.TranslationFor(index); ok {
		return text, nil
	}

	text, err := s.gen.Translate(ctx, prompts.Translation(segment, s.spec))
	if err != nil {
		return "", fmt.Errorf("translate segment: %w", err)
	}
	if err := s.stories.SaveTranslation(ctx, storyID, index, text); err != nil {
		return "", fmt.Errorf("store translation: %w", err)
	}
	return text, nil
}

// Words returns the current vocabulary pool, empty tiers when none exists.
func (s *Service) Words(ctx context.Context) (models.Pool, error) {
	pool, _, err := s.pool.Get(ctx)
	if err != nil {
		return models.Pool{}, fmt.Errorf("fetch vocabulary pool: %w", err)
	}
	if pool == nil {
		return models.Pool{
			BaseWords:        []string{},
			GettingUsedWords: []string{},
			ComfortableWords: []string{},
		}, nil
	}
	return *pool, nil
}

// MoveWords reassigns the selected words to the target tier as one committed
// pool state, retrying on version conflicts so a racing reconcile cannot
// interleave.
func (s *Service) MoveWords(ctx context.Context, words []string, target string) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		pool, version, err := s.pool.Get(ctx)
		if err != nil {
			return fmt.Errorf("fetch vocabulary pool: %w", err)
		}
		if pool == nil {
			return ErrNoPool
		}

		next, err := vocab.MoveWords(*pool, words, target)
		if err != nil {
			return err
		}

		err = s.pool.ReplaceTiers(ctx, version, next)
		if err == nil {
			s.log.Info().Int("words", len(words)).Str("target", target).Msg("words moved")
			return nil
		}
		if !errors.Is(err, db.ErrVersionConflict) {
			return fmt.Errorf("update vocabulary pool: %w", err)
		}
	}
	return fmt.Errorf("vocabulary pool contention, giving up after %d attempts", casRetries)
}
