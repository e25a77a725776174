// Package taste builds narrative profiles from liked media entities: it
// gathers tags from the recommendation API, classifies them into narrative
// buckets and stores the result as an immutable preference entry.
package taste

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"lingotale/db"
	"lingotale/models"
	"lingotale/narrative"
	"lingotale/qloo"
	"lingotale/taxonomy"
)

// ErrDuplicateEntity reports that the entity is already in the preferences.
var ErrDuplicateEntity = errors.New("entity already added")

// crossDomainTypes are probed for every liked entity; each hit contributes
// its own flavor to the profile.
var crossDomainTypes = []string{
	"urn:entity:artist",
	"urn:entity:movie",
	"urn:entity:destination",
}

// Cross-domain subtypes with dedicated handling.
const (
	subtypeArtist      = "urn:entity:artist"
	subtypeMovie       = "urn:entity:movie"
	subtypeBook        = "urn:entity:book"
	subtypeDestination = "urn:entity:destination"
)

// Recommender is the slice of the recommendation API the pipeline needs.
type Recommender interface {
	Search(ctx context.Context, query string) ([]models.EntitySummary, error)
	Entity(ctx context.Context, entityID string) (*qloo.EntityDetail, error)
	InsightTags(ctx context.Context, entityID, tagTypes string) ([]models.RawTag, error)
	CrossDomainEntity(ctx context.Context, entityID, entityType string) (*qloo.CrossEntity, error)
}

// Classifier assigns normalized tags to narrative buckets.
type Classifier interface {
	Predict(ctx context.Context, tags []string) ([]models.Prediction, error)
}

// ProfileStore persists and lists preference entries.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	ListEntities(ctx context.Context) ([]models.EntityInfo, error)
}

type Service struct {
	rec        Recommender
	classifier Classifier
	profiles   ProfileStore
	log        zerolog.Logger
}

func NewService(rec Recommender, classifier Classifier, profiles ProfileStore, log zerolog.Logger) *Service {
	return &Service{rec: rec, classifier: classifier, profiles: profiles, log: log}
}

// Search proxies an entity search.
func (s *Service) Search(ctx context.Context, query string) ([]models.EntitySummary, error) {
	return s.rec.Search(ctx, query)
}

// Preferences lists the stored preference entities.
func (s *Service) Preferences(ctx context.Context) ([]models.EntityInfo, error) {
	return s.profiles.ListEntities(ctx)
}

// AddEntity runs the full tagging pipeline for one liked entity and stores
// the resulting narrative profile. Adding the same entity twice fails with
// ErrDuplicateEntity.
func (s *Service) AddEntity(ctx context.Context, entityID string) (*models.Profile, error) {
	detail, err := s.rec.Entity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("fetch entity: %w", err)
	}

	selected := selectEntityTags(detail.Tags)
	affinity, err := s.rec.InsightTags(ctx, entityID, qloo.EntityTagFilter)
	if err != nil {
		return nil, fmt.Errorf("fetch affinity tags: %w", err)
	}

	rawEntityTags := append(append([]models.RawTag{}, selected...), affinity...)
	rawNarrativeTags := append([]models.RawTag{}, rawEntityTags...)
	recommendedTags := []models.RawTag{}

	profileNarrative := models.NewNarrative()

	for _, entityType := range crossDomainTypes {
		cross, err := s.rec.CrossDomainEntity(ctx, entityID, entityType)
		if err != nil {
			return nil, fmt.Errorf("fetch cross-domain entity %s: %w", entityType, err)
		}
		if cross == nil {
			continue
		}

		crossAffinity, err := s.rec.InsightTags(ctx, cross.EntityID, qloo.CrossEntityTagFilter)
		if err != nil {
			return nil, fmt.Errorf("fetch cross-domain affinity tags: %w", err)
		}

		switch cross.Subtype {
		case subtypeBook, subtypeMovie:
			recommendedTags = append(recommendedTags, cross.Tags...)
			recommendedTags = append(recommendedTags, crossAffinity...)
		case subtypeArtist:
			// Music genres set the pacing directly; the artist's affinity
			// tags replace the entity's own affinity contribution.
			profileNarrative.Buckets["story_pace"] = narrative.FilterValues(cross.Tags, taxonomy.TagMusicGenre)
			rawNarrativeTags = append(append([]models.RawTag{}, rawEntityTags...), crossAffinity...)
		case subtypeDestination:
			profileNarrative.Destination.Characteristic = narrative.FilterValues(crossAffinity, taxonomy.TagCharacteristic)
			profileNarrative.Destination.Destinations = narrative.FilterValues(cross.Tags, taxonomy.TagDestinationGenre)
		}
	}

	narrative.MapDirectBuckets(&profileNarrative, rawNarrativeTags)

	formatted := narrative.FormatTags(rawNarrativeTags)
	if len(formatted) > 0 {
		predictions, err := s.classifier.Predict(ctx, formatted)
		if err != nil {
			return nil, fmt.Errorf("classify tags: %w", err)
		}
		narrative.ApplyPredictions(&profileNarrative, predictions)
	}

	profile := &models.Profile{
		Entity:             detail.Info,
		RawNarrativeTags:   rawNarrativeTags,
		RawRecommendedTags: recommendedTags,
		Narrative:          profileNarrative,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			s.log.Warn().Str("entity_id", entityID).Msg("duplicate entity in preferences")
			return nil, ErrDuplicateEntity
		}
		return nil, fmt.Errorf("store profile: %w", err)
	}

	s.log.Info().Str("entity_id", entityID).Str("name", detail.Info.Name).Msg("entity added to preferences")
	return profile, nil
}

// selectEntityTags drops the tag types that carry no narrative signal.
func selectEntityTags(tags []models.RawTag) []models.RawTag {
	selected := []models.RawTag{}
	for _, tag := range tags {
		if tag.Key == taxonomy.TagStreamingService || tag.Key == taxonomy.TagWikipedia {
			continue
		}
		selected = append(selected, tag)
	}
	return selected
}
