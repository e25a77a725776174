package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingotale/models"
)

// ProfileRepository persists narrative taste entries. Profiles are immutable
// once stored; duplicates are rejected by a unique index on the entity id.
type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{collection: GetCollection(ProfilesCollection)}
}

// Create inserts a new profile. A unique-index violation on the entity id
// comes back as ErrDuplicate so callers can report "already added".
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: entity %s", ErrDuplicate, profile.Entity.EntityID)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// ListNarratives returns the narrative component of every stored profile.
func (r *ProfileRepository) ListNarratives(ctx context.Context) ([]models.Narrative, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"narrative": 1}))
	if err != nil {
		return nil, fmt.Errorf("list narratives: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Narrative models.Narrative `bson:"narrative"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode narratives: %w", err)
	}

	narratives := make([]models.Narrative, 0, len(docs))
	for _, doc := range docs {
		narratives = append(narratives, doc.Narrative)
	}
	return narratives, nil
}

// ListEntities returns the stored entity snapshots, newest first.
func (r *ProfileRepository) ListEntities(ctx context.Context) ([]models.EntityInfo, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().
			SetProjection(bson.M{"entity": 1}).
			SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Entity models.EntityInfo `bson:"entity"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}

	entities := make([]models.EntityInfo, 0, len(docs))
	for _, doc := range docs {
		entities = append(entities, doc.Entity)
	}
	return entities, nil
}

// EnsureIndexes creates the unique index that backs duplicate detection.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "entity.entity_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}
	return nil
}
