package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lingotale/models"
)

// StoryRepository persists novel documents: segments, generation context,
// translations and the in-flight generation flag.
type StoryRepository struct {
	collection *mongo.Collection
}

func NewStoryRepository() *StoryRepository {
	return &StoryRepository{collection: GetCollection(StoriesCollection)}
}

// Insert stores a newly started story.
func (r *StoryRepository) Insert(ctx context.Context, story *models.Story) error {
	now := time.Now()
	story.CreatedAt = now
	story.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, story); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: story %s", ErrDuplicate, story.StoryID)
		}
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

// Get fetches a story by its public id.
func (r *StoryRepository) Get(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	err := r.collection.FindOne(ctx, bson.M{"story_id": storyID}).Decode(&story)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch story: %w", err)
	}
	return &story, nil
}

// List returns the saved-stories feed, most recently updated first.
func (r *StoryRepository) List(ctx context.Context) ([]models.StoryFeedItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().
			SetProjection(bson.M{"story_id": 1, "title": 1, "ended": 1}).
			SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.StoryFeedItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode stories: %w", err)
	}
	return items, nil
}

// AcquireGenerationLock atomically flips the generation flag from false to
// true and returns the locked story. The conditional update makes the
// check-and-set a single operation: when it matches nothing, a follow-up
// read tells a missing story (ErrNotFound) apart from a story already
// generating (ErrLocked).
func (r *StoryRepository) AcquireGenerationLock(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"story_id": storyID, "generation_status": false},
		bson.M{"$set": bson.M{"generation_status": true, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&story)
	if err == nil {
		return &story, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}

	if _, getErr := r.Get(ctx, storyID); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: story %s", ErrLocked, storyID)
}

// ReleaseGenerationLock clears the generation flag. Called on every failure
// path so a story can never stay locked.
func (r *StoryRepository) ReleaseGenerationLock(ctx context.Context, storyID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"story_id": storyID},
		bson.M{"$set": bson.M{"generation_status": false, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("release generation lock: %w", err)
	}
	return nil
}

// AppendSegment adds the new segment and its turn pair to the story, marks
// it ended when the arc is complete, and clears the generation flag in the
// same update.
func (r *StoryRepository) AppendSegment(ctx context.Context, storyID, directive, segment string, ended bool) error {
	turns := []models.ContextTurn{
		{Role: models.RoleUser, Text: directive},
		{Role: models.RoleModel, Text: segment},
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"story_id": storyID},
		bson.M{
			"$push": bson.M{
				"segments":      segment,
				"story_context": bson.M{"$each": turns},
			},
			"$set": bson.M{
				"ended":             ended,
				"generation_status": false,
				"updated_at":        time.Now(),
			},
		})
	if err != nil {
		return fmt.Errorf("append segment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}
	return nil
}

// SaveTranslation memoizes the translation of one segment.
func (r *StoryRepository) SaveTranslation(ctx context.Context, storyID string, index int, text string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"story_id": storyID},
		bson.M{
			"$push": bson.M{"translations": models.Translation{Index: index, Text: text}},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}
	return nil
}

// EnsureIndexes creates the unique story id index.
func (r *StoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "story_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create story indexes: %w", err)
	}
	return nil
}
