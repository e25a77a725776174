package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lingotale/models"
)

// poolDocID is the fixed _id of the singleton pool row. Pinning the _id makes
// the unique index the creation guard: when two first-ever generations race,
// the loser's insert is a duplicate-key error, not a second document.
const poolDocID = "vocabulary_pool"

// poolDocument is the single vocabulary pool row. The version field backs
// optimistic concurrency: every mutation is a compare-and-swap against the
// version it read, so a racing reconcile and word move cannot lose updates.
type poolDocument struct {
	ID               string    `bson:"_id"`
	BaseWords        []string  `bson:"base_words"`
	GettingUsedWords []string  `bson:"getting_used_words"`
	ComfortableWords []string  `bson:"comfortable_words"`
	Version          int64     `bson:"version"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// PoolRepository persists the singleton three-tier vocabulary pool.
type PoolRepository struct {
	collection *mongo.Collection
}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{collection: GetCollection(PoolCollection)}
}

// Get fetches the pool and its version. A nil pool with no error means no
// pool exists yet (first-ever generation).
func (r *PoolRepository) Get(ctx context.Context) (*models.Pool, int64, error) {
	var doc poolDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": poolDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("fetch pool: %w", err)
	}

	pool := &models.Pool{
		BaseWords:        orEmpty(doc.BaseWords),
		GettingUsedWords: orEmpty(doc.GettingUsedWords),
		ComfortableWords: orEmpty(doc.ComfortableWords),
	}
	return pool, doc.Version, nil
}

// Insert creates the pool on first generation with the given base words and
// empty promoted tiers. Losing the creation race to a concurrent first
// generation surfaces as ErrVersionConflict so callers re-read and merge
// instead of leaving a second pool behind.
func (r *PoolRepository) Insert(ctx context.Context, baseWords []string) error {
	now := time.Now()
	doc := poolDocument{
		ID:               poolDocID,
		BaseWords:        baseWords,
		GettingUsedWords: []string{},
		ComfortableWords: []string{},
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

// UpdateBase replaces the base tier, conditional on the version the caller
// read. A concurrent mutation surfaces as ErrVersionConflict; callers re-read
// and retry.
func (r *PoolRepository) UpdateBase(ctx context.Context, version int64, baseWords []string) error {
	return r.compareAndSwap(ctx, version, bson.M{"base_words": baseWords})
}

// ReplaceTiers replaces all three tiers at once, conditional on the version
// the caller read. Used by word moves so the two-step remove/append is
// observed as a single committed state.
func (r *PoolRepository) ReplaceTiers(ctx context.Context, version int64, pool models.Pool) error {
	return r.compareAndSwap(ctx, version, bson.M{
		"base_words":         pool.BaseWords,
		"getting_used_words": pool.GettingUsedWords,
		"comfortable_words":  pool.ComfortableWords,
	})
}

func (r *PoolRepository) compareAndSwap(ctx context.Context, version int64, fields bson.M) error {
	fields["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": poolDocID, "version": version},
		bson.M{"$set": fields, "$inc": bson.M{"version": 1}})
	if err != nil {
		return fmt.Errorf("update pool: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

func orEmpty(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
