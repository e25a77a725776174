package db

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names for the three logical stores.
const (
	ProfilesCollection = "profiles"
	PoolCollection     = "pool"
	StoriesCollection  = "stories"
)

// Persistence outcomes the service layer translates into its own taxonomy.
var (
	// ErrNotFound reports a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate reports a unique-constraint violation on insert.
	ErrDuplicate = errors.New("duplicate document")
	// ErrLocked reports that a story's generation flag was already set.
	ErrLocked = errors.New("generation already in progress")
	// ErrVersionConflict reports a lost compare-and-swap on the pool row.
	ErrVersionConflict = errors.New("pool version conflict")
)

var (
	client   *mongo.Client
	database *mongo.Database
)

// Init connects to MongoDB and verifies the connection.
func Init(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	database = client.Database(dbName)
	log.Info().Str("database", dbName).Msg("connected to MongoDB")
	return nil
}

// GetCollection returns a MongoDB collection handle.
func GetCollection(name string) *mongo.Collection {
	return database.Collection(name)
}

// Close closes the MongoDB connection.
func Close() error {
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return client.Disconnect(ctx)
	}
	return nil
}
