package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Turn roles stored in a story's generation context.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ContextTurn is one entry of the model conversation that produced the story.
// The full turn history is required to continue generation.
type ContextTurn struct {
	Role string `bson:"role" json:"role"`
	Text string `bson:"text" json:"text"`
}

// Translation memoizes the translated form of one segment.
type Translation struct {
	Index int    `bson:"index" json:"index"`
	Text  string `bson:"translation" json:"translation"`
}

// Story represents one serialized novel document.
type Story struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StoryID          string             `bson:"story_id" json:"story_id"`
	Title            string             `bson:"title" json:"title"`
	Segments         []string           `bson:"segments" json:"segments"`
	Context          []ContextTurn      `bson:"story_context" json:"-"`
	Components       Narrative          `bson:"story_components" json:"-"`
	Translations     []Translation      `bson:"translations" json:"-"`
	GenerationStatus bool               `bson:"generation_status" json:"generation_status"`
	Ended            bool               `bson:"ended" json:"ended"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// TranslationFor returns the memoized translation for a segment index.
func (s *Story) TranslationFor(index int) (string, bool) {
	for _, t := range s.Translations {
		if t.Index == index {
			return t.Text, true
		}
	}
	return "", false
}

// StoryFeedItem is the lightweight listing of one saved story.
type StoryFeedItem struct {
	StoryID string `bson:"story_id" json:"story_id"`
	Title   string `bson:"title" json:"title"`
	Ended   bool   `bson:"ended" json:"ended"`
}

// Opening is the parsed schema-constrained response of the very first
// generation call. All three fields are required.
type Opening struct {
	Title     string   `json:"title"`
	Story     string   `json:"story"`
	PoolWords []string `json:"pool_words"`
}
