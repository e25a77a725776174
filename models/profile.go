package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RawTag is one heterogeneous tag record: a taxonomy path key and its value.
type RawTag struct {
	Key   string `bson:"key" json:"key"`
	Value string `bson:"value" json:"value"`
}

// EntitySummary is the search-result shape returned to the client.
type EntitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Type        string `json:"type"`
	ReleaseYear int    `json:"release_year,omitempty"`
}

// EntityInfo is the stored snapshot of the liked entity.
type EntityInfo struct {
	EntityID         string `bson:"entity_id" json:"entity_id"`
	Name             string `bson:"name" json:"name"`
	ImageURL         string `bson:"image_url" json:"image_url"`
	Type             string `bson:"type" json:"type"`
	ReleaseYear      int    `bson:"release_year,omitempty" json:"release_year,omitempty"`
	Description      string `bson:"description,omitempty" json:"description,omitempty"`
	ShortDescription string `bson:"short_description,omitempty" json:"short_description,omitempty"`
}

// Profile is one narrative taste entry, created when a user adds an entity
// to their preferences. Immutable once stored.
type Profile struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Entity             EntityInfo         `bson:"entity" json:"entity"`
	RawNarrativeTags   []RawTag           `bson:"raw_narrative_tags" json:"-"`
	RawRecommendedTags []RawTag           `bson:"raw_recommended_tags" json:"-"`
	Narrative          Narrative          `bson:"narrative" json:"narrative"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
}

// Prediction is one classifier verdict: the normalized tag text it was given
// back with the narrative bucket it was assigned to.
type Prediction struct {
	Text           string `json:"text"`
	PredictedLabel string `json:"predicted_label"`
}
