package models

import "strings"

// BucketNames lists every narrative-role bucket a profile or directive carries.
// Consumers rely on all of these keys being present, so the list is the single
// source of truth for initialization, merging and sampling.
var BucketNames = []string{
	"audience",
	"characters",
	"characters_archetype",
	"characters_description",
	"characters_elements",
	"characters_related_nouns",
	"characters_relationship",
	"characters_role",
	"plot_archetype",
	"plot_description",
	"settings_description",
	"settings_places",
	"settings_styles",
	"settings_time",
	"story_genre",
	"story_pace",
	"story_style",
	"story_subgenre",
	"story_theme",
	"story_tone",
	"story_topic",
}

// Destination holds the travel-flavored setting hints taken from a
// cross-domain destination entity.
type Destination struct {
	Destinations   []string `bson:"destinations" json:"destinations"`
	Characteristic []string `bson:"characteristic" json:"characteristic"`
}

// Narrative is the bucketed tag map derived from one liked entity, and also
// the shape of a sampled story directive. Every bucket key is always present,
// possibly with an empty slice.
type Narrative struct {
	Buckets     map[string][]string `bson:"buckets" json:"buckets"`
	Destination Destination         `bson:"story_destination" json:"story_destination"`
}

// NewNarrative returns a narrative with every bucket initialized empty.
func NewNarrative() Narrative {
	buckets := make(map[string][]string, len(BucketNames))
	for _, name := range BucketNames {
		buckets[name] = []string{}
	}
	return Narrative{
		Buckets: buckets,
		Destination: Destination{
			Destinations:   []string{},
			Characteristic: []string{},
		},
	}
}

// IsBucket reports whether name is one of the known narrative buckets.
func IsBucket(name string) bool {
	for _, b := range BucketNames {
		if b == name {
			return true
		}
	}
	return false
}

// First returns the first element of the named bucket, or the empty string.
func (n Narrative) First(name string) string {
	if vals := n.Buckets[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// At returns the i-th element of the named bucket, or the empty string.
func (n Narrative) At(name string, i int) string {
	if vals := n.Buckets[name]; i < len(vals) {
		return vals[i]
	}
	return ""
}

// Slice returns bucket elements from index i (clamped), joined by commas.
// Mirrors how directive clauses quote several tags at once.
func (n Narrative) Slice(name string, i int) string {
	vals := n.Buckets[name]
	if i >= len(vals) {
		return ""
	}
	return strings.Join(vals[i:], ",")
}

// Range joins bucket elements in [i, j) by commas, clamping both ends.
func (n Narrative) Range(name string, i, j int) string {
	vals := n.Buckets[name]
	if i >= len(vals) {
		return ""
	}
	if j > len(vals) {
		j = len(vals)
	}
	return strings.Join(vals[i:j], ",")
}
