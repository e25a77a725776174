// Package taxonomy parses the delimited taxonomy path keys that tag records
// are keyed by, e.g. "urn:tag:plot:qloo" -> subtype "plot", source "qloo".
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the segments of a taxonomy path key.
const Delimiter = ":"

// Well-known tag type keys used for direct bucket mapping and filtering.
const (
	TagPlot             = "urn:tag:plot:qloo"
	TagCharacter        = "urn:tag:character:qloo"
	TagAudience         = "urn:tag:audience:qloo"
	TagTheme            = "urn:tag:theme:qloo"
	TagCharacteristic   = "urn:tag:characteristic:qloo"
	TagMusicGenre       = "urn:tag:genre:music"
	TagDestinationGenre = "urn:tag:genre:destination"
	TagStreamingService = "urn:tag:streaming_service:media"
	TagWikipedia        = "urn:tag:wikipedia_category:wikidata"
)

// ErrUnrecognizedKey marks a taxonomy key with too few segments to carry a
// tag type. Callers log and skip these, never fail on them.
var ErrUnrecognizedKey = errors.New("unrecognized taxonomy key")

// Key is a parsed taxonomy path. Source may be empty for three-segment keys.
type Key struct {
	Namespace string
	Category  string
	Subtype   string
	Source    string
}

// Parse splits a taxonomy path key into its segments. Keys with fewer than
// three segments are rejected with ErrUnrecognizedKey.
func Parse(raw string) (Key, error) {
	parts := strings.Split(raw, Delimiter)
	if len(parts) < 3 {
		return Key{}, fmt.Errorf("%w: %q", ErrUnrecognizedKey, raw)
	}
	k := Key{
		Namespace: parts[0],
		Category:  parts[1],
		Subtype:   parts[2],
	}
	if len(parts) > 3 {
		k.Source = parts[3]
	}
	return k, nil
}

// ValueSegment extracts the value from a normalized "subtype:source:value"
// tag string, the format the classifier echoes back. Text with fewer than
// three segments is rejected with ErrUnrecognizedKey.
func ValueSegment(text string) (string, error) {
	parts := strings.Split(text, Delimiter)
	if len(parts) < 3 {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedKey, text)
	}
	return parts[2], nil
}

// StripEntityURN turns "urn:entity:book" into "book". Unknown shapes come
// back as "N/A", matching the search result contract.
func StripEntityURN(urn string) string {
	if trimmed := strings.TrimPrefix(urn, "urn:entity:"); trimmed != "" && trimmed != urn {
		return trimmed
	}
	return "N/A"
}
