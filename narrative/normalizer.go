// Package narrative turns raw tagged entity data into bucketed narrative
// profiles and samples stored profiles into a single story directive.
package narrative

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"lingotale/models"
	"lingotale/taxonomy"
)

// FormatTags converts raw tag records into normalized "subtype:source:value"
// strings for the classifier. Values are deduplicated case-insensitively,
// first occurrence wins, insertion order preserved. Records whose taxonomy
// key cannot be parsed are logged and skipped, never fatal.
func FormatTags(raw []models.RawTag) []string {
	seen := make(map[string]struct{}, len(raw))
	formatted := make([]string, 0, len(raw))

	for _, tag := range raw {
		key, err := taxonomy.Parse(tag.Key)
		if err != nil {
			log.Warn().Str("key", tag.Key).Msg("skipping tag with unexpected taxonomy key")
			continue
		}
		folded := strings.ToLower(tag.Value)
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		formatted = append(formatted, fmt.Sprintf("%s:%s:%s", key.Subtype, key.Source, tag.Value))
	}
	return formatted
}

// FilterValues returns the values of every raw tag whose taxonomy key exactly
// matches the given key, in input order.
func FilterValues(tags []models.RawTag, key string) []string {
	values := []string{}
	for _, tag := range tags {
		if tag.Key == key {
			values = append(values, tag.Value)
		}
	}
	return values
}

// ApplyPredictions folds classifier verdicts into the narrative. Each
// prediction's text is a normalized "subtype:source:value" tag; its value is
// appended to the bucket named by the predicted label. Unrecognized labels
// are dropped, malformed tag text is logged and skipped.
func ApplyPredictions(n *models.Narrative, predictions []models.Prediction) {
	for _, pred := range predictions {
		value, err := taxonomy.ValueSegment(pred.Text)
		if err != nil {
			log.Warn().Str("tag", pred.Text).Msg("skipping classifier result with unexpected tag format")
			continue
		}
		if !models.IsBucket(pred.PredictedLabel) {
			continue
		}
		n.Buckets[pred.PredictedLabel] = append(n.Buckets[pred.PredictedLabel], value)
	}
}

// MapDirectBuckets fills the buckets whose taxonomy tag type is known ahead
// of time, without classifier help.
func MapDirectBuckets(n *models.Narrative, raw []models.RawTag) {
	n.Buckets["plot_description"] = FilterValues(raw, taxonomy.TagPlot)
	n.Buckets["characters_description"] = FilterValues(raw, taxonomy.TagCharacter)
	n.Buckets["audience"] = FilterValues(raw, taxonomy.TagAudience)
	n.Buckets["story_theme"] = FilterValues(raw, taxonomy.TagTheme)
}
