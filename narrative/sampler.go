package narrative

import (
	"math/rand"

	"lingotale/models"
	"lingotale/vocab"
)

const (
	// profileSample is how many stored profiles seed one directive.
	profileSample = 3
	// bucketSample caps how many tags of each merged bucket survive.
	bucketSample = 5
)

// BuildDirective samples stored narrative profiles into a single composite
// directive: up to three random profiles are merged bucket by bucket, each
// merged bucket deduplicated case-insensitively and trimmed to a random
// five-tag sample. The destination component is taken wholesale from the
// first sampled profile, or left as an empty placeholder when incomplete.
//
// The second return is false when no profiles exist: the caller must treat
// that as "not ready", not as an error. Two calls rarely build the same
// directive; the variety is intentional.
func BuildDirective(profiles []models.Narrative) (models.Narrative, bool) {
	if len(profiles) == 0 {
		return models.Narrative{}, false
	}

	sampled := sampleProfiles(profiles, profileSample)
	directive := models.NewNarrative()

	for _, name := range models.BucketNames {
		merged := []string{}
		for _, profile := range sampled {
			merged = append(merged, profile.Buckets[name]...)
		}
		directive.Buckets[name] = sampleBucket(merged, bucketSample)
	}

	dest := sampled[0].Destination
	if len(dest.Destinations) > 0 && len(dest.Characteristic) > 0 {
		directive.Destination = dest
	}
	return directive, true
}

// sampleProfiles picks up to n distinct profiles uniformly, via a shuffled
// copy of the input.
func sampleProfiles(profiles []models.Narrative, n int) []models.Narrative {
	shuffled := make([]models.Narrative, len(profiles))
	copy(shuffled, profiles)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// sampleBucket deduplicates a merged bucket case-insensitively and keeps a
// uniform sample of at most n tags.
func sampleBucket(values []string, n int) []string {
	deduped := vocab.RemoveCaseInsensitiveDuplicates(values)
	shuffled := make([]string, len(deduped))
	copy(shuffled, deduped)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
