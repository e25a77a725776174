// Package vocab implements the three-tier vocabulary pool operations: merging
// newly generated word pools into persistent state, user-driven moves between
// tiers, and the adaptive sizing of generation requests.
package vocab

import (
	"fmt"
	"math"
	"strings"

	"lingotale/models"
)

// QuotaReducer dampens how much graduated words grow the requested pool size,
// so the model is not asked for an oversized batch of brand-new words.
const QuotaReducer = 0.85

// ErrInvalidTier rejects a word move whose target is not a known tier name.
var ErrInvalidTier = fmt.Errorf("invalid word tier")

// RemoveCaseInsensitiveDuplicates drops later case-variant repeats of a word.
// The first-seen casing is preserved and insertion order kept.
func RemoveCaseInsensitiveDuplicates(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		folded := strings.ToLower(w)
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		result = append(result, w)
	}
	return result
}

// EditWords removes every word of toRemove from words (case-insensitive) and
// appends the toAdd words that are not already present.
func EditWords(words, toRemove, toAdd []string) []string {
	removable := make(map[string]struct{}, len(toRemove))
	for _, w := range toRemove {
		removable[strings.ToLower(w)] = struct{}{}
	}

	result := make([]string, 0, len(words)+len(toAdd))
	present := make(map[string]struct{}, len(words)+len(toAdd))
	for _, w := range words {
		folded := strings.ToLower(w)
		if _, drop := removable[folded]; drop {
			continue
		}
		result = append(result, w)
		present[folded] = struct{}{}
	}
	for _, w := range toAdd {
		folded := strings.ToLower(w)
		if _, drop := removable[folded]; drop {
			continue
		}
		if _, ok := present[folded]; ok {
			continue
		}
		result = append(result, w)
		present[folded] = struct{}{}
	}
	return result
}

// Reconcile merges a newly generated word pool into the stored pool and
// returns the next base tier: the union of the old base words and the new
// pool, deduplicated case-insensitively (first-seen casing wins), minus every
// word already promoted to the getting-used or comfortable tier.
// A nil pool means this is the first generation; the new pool becomes the
// base tier as-is (deduplicated).
func Reconcile(pool *models.Pool, generated []string) []string {
	if pool == nil {
		return RemoveCaseInsensitiveDuplicates(generated)
	}

	raw := make([]string, 0, len(pool.BaseWords)+len(generated))
	raw = append(raw, pool.BaseWords...)
	raw = append(raw, generated...)
	deduped := RemoveCaseInsensitiveDuplicates(raw)

	erase := make([]string, 0, len(pool.GettingUsedWords)+len(pool.ComfortableWords))
	erase = append(erase, pool.GettingUsedWords...)
	erase = append(erase, pool.ComfortableWords...)

	return EditWords(deduped, erase, nil)
}

// AdjustedQuota computes the pool size to request for the next generation.
// When either promoted tier has outgrown half the default quota, the request
// grows by a damped share of both promoted tiers; otherwise it stays at the
// default.
func AdjustedQuota(defaultSize int, pool *models.Pool) int {
	if pool == nil {
		return defaultSize
	}
	half := int(math.Ceil(float64(defaultSize) / 2))
	comfortable := len(pool.ComfortableWords)
	gettingUsed := len(pool.GettingUsedWords)
	if comfortable <= half && gettingUsed <= half {
		return defaultSize
	}
	quota := defaultSize
	quota += int(math.Round(float64(comfortable) * QuotaReducer))
	quota += int(math.Round(float64(gettingUsed) * QuotaReducer))
	return quota
}

// MoveWords reassigns the selected words to the target tier. Every selected
// word is first removed from all three tiers by exact match, then appended to
// the target, keeping the tiers disjoint. The returned pool is a new value;
// the input is not mutated.
func MoveWords(pool models.Pool, selected []string, target string) (models.Pool, error) {
	if !models.ValidTier(target) {
		return models.Pool{}, fmt.Errorf("%w: %q", ErrInvalidTier, target)
	}

	chosen := make(map[string]struct{}, len(selected))
	for _, w := range selected {
		chosen[w] = struct{}{}
	}
	strip := func(tier []string) []string {
		kept := make([]string, 0, len(tier))
		for _, w := range tier {
			if _, drop := chosen[w]; !drop {
				kept = append(kept, w)
			}
		}
		return kept
	}

	next := models.Pool{
		BaseWords:        strip(pool.BaseWords),
		GettingUsedWords: strip(pool.GettingUsedWords),
		ComfortableWords: strip(pool.ComfortableWords),
	}
	switch target {
	case models.TierBase:
		next.BaseWords = append(next.BaseWords, selected...)
	case models.TierGettingUsed:
		next.GettingUsedWords = append(next.GettingUsedWords, selected...)
	case models.TierComfortable:
		next.ComfortableWords = append(next.ComfortableWords, selected...)
	}
	return next, nil
}
