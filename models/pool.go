package models

// Word tier column names. These double as the API-facing target names for
// word moves, so they must stay in sync with the stored document fields.
const (
	TierBase        = "base_words"
	TierGettingUsed = "getting_used_words"
	TierComfortable = "comfortable_words"
)

// ValidTier reports whether target names one of the three word tiers.
func ValidTier(target string) bool {
	switch target {
	case TierBase, TierGettingUsed, TierComfortable:
		return true
	}
	return false
}

// Pool is the singleton three-tier vocabulary pool for the target language.
// The tiers are pairwise disjoint at rest.
type Pool struct {
	BaseWords        []string `bson:"base_words" json:"base_words"`
	GettingUsedWords []string `bson:"getting_used_words" json:"getting_used_words"`
	ComfortableWords []string `bson:"comfortable_words" json:"comfortable_words"`
}
