package graph

import (
	"fmt"

	"github.com/go-playground/validator"
)

// Relation labels offered to the zero-shot classifier. The query layer maps
// them onto snake_case identifiers for presentation.
const (
	LabelMetWith     = "met with"
	LabelWorksFor    = "works for"
	LabelAppointedTo = "was appointed to"
)

// Config holds every tunable threshold of the index build. The defaults are
// empirically chosen for Azerbaijani news text; callers override individual
// fields rather than editing constants.
type Config struct {
	// Mentions with fewer normalized runes are discarded.
	MinEntityLen int `validate:"gte=1"`

	// Sentence splitting cap in runes.
	SentenceMaxLen int `validate:"gte=1"`

	// Caps on per-sentence pair generation and stored evidence.
	MaxEntitiesPerSentence int `validate:"gte=1"`
	MaxEvidencePerNeighbor int `validate:"gte=0"`

	// Edge filters.
	MinNeighborSupportArticles int     `validate:"gte=1"`
	MaxNeighborDFShare         float64 `validate:"gt=0,lte=1"`

	// Normalized neighbor displays dropped from every adjacency list.
	StopNeighbors []string

	// Normalized person keys that are generic titles, not individuals.
	StopPersons []string

	// Fuzzy clustering threshold for person surface keys.
	PersonFuzzySimThreshold float64 `validate:"gte=0,lte=1"`

	// Short-name merge gate.
	EnableShortnameMerge        bool
	PersonCanonicalMinTokens    int     `validate:"gte=1"`
	ShortnameMergeMinCooccur    int     `validate:"gte=1"`
	ShortnameMergeMinRatio      float64 `validate:"gt=0,lte=1"`
	ShortnameMergeSecondBestGap float64 `validate:"gte=1"`

	// Relation labeling.
	RelationLabels []string
	NLIThreshold   float64 `validate:"gte=0,lte=1"`

	// Risk aggregation.
	RiskMinScoreToStore    float64 `validate:"gte=0,lte=1"`
	RiskMaxEvidencePerType int     `validate:"gte=0"`
}

// DefaultConfig returns the tuned defaults for the Azerbaijani news corpus.
func DefaultConfig() Config {
	return Config{
		MinEntityLen:   3,
		SentenceMaxLen: 500,

		MaxEntitiesPerSentence: 10,
		MaxEvidencePerNeighbor: 3,

		MinNeighborSupportArticles: 2,
		MaxNeighborDFShare:         0.25,

		StopNeighbors: []string{
			"azərtac", "reuters", "bbc", "cnn",
			"facebook", "instagram", "telegram", "youtube", "tiktok",
		},
		StopPersons: []string{
			"prezident", "president", "президент",
			"prezidentin", "президента", "президентом",
			"cənab", "xanım",
		},

		PersonFuzzySimThreshold: 0.93,

		EnableShortnameMerge:        true,
		PersonCanonicalMinTokens:    2,
		ShortnameMergeMinCooccur:    3,
		ShortnameMergeMinRatio:      0.75,
		ShortnameMergeSecondBestGap: 1.5,

		RelationLabels: []string{LabelMetWith, LabelWorksFor, LabelAppointedTo},
		NLIThreshold:   0.82,

		RiskMinScoreToStore:    0.35,
		RiskMaxEvidencePerType: 3,
	}
}

var validate = validator.New()

// Validate fails fast on malformed thresholds so a bad configuration cannot
// silently produce an empty graph.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid graph config: %w", err)
	}
	return nil
}

func (c Config) stopPersonSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c.StopPersons))
	for _, p := range c.StopPersons {
		out[p] = struct{}{}
	}
	return out
}

func (c Config) stopNeighborSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c.StopNeighbors))
	for _, n := range c.StopNeighbors {
		out[n] = struct{}{}
	}
	return out
}
