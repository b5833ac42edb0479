package nlp

import (
	"context"
)

// Mention is a single entity occurrence found in a piece of text.
type Mention struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// DetectedRisk describes one risk category detected in a sentence.
type DetectedRisk struct {
	Type           string   `json:"type"`
	Confidence     float64  `json:"confidence"`
	KeywordMatches int      `json:"keyword_matches"`
	Matched        []string `json:"matched"`
}

// SentenceRisk is the per-sentence output of a risk classifier.
type SentenceRisk struct {
	DetectedRisks    []DetectedRisk `json:"detected_risks"`
	OverallRiskScore float64        `json:"overall_risk_score"`
	RiskLevel        string         `json:"risk_level"`
}

// RelationQuery asks a relation labeler to score candidate labels for an
// entity pair inside a single sentence.
type RelationQuery struct {
	Sentence        string   `json:"sentence"`
	Head            string   `json:"head"`
	Tail            string   `json:"tail"`
	HeadType        string   `json:"head_type"`
	TailType        string   `json:"tail_type"`
	CandidateLabels []string `json:"candidate_labels"`
}

// RelationPrediction is the best label for a RelationQuery together with
// the model confidence.
type RelationPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EntityRecognizer extracts named entity mentions from raw text.
type EntityRecognizer interface {
	Extract(ctx context.Context, text string) ([]Mention, error)
}

// RiskClassifier scores a single sentence for risk signals.
// Implementations must be safe for concurrent use.
type RiskClassifier interface {
	ClassifySentence(sentence string) SentenceRisk
}

// RelationLabeler scores candidate relation labels for an entity pair.
// A nil prediction with nil error means the labeler abstained.
type RelationLabeler interface {
	Label(ctx context.Context, query RelationQuery) (*RelationPrediction, error)
}
