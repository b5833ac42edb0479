package risk

import (
	"sort"
	"strings"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/nlp"
)

const (
	phraseConfidence = 0.85
	keywordStep      = 0.20
	keywordCap       = 0.95
)

// Classifier is a rule-based sentence risk classifier for Azerbaijani news
// text. Phrase hits score higher than loose keyword hits; multiple keyword
// hits of the same category stack up to a cap.
type Classifier struct {
	keywords map[string][]string
	phrases  map[string][]string
}

// NewClassifier creates a classifier with the built-in keyword and phrase
// tables.
func NewClassifier() *Classifier {
	return &Classifier{
		keywords: map[string][]string{
			"corruption":        {"rüşvət", "korrupsiya", "qanunsuz", "rüşvətxor"},
			"organized_crime":   {"mafiya", "cinayət", "band", "qrup"},
			"fraud":             {"saxtakarlıq", "aldatma", "fırıldaq", "saxta"},
			"money_laundering":  {"pul yıkama", "çirkli pul", "şübhəli əməliyyat"},
			"sanctions":         {"sanksiya", "qadağan", "məhdudlaşdır"},
			"legal_proceedings": {"məhkəmə", "ittiham", "istintaq", "həbs", "prokuror"},
		},
		phrases: map[string][]string{
			"corruption":        {"rüşvət alıb", "rüşvət verib", "korrupsiya törədib"},
			"sanctions":         {"sanksiya qoyulub", "sanksiya tətbiq", "sanksiya siyahısı"},
			"legal_proceedings": {"cinayət işi", "istintaq aparılır", "həbs olunub"},
			"money_laundering":  {"pul yuyulması", "çirkli pul"},
		},
	}
}

// ClassifySentence scans a sentence against the phrase and keyword tables
// and aggregates hits per risk category. The overall score is the mean of
// per-category confidences; no hits means a zero score at level LOW.
func (c *Classifier) ClassifySentence(sentence string) nlp.SentenceRisk {
	s := strings.ToLower(sentence)

	type typeHits struct {
		confidence float64
		matches    int
		matched    map[string]struct{}
	}
	byType := make(map[string]*typeHits)

	record := func(rtype string, confidence float64, matched []string) {
		hits := byType[rtype]
		if hits == nil {
			hits = &typeHits{matched: make(map[string]struct{})}
			byType[rtype] = hits
		}
		if confidence > hits.confidence {
			hits.confidence = confidence
		}
		hits.matches += len(matched)
		for _, m := range matched {
			hits.matched[m] = struct{}{}
		}
	}

	for rtype, phrases := range c.phrases {
		var matched []string
		for _, p := range phrases {
			if strings.Contains(s, p) {
				matched = append(matched, p)
			}
		}
		if len(matched) > 0 {
			record(rtype, phraseConfidence, matched)
		}
	}

	for rtype, keywords := range c.keywords {
		var matched []string
		for _, kw := range keywords {
			if strings.Contains(s, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			confidence := float64(len(matched)) * keywordStep
			if confidence > keywordCap {
				confidence = keywordCap
			}
			record(rtype, confidence, matched)
		}
	}

	var detected []nlp.DetectedRisk
	var sum float64
	for rtype, hits := range byType {
		matched := make([]string, 0, len(hits.matched))
		for m := range hits.matched {
			matched = append(matched, m)
		}
		sort.Strings(matched)
		detected = append(detected, nlp.DetectedRisk{
			Type:           rtype,
			Confidence:     hits.confidence,
			KeywordMatches: hits.matches,
			Matched:        matched,
		})
		sum += hits.confidence
	}
	sort.Slice(detected, func(i, j int) bool {
		return detected[i].Type < detected[j].Type
	})

	var overall float64
	if len(detected) > 0 {
		overall = sum / float64(len(detected))
	}

	return nlp.SentenceRisk{
		DetectedRisks:    detected,
		OverallRiskScore: overall,
		RiskLevel:        common.RiskLevelForScore(overall),
	}
}
