package graph

import (
	"context"
	"unicode/utf8"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/nlp"
	"github.com/volgapavel/parsAZ/pkg/text"
)

// RiskObservation is one sentence-level risk classifier hit for a person,
// keyed by the raw surface key. Keys are remapped through the alias map
// during reduction so aliased surface forms share one risk profile.
type RiskObservation struct {
	PersonKey string
	Sentence  string
	ArticleID string
	Title     string
	Link      string
	Overall   float64
	Detected  []nlp.DetectedRisk
}

// ArticleResult is the output of the per-article extraction phase. Results
// are independent of each other, so extraction parallelizes freely; all
// cross-article state lives in the reduction phase.
type ArticleResult struct {
	Article   common.Article
	Mentions  []common.EntityMention
	Sentences []string
	RiskHits  []RiskObservation
}

// filterMentions keeps mentions with a known entity type and a normalized
// length of at least minLen runes. Unknown types are excluded, not coerced.
func filterMentions(mentions []nlp.Mention, minLen int) []common.EntityMention {
	var out []common.EntityMention
	for _, m := range mentions {
		etype, ok := common.ParseEntityType(m.Type)
		if !ok {
			continue
		}
		if utf8.RuneCountInString(text.Normalize(m.Name)) < minLen {
			continue
		}
		out = append(out, common.EntityMention{
			Name:       m.Name,
			Type:       etype,
			Confidence: m.Confidence,
			Start:      m.Start,
			End:        m.End,
		})
	}
	return out
}

// orderedPersons collects distinct person surface keys from mentions in
// first-seen order, keeping the raw display text.
func orderedPersons(mentions []common.EntityMention) ([]string, map[string]string) {
	var order []string
	displays := make(map[string]string)
	for _, m := range mentions {
		if m.Type != common.EntityPerson {
			continue
		}
		key := text.NormalizeKey(m.Name)
		if _, ok := displays[key]; !ok {
			order = append(order, key)
		}
		displays[key] = m.Name
	}
	return order, displays
}

// extractArticle runs phase one for a single article: entity recognition,
// type and length filtering, sentence splitting, and per-sentence risk
// classification for every person present in the sentence.
func extractArticle(
	ctx context.Context,
	article common.Article,
	recognizer nlp.EntityRecognizer,
	riskClassifier nlp.RiskClassifier,
	cfg Config,
) (ArticleResult, error) {
	result := ArticleResult{Article: article}

	raw, err := recognizer.Extract(ctx, article.Content)
	if err != nil {
		return result, err
	}

	result.Mentions = filterMentions(raw, cfg.MinEntityLen)
	result.Sentences = text.SplitSentences(article.Content, cfg.SentenceMaxLen)

	if riskClassifier == nil || len(result.Sentences) == 0 {
		return result, nil
	}

	personOrder, personDisplays := orderedPersons(result.Mentions)
	for _, key := range personOrder {
		display := personDisplays[key]
		for _, sentence := range result.Sentences {
			if !text.ContainsEntity(sentence, display) {
				continue
			}
			risk := riskClassifier.ClassifySentence(sentence)
			if len(risk.DetectedRisks) == 0 {
				continue
			}
			result.RiskHits = append(result.RiskHits, RiskObservation{
				PersonKey: key,
				Sentence:  sentence,
				ArticleID: article.ID,
				Title:     article.Title,
				Link:      article.Link,
				Overall:   risk.OverallRiskScore,
				Detected:  risk.DetectedRisks,
			})
		}
	}

	return result, nil
}
