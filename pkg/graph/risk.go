package graph

import (
	"github.com/volgapavel/parsAZ/pkg/common"
)

// attachRiskProfiles folds sentence-level risk observations into a per
// person risk profile on the index. Observation keys are raw surface keys
// from extraction, so they are remapped through the alias resolver first;
// otherwise a person mentioned under an inflected form would lose risk
// signal collected under that form.
func attachRiskProfiles(index *common.PersonIndex, results []ArticleResult, resolve func(string) string, cfg Config) {
	type typeAgg struct {
		hits            int
		score           float64
		supportArticles map[string]struct{}
		evidence        []common.Evidence
	}
	type personAgg struct {
		typeOrder     []string
		byType        map[string]*typeAgg
		overallScores []float64
	}

	aggregates := make(map[string]*personAgg)

	for _, res := range results {
		for _, obs := range res.RiskHits {
			key := resolve(obs.PersonKey)

			agg := aggregates[key]
			if agg == nil {
				agg = &personAgg{byType: make(map[string]*typeAgg)}
				aggregates[key] = agg
			}
			agg.overallScores = append(agg.overallScores, obs.Overall)

			for _, detected := range obs.Detected {
				if detected.Confidence < cfg.RiskMinScoreToStore {
					continue
				}

				bucket := agg.byType[detected.Type]
				if bucket == nil {
					bucket = &typeAgg{supportArticles: make(map[string]struct{})}
					agg.byType[detected.Type] = bucket
					agg.typeOrder = append(agg.typeOrder, detected.Type)
				}

				bucket.hits++
				if detected.Confidence > bucket.score {
					bucket.score = detected.Confidence
				}
				if obs.ArticleID != "" {
					bucket.supportArticles[obs.ArticleID] = struct{}{}
				}
				if len(bucket.evidence) < cfg.RiskMaxEvidencePerType {
					bucket.evidence = append(bucket.evidence, common.Evidence{
						Sentence:  obs.Sentence,
						ArticleID: obs.ArticleID,
						Title:     obs.Title,
						Link:      obs.Link,
					})
				}
			}
		}
	}

	for key, node := range index.Persons {
		profile := &common.RiskProfile{
			RiskLevel: common.RiskLevelLow,
			ByType:    make(map[string]common.RiskTypeStats),
		}
		node.Risks = profile

		agg := aggregates[key]
		if agg == nil {
			continue
		}

		var overall float64
		if len(agg.overallScores) > 0 {
			var sum float64
			for _, s := range agg.overallScores {
				sum += s
			}
			overall = sum / float64(len(agg.overallScores))
		}

		for _, rtype := range agg.typeOrder {
			bucket := agg.byType[rtype]
			profile.ByType[rtype] = common.RiskTypeStats{
				Hits:            bucket.hits,
				Score:           bucket.score,
				SupportArticles: len(bucket.supportArticles),
				Evidence:        bucket.evidence,
			}
		}

		profile.OverallRiskScore = overall
		profile.RiskLevel = common.RiskLevelForScore(overall)
	}
}
