package graph

import (
	"math"
	"testing"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/nlp"
)

func newAggregator(t *testing.T, includeRisks bool) *CorpusAggregator {
	t.Helper()
	agg, err := NewCorpusAggregator(NewCorpusAggregatorParams{
		Config:       DefaultConfig(),
		IncludeRisks: includeRisks,
	})
	if err != nil {
		t.Fatalf("NewCorpusAggregator: %v", err)
	}
	return agg
}

func fillerResults(agg *CorpusAggregator, n int) {
	for i := 0; i < n; i++ {
		agg.Accumulate(ArticleResult{Article: common.Article{ID: "filler" + string(rune('a'+i))}})
	}
}

func TestAggregatorDropsStopListedAndTooCommonNeighbors(t *testing.T) {
	agg := newAggregator(t, false)

	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		mentions := []common.EntityMention{
			personMention("İlham Əliyev"),
			orgMention("Azərtac"),
		}
		sentences := []string{"İlham Əliyev Azərtac üçün müsahibə verib."}

		if i < 9 {
			mentions = append(mentions, orgMention("MegaCorp"))
			sentences = append(sentences, "İlham Əliyev MegaCorp haqqında danışıb.")
		}
		if i < 2 {
			mentions = append(mentions, orgMention("Nadir Holding"))
			sentences = append(sentences, "İlham Əliyev Nadir Holding ilə əməkdaşlıq edir.")
		}

		agg.Accumulate(ArticleResult{
			Article:   common.Article{ID: id},
			Mentions:  mentions,
			Sentences: sentences,
		})
	}

	index := agg.Finalize()

	person := index.Persons["ilham əliyev"]
	if person == nil {
		t.Fatalf("person missing from index: %#v", index.Persons)
	}

	if _, ok := person.Neighbors["azərtac"]; ok {
		t.Errorf("stop-listed neighbor present despite full co-occurrence")
	}
	// MegaCorp appears in 9 of 10 articles, above the 25% document
	// frequency share.
	if _, ok := person.Neighbors["megacorp"]; ok {
		t.Errorf("over-common neighbor present")
	}

	edge := person.Neighbors["nadir holding"]
	if edge == nil {
		t.Fatalf("specific neighbor missing: %#v", person.Neighbors)
	}
	if edge.SupportArticles != 2 {
		t.Errorf("support articles = %d, want 2", edge.SupportArticles)
	}
}

func TestAggregatorScoreFormulaAndMonotonicity(t *testing.T) {
	agg := newAggregator(t, false)

	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		mentions := []common.EntityMention{
			personMention("Vaqif Həsənov"),
			orgMention("Beta Group"),
		}
		sentences := []string{"Vaqif Həsənov Beta Group layihəsini təqdim edib."}
		if i < 2 {
			mentions = append(mentions, orgMention("Alfa Bank"))
			sentences = append(sentences, "Vaqif Həsənov Alfa Bank ilə müqavilə imzalayıb.")
		}
		agg.Accumulate(ArticleResult{
			Article:   common.Article{ID: id},
			Mentions:  mentions,
			Sentences: sentences,
		})
	}
	fillerResults(agg, 9)

	index := agg.Finalize()

	person := index.Persons["vaqif həsənov"]
	if person == nil {
		t.Fatalf("person missing from index")
	}
	alfa := person.Neighbors["alfa bank"]
	beta := person.Neighbors["beta group"]
	if alfa == nil || beta == nil {
		t.Fatalf("neighbors missing: %#v", person.Neighbors)
	}

	n := 12.0
	wantAlfa := math.Log1p(2) * (math.Log((n+1)/(2+1)) + 1)
	wantBeta := math.Log1p(3) * (math.Log((n+1)/(3+1)) + 1)

	if math.Abs(alfa.Score-wantAlfa) > 1e-9 {
		t.Errorf("alfa score = %v, want %v", alfa.Score, wantAlfa)
	}
	if math.Abs(beta.Score-wantBeta) > 1e-9 {
		t.Errorf("beta score = %v, want %v", beta.Score, wantBeta)
	}
	if beta.Score <= alfa.Score {
		t.Errorf("more supported edge scored lower: %v <= %v", beta.Score, alfa.Score)
	}
}

func TestAggregatorCountsDistinctArticlesNotMentions(t *testing.T) {
	agg := newAggregator(t, false)

	mentions := []common.EntityMention{
		personMention("Vaqif Həsənov"),
		orgMention("Alfa Bank"),
	}
	agg.Accumulate(ArticleResult{
		Article:  common.Article{ID: "a"},
		Mentions: mentions,
		Sentences: []string{
			"Vaqif Həsənov Alfa Bank sədri ilə danışıb.",
			"Vaqif Həsənov Alfa Bank layihəsindən danışıb.",
		},
	})
	agg.Accumulate(ArticleResult{
		Article:   common.Article{ID: "b"},
		Mentions:  mentions,
		Sentences: []string{"Vaqif Həsənov Alfa Bank filialını açıb."},
	})
	fillerResults(agg, 6)

	index := agg.Finalize()

	edge := index.Persons["vaqif həsənov"].Neighbors["alfa bank"]
	if edge == nil {
		t.Fatalf("edge missing")
	}
	if edge.SupportArticles != 2 {
		t.Errorf("support articles = %d, want 2", edge.SupportArticles)
	}
	if edge.SupportMentions != 3 {
		t.Errorf("support mentions = %d, want 3", edge.SupportMentions)
	}
	if len(edge.Evidence) != 3 {
		t.Errorf("evidence count = %d, want 3", len(edge.Evidence))
	}
}

func TestAggregatorSkipsStopPersons(t *testing.T) {
	agg := newAggregator(t, false)

	for i := 0; i < 2; i++ {
		agg.Accumulate(ArticleResult{
			Article: common.Article{ID: string(rune('a' + i))},
			Mentions: []common.EntityMention{
				personMention("Prezident"),
				orgMention("Alfa Bank"),
			},
			Sentences: []string{"Prezident Alfa Bank haqqında danışıb."},
		})
	}
	fillerResults(agg, 6)

	index := agg.Finalize()

	if len(index.Persons) != 0 {
		t.Errorf("generic title indexed as a person: %#v", index.Persons)
	}
}

func TestAggregatorMergesInflectedSurfaceForms(t *testing.T) {
	agg := newAggregator(t, false)

	base := []common.EntityMention{
		personMention("İlham Əliyev"),
		orgMention("Alfa Bank"),
	}
	agg.Accumulate(ArticleResult{
		Article:   common.Article{ID: "a"},
		Mentions:  base,
		Sentences: []string{"İlham Əliyev Alfa Bank rəhbəri ilə danışıb."},
	})
	agg.Accumulate(ArticleResult{
		Article: common.Article{ID: "b"},
		Mentions: []common.EntityMention{
			personMention("İlham Əliyevin"),
			orgMention("Alfa Bank"),
		},
		Sentences: []string{"İlham Əliyevin Alfa Bank səfəri başa çatıb."},
	})
	fillerResults(agg, 6)

	index := agg.Finalize()

	if len(index.Persons) != 1 {
		t.Fatalf("inflected forms produced %d persons, want 1", len(index.Persons))
	}
	person := index.Persons["ilham əliyev"]
	if person == nil {
		t.Fatalf("canonical key missing: %#v", index.Persons)
	}
	edge := person.Neighbors["alfa bank"]
	if edge == nil || edge.SupportArticles != 2 {
		t.Fatalf("merged person lost neighbor support: %#v", person.Neighbors)
	}
}

func TestAggregatorRiskBelowStorageThreshold(t *testing.T) {
	agg := newAggregator(t, true)

	mentions := []common.EntityMention{
		personMention("Vaqif Həsənov"),
		orgMention("Alfa Bank"),
	}
	lowRisk := []nlp.DetectedRisk{{Type: "corruption", Confidence: 0.20, KeywordMatches: 1, Matched: []string{"qanunsuz"}}}

	for i := 0; i < 2; i++ {
		id := string(rune('a' + i))
		result := ArticleResult{
			Article:   common.Article{ID: id},
			Mentions:  mentions,
			Sentences: []string{"Vaqif Həsənov Alfa Bank əməliyyatını qanunsuz adlandırıb."},
		}
		result.RiskHits = []RiskObservation{{
			PersonKey: "vaqif həsənov",
			Sentence:  result.Sentences[0],
			ArticleID: id,
			Overall:   0.20,
			Detected:  lowRisk,
		}}
		agg.Accumulate(result)
	}
	fillerResults(agg, 6)

	index := agg.Finalize()

	person := index.Persons["vaqif həsənov"]
	if person == nil || person.Risks == nil {
		t.Fatalf("person or risk profile missing")
	}
	if len(person.Risks.ByType) != 0 {
		t.Errorf("sub-threshold risks stored: %#v", person.Risks.ByType)
	}
	if person.Risks.RiskLevel != common.RiskLevelLow {
		t.Errorf("risk level = %q, want LOW", person.Risks.RiskLevel)
	}
}

func TestAggregatorRiskRemappedThroughAliases(t *testing.T) {
	agg := newAggregator(t, true)

	agg.Accumulate(ArticleResult{
		Article: common.Article{ID: "a"},
		Mentions: []common.EntityMention{
			personMention("İlham Əliyev"),
			orgMention("Alfa Bank"),
		},
		Sentences: []string{"İlham Əliyev Alfa Bank haqqında danışıb."},
	})

	inflected := ArticleResult{
		Article: common.Article{ID: "b"},
		Mentions: []common.EntityMention{
			personMention("İlham Əliyevin"),
			orgMention("Alfa Bank"),
		},
		Sentences: []string{"İlham Əliyevin barəsində cinayət işi açılıb, Alfa Bank araşdırılır."},
	}
	inflected.RiskHits = []RiskObservation{{
		PersonKey: "ilham əliyevin",
		Sentence:  inflected.Sentences[0],
		ArticleID: "b",
		Overall:   0.85,
		Detected: []nlp.DetectedRisk{
			{Type: "legal_proceedings", Confidence: 0.85, KeywordMatches: 1, Matched: []string{"cinayət işi"}},
		},
	}}
	agg.Accumulate(inflected)
	fillerResults(agg, 6)

	index := agg.Finalize()

	person := index.Persons["ilham əliyev"]
	if person == nil || person.Risks == nil {
		t.Fatalf("canonical person or risk profile missing")
	}
	stats, ok := person.Risks.ByType["legal_proceedings"]
	if !ok {
		t.Fatalf("risk collected under an inflected key was lost: %#v", person.Risks.ByType)
	}
	if stats.Score != 0.85 || stats.SupportArticles != 1 {
		t.Errorf("risk stats = %#v", stats)
	}
	if person.Risks.RiskLevel != common.RiskLevelCritical {
		t.Errorf("risk level = %q, want CRITICAL", person.Risks.RiskLevel)
	}
}

func TestAggregatorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinEntityLen = -1

	if _, err := NewCorpusAggregator(NewCorpusAggregatorParams{Config: cfg}); err == nil {
		t.Errorf("expected error for negative minimum entity length")
	}
}
