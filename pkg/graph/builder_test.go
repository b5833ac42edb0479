package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/nlp"
)

// stubRecognizer returns canned mentions keyed by article content.
type stubRecognizer struct {
	byContent map[string][]nlp.Mention
	failOn    string
}

func (s *stubRecognizer) Extract(ctx context.Context, text string) ([]nlp.Mention, error) {
	if s.failOn != "" && text == s.failOn {
		return nil, errors.New("recognizer unavailable")
	}
	return s.byContent[text], nil
}

// stubRiskClassifier flags every sentence containing a marker word.
type stubRiskClassifier struct {
	marker string
}

func (s *stubRiskClassifier) ClassifySentence(sentence string) nlp.SentenceRisk {
	if !strings.Contains(sentence, s.marker) {
		return nlp.SentenceRisk{RiskLevel: common.RiskLevelLow}
	}
	return nlp.SentenceRisk{
		DetectedRisks: []nlp.DetectedRisk{
			{Type: "corruption", Confidence: 0.80, KeywordMatches: 1, Matched: []string{s.marker}},
		},
		OverallRiskScore: 0.80,
		RiskLevel:        common.RiskLevelCritical,
	}
}

func TestBuilderEndToEnd(t *testing.T) {
	const story = "İlham Əliyev SOCAR şirkətində prezident kimi çalışır."
	mentions := []nlp.Mention{
		{Name: "İlham Əliyev", Type: "person", Confidence: 0.99},
		{Name: "SOCAR", Type: "organization", Confidence: 0.97},
	}

	var articles []common.Article
	for i := 0; i < 3; i++ {
		articles = append(articles, common.Article{
			ID:      "story" + string(rune('a'+i)),
			Title:   "Xəbər",
			Link:    "https://example.az/" + string(rune('a'+i)),
			Content: story,
		})
	}
	for i := 0; i < 9; i++ {
		articles = append(articles, common.Article{
			ID:      "filler" + string(rune('a'+i)),
			Content: "Hava proqnozu dəyişib.",
		})
	}

	builder, err := NewBuilder(NewBuilderParams{
		Config:      DefaultConfig(),
		Recognizer:  &stubRecognizer{byContent: map[string][]nlp.Mention{story: mentions}},
		Risk:        &stubRiskClassifier{marker: "çalışır"},
		Labeler:     &countingLabeler{prediction: &nlp.RelationPrediction{Label: LabelWorksFor, Score: 0.90}},
		Concurrency: 4,
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	index, err := builder.Build(context.Background(), articles)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	person := index.Persons["ilham əliyev"]
	if person == nil {
		t.Fatalf("person missing: %#v", index.Persons)
	}

	edge := person.Neighbors["socar"]
	if edge == nil {
		t.Fatalf("neighbor missing: %#v", person.Neighbors)
	}
	if edge.SupportArticles != 3 {
		t.Errorf("support articles = %d, want 3", edge.SupportArticles)
	}
	if edge.NLIRelation == nil || edge.NLIRelation.Label != LabelWorksFor {
		t.Errorf("relation label missing: %#v", edge.NLIRelation)
	}

	if person.Risks == nil {
		t.Fatalf("risk profile missing")
	}
	if person.Risks.RiskLevel != common.RiskLevelCritical {
		t.Errorf("risk level = %q, want CRITICAL", person.Risks.RiskLevel)
	}
	stats := person.Risks.ByType["corruption"]
	if stats.Hits != 3 || stats.SupportArticles != 3 {
		t.Errorf("risk stats = %#v", stats)
	}
}

func TestBuilderToleratesRecognizerFailure(t *testing.T) {
	const story = "Vaqif Həsənov Alfa Bank sədri ilə danışıb."
	mentions := []nlp.Mention{
		{Name: "Vaqif Həsənov", Type: "person", Confidence: 0.98},
		{Name: "Alfa Bank", Type: "organization", Confidence: 0.95},
	}

	articles := []common.Article{
		{ID: "a", Content: story},
		{ID: "b", Content: story},
		{ID: "broken", Content: "pozulmuş məqalə"},
	}
	for i := 0; i < 5; i++ {
		articles = append(articles, common.Article{ID: "filler" + string(rune('a'+i)), Content: "Adi xəbər."})
	}

	builder, err := NewBuilder(NewBuilderParams{
		Config: DefaultConfig(),
		Recognizer: &stubRecognizer{
			byContent: map[string][]nlp.Mention{story: mentions},
			failOn:    "pozulmuş məqalə",
		},
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	index, err := builder.Build(context.Background(), articles)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	person := index.Persons["vaqif həsənov"]
	if person == nil {
		t.Fatalf("person missing after partial failure")
	}
	if person.Risks != nil {
		t.Errorf("risk profile attached without a risk classifier")
	}
}

func TestBuilderUnknownEntityTypesExcluded(t *testing.T) {
	const story = "Vaqif Həsənov Alfa Bank sədri ilə danışıb."
	mentions := []nlp.Mention{
		{Name: "Vaqif Həsənov", Type: "person", Confidence: 0.98},
		{Name: "Alfa Bank", Type: "organization", Confidence: 0.95},
		{Name: "Danışıb", Type: "misc", Confidence: 0.90},
	}

	articles := []common.Article{
		{ID: "a", Content: story},
		{ID: "b", Content: story},
	}
	for i := 0; i < 6; i++ {
		articles = append(articles, common.Article{ID: "filler" + string(rune('a'+i)), Content: "Adi xəbər."})
	}

	builder, err := NewBuilder(NewBuilderParams{
		Config:     DefaultConfig(),
		Recognizer: &stubRecognizer{byContent: map[string][]nlp.Mention{story: mentions}},
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	index, err := builder.Build(context.Background(), articles)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	person := index.Persons["vaqif həsənov"]
	if person == nil {
		t.Fatalf("person missing")
	}
	if _, ok := person.Neighbors["danışıb"]; ok {
		t.Errorf("unknown entity type leaked into the graph")
	}
}
