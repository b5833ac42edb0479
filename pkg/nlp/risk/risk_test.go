package risk

import (
	"math"
	"reflect"
	"testing"

	"github.com/volgapavel/parsAZ/pkg/nlp"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClassifySentenceNoHits(t *testing.T) {
	c := NewClassifier()
	got := c.ClassifySentence("Prezident rəsmi səfərə yola düşüb.")
	if len(got.DetectedRisks) != 0 {
		t.Errorf("DetectedRisks = %#v, want empty", got.DetectedRisks)
	}
	if got.OverallRiskScore != 0 {
		t.Errorf("OverallRiskScore = %v, want 0", got.OverallRiskScore)
	}
	if got.RiskLevel != "LOW" {
		t.Errorf("RiskLevel = %q, want LOW", got.RiskLevel)
	}
}

func TestClassifySentencePhraseDominatesKeyword(t *testing.T) {
	c := NewClassifier()
	got := c.ClassifySentence("Məmur rüşvət alıb və vəzifəsindən azad edilib.")

	if len(got.DetectedRisks) != 1 {
		t.Fatalf("DetectedRisks count = %d, want 1", len(got.DetectedRisks))
	}
	d := got.DetectedRisks[0]
	if d.Type != "corruption" {
		t.Errorf("type = %q, want corruption", d.Type)
	}
	// Phrase hit wins over the weaker keyword hit of the same category;
	// both still count as matches.
	if !almostEqual(d.Confidence, 0.85) {
		t.Errorf("confidence = %v, want 0.85", d.Confidence)
	}
	if d.KeywordMatches != 2 {
		t.Errorf("keyword matches = %d, want 2", d.KeywordMatches)
	}
	if !reflect.DeepEqual(d.Matched, []string{"rüşvət", "rüşvət alıb"}) {
		t.Errorf("matched = %#v", d.Matched)
	}
	if got.RiskLevel != "CRITICAL" {
		t.Errorf("RiskLevel = %q, want CRITICAL", got.RiskLevel)
	}
}

func TestClassifySentenceKeywordStacking(t *testing.T) {
	c := NewClassifier()
	got := c.ClassifySentence("Məhkəmə ittiham aktını təsdiqləyib, istintaq davam edir.")

	var legal *nlp.DetectedRisk
	for i := range got.DetectedRisks {
		if got.DetectedRisks[i].Type == "legal_proceedings" {
			legal = &got.DetectedRisks[i]
		}
	}
	if legal == nil {
		t.Fatalf("legal_proceedings not detected: %#v", got.DetectedRisks)
	}
	if legal.KeywordMatches != 3 {
		t.Errorf("keyword matches = %d, want 3", legal.KeywordMatches)
	}
	if !almostEqual(legal.Confidence, 0.60) {
		t.Errorf("confidence = %v, want 0.60", legal.Confidence)
	}
}

func TestClassifySentenceOverallIsMeanOfTypes(t *testing.T) {
	c := NewClassifier()
	got := c.ClassifySentence("Onun barəsində cinayət işi açılıb.")

	// "cinayət işi" is a legal_proceedings phrase, "cinayət" alone is an
	// organized_crime keyword.
	if len(got.DetectedRisks) != 2 {
		t.Fatalf("DetectedRisks count = %d, want 2: %#v", len(got.DetectedRisks), got.DetectedRisks)
	}
	want := (0.85 + 0.20) / 2
	if !almostEqual(got.OverallRiskScore, want) {
		t.Errorf("OverallRiskScore = %v, want %v", got.OverallRiskScore, want)
	}
	if got.RiskLevel != "HIGH" {
		t.Errorf("RiskLevel = %q, want HIGH", got.RiskLevel)
	}
}

func TestClassifySentenceKeywordCap(t *testing.T) {
	c := NewClassifier()
	got := c.ClassifySentence("məhkəmə ittiham istintaq həbs prokuror")

	var legal *nlp.DetectedRisk
	for i := range got.DetectedRisks {
		if got.DetectedRisks[i].Type == "legal_proceedings" {
			legal = &got.DetectedRisks[i]
		}
	}
	if legal == nil {
		t.Fatalf("legal_proceedings not detected")
	}
	if !almostEqual(legal.Confidence, 0.95) {
		t.Errorf("confidence = %v, want capped at 0.95", legal.Confidence)
	}
}
