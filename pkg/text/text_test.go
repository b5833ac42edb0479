package text

import (
	"reflect"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases and trims",
			in:   "  Elçin   Quliyev ",
			want: "elçin quliyev",
		},
		{
			name: "dotted capital I folds to plain i",
			in:   "İlham",
			want: "ilham",
		},
		{
			name: "fancy quotes are unified",
			in:   "«Azərbaycan» şirkəti’nin",
			want: `"azərbaycan" şirkəti'nin`,
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name:   "single sentence",
			text:   "Prezident görüş keçirib.",
			maxLen: 400,
			want:   []string{"Prezident görüş keçirib."},
		},
		{
			name:   "multiple sentences",
			text:   "Birinci cümlə. İkinci cümlə! Üçüncü cümlə?",
			maxLen: 400,
			want:   []string{"Birinci cümlə.", "İkinci cümlə!", "Üçüncü cümlə?"},
		},
		{
			name:   "newlines collapse into spaces",
			text:   "Birinci hissə\nikinci hissə. Sonra.",
			maxLen: 400,
			want:   []string{"Birinci hissə ikinci hissə.", "Sonra."},
		},
		{
			name:   "long sentence is truncated by rune count",
			text:   "əəəəəəəəəə.",
			maxLen: 4,
			want:   []string{"əəəə"},
		},
		{
			name:   "no terminal punctuation",
			text:   "başlıq sətri",
			maxLen: 400,
			want:   []string{"başlıq sətri"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text, tt.maxLen)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestContainsEntity(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		entity   string
		want     bool
	}{
		{
			name:     "exact containment",
			sentence: "Elçin Quliyev sərhəd xidmətinin rəisidir.",
			entity:   "Elçin Quliyev",
			want:     true,
		},
		{
			name:     "case and diacritic folding",
			sentence: "İLHAM ƏLİYEV çıxış edib.",
			entity:   "ilham əliyev",
			want:     true,
		},
		{
			name:     "absent entity",
			sentence: "Bu cümlədə başqa adam yoxdur.",
			entity:   "Elçin",
			want:     false,
		},
		{
			name:     "too short entity never matches",
			sentence: "AB sammiti keçirilib.",
			entity:   "AB",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsEntity(tt.sentence, tt.entity); got != tt.want {
				t.Errorf("ContainsEntity(%q, %q) = %v, want %v", tt.sentence, tt.entity, got, tt.want)
			}
		})
	}
}

func TestTokenCountAndLastToken(t *testing.T) {
	if got := TokenCount("  Elçin   Quliyev "); got != 2 {
		t.Errorf("TokenCount = %d, want 2", got)
	}
	if got := TokenCount(""); got != 0 {
		t.Errorf("TokenCount(empty) = %d, want 0", got)
	}
	if got := LastToken("Elçin Quliyev"); got != "Quliyev" {
		t.Errorf("LastToken = %q, want %q", got, "Quliyev")
	}
	if got := LastToken("   "); got != "" {
		t.Errorf("LastToken(blank) = %q, want empty", got)
	}
}

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "paşinyan", b: "paşinyan", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SimilarityRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("SimilarityRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	// Near-identical person keys should clear the default merge threshold,
	// clearly different ones should not.
	if got := SimilarityRatio("ilham əliyevin", "ilham əliyevi"); got < 0.93 {
		t.Errorf("SimilarityRatio(near-identical) = %v, want >= 0.93", got)
	}
	if got := SimilarityRatio("elçin quliyev", "elçin məmmədov"); got >= 0.93 {
		t.Errorf("SimilarityRatio(different persons) = %v, want < 0.93", got)
	}
}
