package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/volgapavel/parsAZ/pkg/common"
)

func sampleIndex() *common.PersonIndex {
	return &common.PersonIndex{
		Persons: map[string]*common.PersonNode{
			"ilham əliyev": {
				Display: "İlham Əliyev",
				Neighbors: map[string]*common.NeighborEdge{
					"socar": {
						Display:         "SOCAR",
						Type:            common.EntityOrganization,
						SupportArticles: 3,
						SupportMentions: 5,
						Score:           2.417,
						Evidence: []common.Evidence{
							{Sentence: "İlham Əliyev SOCAR rəhbəri ilə görüşüb.", ArticleID: "a1", Title: "Xəbər", Link: "https://example.az/a1"},
						},
						NLIRelation: &common.Relation{Label: "met with", Score: 0.91},
					},
				},
				Risks: &common.RiskProfile{
					OverallRiskScore: 0.4,
					RiskLevel:        common.RiskLevelMedium,
					ByType: map[string]common.RiskTypeStats{
						"corruption": {Hits: 2, Score: 0.85, SupportArticles: 2, Evidence: []common.Evidence{{Sentence: "...", ArticleID: "a2"}}},
					},
				},
			},
		},
	}
}

func TestSaveAndLoadIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "person_index.json")
	index := sampleIndex()

	if err := SaveIndex(index, path); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if !reflect.DeepEqual(index, loaded) {
		t.Errorf("round trip mismatch:\nsaved:  %#v\nloaded: %#v", index, loaded)
	}
}

func TestSaveIndexLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "person_index.json")

	if err := SaveIndex(sampleIndex(), path); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "person_index.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents: %v", names)
	}
}

func TestWriteSnapshotReplacesExistingFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "person_index.json")

	if err := SaveIndex(sampleIndex(), path); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	replacement, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if err := WriteSnapshot(replacement, path); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex after WriteSnapshot: %v", err)
	}
	if !reflect.DeepEqual(sampleIndex(), loaded) {
		t.Errorf("snapshot content mismatch: %#v", loaded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "person_index.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents: %v", names)
	}
}

func TestLoadIndexMissingFile(t *testing.T) {
	if _, err := LoadIndex(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
