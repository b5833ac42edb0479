package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/volgapavel/parsAZ/pkg/common"
)

// ArticleSource loads the article corpus for an index build. A limit of 0
// loads everything.
type ArticleSource interface {
	ListArticles(ctx context.Context, limit int) ([]common.Article, error)
}

// SaveIndex serializes the person index to path. The file is written to a
// temporary sibling and renamed into place, so a failed build never leaves
// a partially written index behind.
func SaveIndex(index *common.PersonIndex, path string) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode person index: %w", err)
	}
	return WriteSnapshot(data, path)
}

// WriteSnapshot writes already-serialized index bytes to path with the
// same temp-file-plus-rename scheme as SaveIndex, so readers never see a
// partially written index.
func WriteSnapshot(data []byte, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".person_index-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

// LoadIndex reads a serialized person index from path.
func LoadIndex(path string) (*common.PersonIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var index common.PersonIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to decode index file: %w", err)
	}
	if index.Persons == nil {
		index.Persons = make(map[string]*common.PersonNode)
	}
	return &index, nil
}
