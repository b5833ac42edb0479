package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/volgapavel/parsAZ/pkg/common"
)

// Source reads articles from a CSV export. Column names vary between
// scrapers, so each standard field accepts several aliases; the first
// non-empty match wins.
type Source struct {
	path string
}

// NewSource creates a CSV article source for the given file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

var (
	titleColumns   = []string{"title", "headline", "name"}
	linkColumns    = []string{"link", "url", "source_url"}
	pubDateColumns = []string{"pub_date", "pubdate", "date", "datetime"}
	contentColumns = []string{"content", "text", "body", "description"}
	idColumns      = []string{"id", "article_id"}
)

func pick(row map[string]string, candidates []string) string {
	for _, c := range candidates {
		if v := row[c]; v != "" {
			return v
		}
	}
	return ""
}

// ListArticles reads up to limit articles from the file; a limit of 0 reads
// all rows. Rows missing an id column fall back to their row number.
func (s *Source) ListArticles(ctx context.Context, limit int) ([]common.Article, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open article csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var articles []common.Article
	for rowNum := 0; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && len(articles) >= limit {
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", rowNum, err)
		}

		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(field)
			}
		}

		id := pick(row, idColumns)
		if id == "" {
			id = strconv.Itoa(rowNum)
		}

		articles = append(articles, common.Article{
			ID:      id,
			Title:   pick(row, titleColumns),
			Link:    pick(row, linkColumns),
			PubDate: pick(row, pubDateColumns),
			Content: pick(row, contentColumns),
		})
	}

	return articles, nil
}
