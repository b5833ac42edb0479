package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/volgapavel/parsAZ/pkg/common"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// ArticleStore reads the scraped article corpus from PostgreSQL.
type ArticleStore struct {
	conn pgxIConn
}

// NewArticleStore creates an ArticleStore using an existing database
// connection or pool.
func NewArticleStore(conn pgxIConn) *ArticleStore {
	return &ArticleStore{conn: conn}
}

// ListArticles returns up to limit articles ordered by publication date,
// newest first. A limit of 0 returns all articles.
func (s *ArticleStore) ListArticles(ctx context.Context, limit int) ([]common.Article, error) {
	query := `
		SELECT id, title, link, COALESCE(pub_date, ''), content
		FROM articles
		ORDER BY pub_date DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []common.Article
	for rows.Next() {
		var a common.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Link, &a.PubDate, &a.Content); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

// CountArticles returns the total number of stored articles.
func (s *ArticleStore) CountArticles(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
