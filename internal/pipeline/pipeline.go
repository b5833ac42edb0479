package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volgapavel/parsAZ/internal/storage"
	"github.com/volgapavel/parsAZ/internal/util"
	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/graph"
	"github.com/volgapavel/parsAZ/pkg/logger"
	"github.com/volgapavel/parsAZ/pkg/nlp"
	"github.com/volgapavel/parsAZ/pkg/nlp/ner"
	"github.com/volgapavel/parsAZ/pkg/nlp/nli"
	"github.com/volgapavel/parsAZ/pkg/nlp/risk"
	"github.com/volgapavel/parsAZ/pkg/store"
	storecsv "github.com/volgapavel/parsAZ/pkg/store/csv"
	storepgx "github.com/volgapavel/parsAZ/pkg/store/pgx"
)

// Options overrides the environment-driven defaults for a single run.
// Zero values fall back to the corresponding environment variable.
type Options struct {
	Source     string // "postgres" or "csv"
	CSVPath    string
	Limit      int
	OutputPath string
	UploadKey  string // object storage key for the snapshot, empty skips upload
}

// Run loads the article corpus, builds the person index and persists it.
// The built index is returned for callers that serve it directly.
func Run(ctx context.Context, opts Options) (*common.PersonIndex, error) {
	source := opts.Source
	if source == "" {
		source = util.GetEnvString("ARTICLE_SOURCE", "csv")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = util.GetEnvInt("MAX_ARTICLES", 0)
	}
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = util.GetEnvString("INDEX_PATH", "person_index.json")
	}
	uploadKey := opts.UploadKey
	if uploadKey == "" {
		uploadKey = util.GetEnv("INDEX_S3_KEY")
	}

	articles, err := loadArticles(ctx, source, opts.CSVPath, limit)
	if err != nil {
		return nil, err
	}
	logger.Info("[Pipeline] Loaded articles", "source", source, "count", len(articles))

	builder, err := newBuilder()
	if err != nil {
		return nil, err
	}

	index, err := builder.Build(ctx, articles)
	if err != nil {
		return nil, fmt.Errorf("failed to build person index: %w", err)
	}

	if err := store.SaveIndex(index, outputPath); err != nil {
		return nil, err
	}
	logger.Info("[Pipeline] Index saved", "path", outputPath)

	if uploadKey != "" {
		if err := uploadSnapshot(ctx, outputPath, uploadKey); err != nil {
			logger.Warn("[Pipeline] Snapshot upload failed", "key", uploadKey, "error", err)
		} else {
			logger.Info("[Pipeline] Snapshot uploaded", "key", uploadKey)
		}
	}

	return index, nil
}

func loadArticles(ctx context.Context, source, csvPath string, limit int) ([]common.Article, error) {
	switch source {
	case "postgres":
		pool, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		return storepgx.NewArticleStore(pool).ListArticles(ctx, limit)
	case "csv":
		if csvPath == "" {
			csvPath = util.GetEnvString("CSV_PATH", "data/articles.csv")
		}
		return storecsv.NewSource(csvPath).ListArticles(ctx, limit)
	default:
		return nil, fmt.Errorf("unknown article source %q", source)
	}
}

func newBuilder() (*graph.Builder, error) {
	cfg := graph.DefaultConfig()
	cfg.NLIThreshold = util.GetEnvFloat("NLI_THRESHOLD", cfg.NLIThreshold)
	cfg.RiskMinScoreToStore = util.GetEnvFloat("RISK_MIN_SCORE", cfg.RiskMinScoreToStore)

	recognizer := ner.NewClient(ner.NewClientParams{
		BaseURL:    util.GetEnvString("NER_URL", "http://localhost:8000"),
		Timeout:    time.Duration(util.GetEnvInt("NER_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries: util.GetEnvInt("NER_MAX_RETRIES", 3),
	})

	var riskClassifier nlp.RiskClassifier
	if util.GetEnvBool("USE_RISK", true) {
		riskClassifier = risk.NewClassifier()
	}

	var labeler nlp.RelationLabeler
	if util.GetEnvBool("USE_NLI", true) {
		if nliURL := util.GetEnv("NLI_URL"); nliURL != "" {
			labeler = nli.NewClient(nli.NewClientParams{
				BaseURL:    nliURL,
				Timeout:    time.Duration(util.GetEnvInt("NLI_TIMEOUT_SECONDS", 60)) * time.Second,
				MaxRetries: util.GetEnvInt("NLI_MAX_RETRIES", 3),
			})
		}
	}

	return graph.NewBuilder(graph.NewBuilderParams{
		Config:      cfg,
		Recognizer:  recognizer,
		Risk:        riskClassifier,
		Labeler:     labeler,
		Concurrency: util.GetEnvInt("GRAPH_CONCURRENCY", 4),
	})
}

func uploadSnapshot(ctx context.Context, path, key string) error {
	client := storage.NewS3Client(ctx)
	if client == nil {
		return fmt.Errorf("failed to configure object storage client")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read index file: %w", err)
	}
	return storage.UploadIndex(ctx, client, key, data)
}
