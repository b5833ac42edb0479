package graph

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/logger"
	"github.com/volgapavel/parsAZ/pkg/nlp"
)

// Builder orchestrates the full index build: parallel per-article
// extraction, single-threaded corpus reduction, then parallel relation
// labeling. The risk classifier and relation labeler are optional; their
// availability is fixed at construction.
type Builder struct {
	cfg         Config
	recognizer  nlp.EntityRecognizer
	risk        nlp.RiskClassifier
	labeler     nlp.RelationLabeler
	hasRisk     bool
	hasLabeler  bool
	concurrency int
}

// NewBuilderParams contains configuration for creating a Builder.
type NewBuilderParams struct {
	Config     Config
	Recognizer nlp.EntityRecognizer

	// Optional collaborators. A nil value disables the corresponding
	// pipeline stage entirely.
	Risk    nlp.RiskClassifier
	Labeler nlp.RelationLabeler

	// Concurrency bounds both the extraction and the labeling phase.
	// Values below 1 default to 4.
	Concurrency int
}

// NewBuilder creates a Builder, failing fast on a malformed configuration
// or a missing entity recognizer.
func NewBuilder(params NewBuilderParams) (*Builder, error) {
	if err := params.Config.Validate(); err != nil {
		return nil, err
	}
	if params.Recognizer == nil {
		return nil, errors.New("entity recognizer is required")
	}

	concurrency := params.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	return &Builder{
		cfg:         params.Config,
		recognizer:  params.Recognizer,
		risk:        params.Risk,
		labeler:     params.Labeler,
		hasRisk:     params.Risk != nil,
		hasLabeler:  params.Labeler != nil,
		concurrency: concurrency,
	}, nil
}

// Build turns a batch of articles into the person index. Articles whose
// extraction fails contribute nothing but still count towards the corpus
// size; the batch itself only fails on context cancellation.
func (b *Builder) Build(ctx context.Context, articles []common.Article) (*common.PersonIndex, error) {
	logger.Info("[Graph] Starting index build", "articles", len(articles), "concurrency", b.concurrency)

	results := make([]ArticleResult, len(articles))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.concurrency)

	for i, article := range articles {
		i, article := i, article
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := extractArticle(groupCtx, article, b.recognizer, b.risk, b.cfg)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.Warn("[Graph] Entity extraction failed", "article", article.ID, "error", err)
				results[i] = ArticleResult{Article: article}
				return nil
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	aggregator, err := NewCorpusAggregator(NewCorpusAggregatorParams{
		Config:       b.cfg,
		IncludeRisks: b.hasRisk,
	})
	if err != nil {
		return nil, err
	}
	for _, result := range results {
		aggregator.Accumulate(result)
	}

	index := aggregator.Finalize()
	logger.Info("[Graph] Index assembled", "persons", len(index.Persons))

	if b.hasLabeler {
		ApplyRelationLabels(ctx, index, b.labeler, b.cfg, b.concurrency)
	}

	return index, nil
}
