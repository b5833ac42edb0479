package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/volgapavel/parsAZ/internal/pipeline"
	"github.com/volgapavel/parsAZ/pkg/logger"
)

// RebuildMessage asks the worker to rebuild the person index. Empty fields
// fall back to the worker's environment configuration.
type RebuildMessage struct {
	CorrelationID string `json:"correlation_id"`
	Source        string `json:"source,omitempty"`
	CSVPath       string `json:"csv_path,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	OutputPath    string `json:"output_path,omitempty"`
	UploadKey     string `json:"upload_key,omitempty"`
}

func ProcessRebuildMessage(ctx context.Context, body []byte) error {
	var msg RebuildMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to decode rebuild message: %w", err)
	}

	logger.Info("[Queue] Index rebuild requested",
		"correlation_id", msg.CorrelationID,
		"source", msg.Source,
		"limit", msg.Limit,
	)

	index, err := pipeline.Run(ctx, pipeline.Options{
		Source:     msg.Source,
		CSVPath:    msg.CSVPath,
		Limit:      msg.Limit,
		OutputPath: msg.OutputPath,
		UploadKey:  msg.UploadKey,
	})
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	logger.Info("[Queue] Index rebuild finished",
		"correlation_id", msg.CorrelationID,
		"persons", len(index.Persons),
	)
	return nil
}
