package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/volgapavel/parsAZ/internal/queue"
	"github.com/volgapavel/parsAZ/internal/server/middleware"
	"github.com/volgapavel/parsAZ/pkg/logger"
)

// RebuildIndexHandler enqueues a full index rebuild for the worker.
func RebuildIndexHandler(c echo.Context) error {
	type rebuildIndexBody struct {
		Source     string `json:"source"`
		CSVPath    string `json:"csv_path"`
		Limit      int    `json:"limit"`
		OutputPath string `json:"output_path"`
		UploadKey  string `json:"upload_key"`
	}

	type rebuildIndexResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data := new(rebuildIndexBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, rebuildIndexResponse{
			Message: "Invalid request body",
		})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, rebuildIndexResponse{
			Message: "Internal server error",
		})
	}

	msg := queue.RebuildMessage{
		CorrelationID: correlationID,
		Source:        data.Source,
		CSVPath:       data.CSVPath,
		Limit:         data.Limit,
		OutputPath:    data.OutputPath,
		UploadKey:     data.UploadKey,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, rebuildIndexResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if ch == nil {
		return c.JSON(http.StatusServiceUnavailable, rebuildIndexResponse{
			Message: "Queue not available",
		})
	}
	if err := queue.PublishFIFO(ch, queue.RebuildQueue, body); err != nil {
		logger.Error("Failed to publish rebuild message", "err", err)
		return c.JSON(http.StatusInternalServerError, rebuildIndexResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, rebuildIndexResponse{
		Message:       "Rebuild enqueued",
		CorrelationID: correlationID,
	})
}

// ReloadIndexHandler swaps in the latest index snapshot from disk.
func ReloadIndexHandler(c echo.Context) error {
	type reloadIndexResponse struct {
		Message string `json:"message"`
		Persons int    `json:"persons,omitempty"`
	}

	index := c.(*middleware.AppContext).App.Index
	if err := index.Reload(); err != nil {
		logger.Error("Failed to reload index", "err", err)
		return c.JSON(http.StatusInternalServerError, reloadIndexResponse{
			Message: "Failed to reload index",
		})
	}

	return c.JSON(http.StatusOK, reloadIndexResponse{
		Message: "Index reloaded",
		Persons: index.PersonCount(),
	})
}
