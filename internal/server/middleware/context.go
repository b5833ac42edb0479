package middleware

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/search"
	"github.com/volgapavel/parsAZ/pkg/store"
)

// IndexHandle serves a person index snapshot and swaps it atomically on
// reload, so requests in flight keep reading a consistent index.
type IndexHandle struct {
	mu     sync.RWMutex
	path   string
	index  *common.PersonIndex
	search *search.Search
}

func NewIndexHandle(path string) *IndexHandle {
	return &IndexHandle{path: path}
}

// Reload reads the index file from disk and replaces the served snapshot.
func (h *IndexHandle) Reload() error {
	index, err := store.LoadIndex(h.path)
	if err != nil {
		return err
	}
	s := search.New(index)

	h.mu.Lock()
	h.index = index
	h.search = s
	h.mu.Unlock()
	return nil
}

// Search returns the current search view, nil before the first Reload.
func (h *IndexHandle) Search() *search.Search {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.search
}

// PersonCount returns the number of indexed persons, 0 before the first
// Reload.
func (h *IndexHandle) PersonCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index == nil {
		return 0
	}
	return len(h.index.Persons)
}

type App struct {
	DBConn *pgxpool.Pool
	Queue  *amqp091.Channel
	S3     *s3.Client
	Index  *IndexHandle
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	s3 *s3.Client,
	index *IndexHandle,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn: db,
				Queue:  queue,
				S3:     s3,
				Index:  index,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
