package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/volgapavel/parsAZ/internal/pipeline"
	"github.com/volgapavel/parsAZ/internal/queue"
	mid "github.com/volgapavel/parsAZ/internal/server/middleware"
	"github.com/volgapavel/parsAZ/internal/storage"
	"github.com/volgapavel/parsAZ/internal/util"
	"github.com/volgapavel/parsAZ/pkg/logger"
	"github.com/volgapavel/parsAZ/pkg/store"
)

func fetchSnapshot(ctx context.Context, client *s3.Client, key, path string) error {
	data, err := storage.DownloadIndex(ctx, client, key)
	if err != nil {
		return err
	}
	return store.WriteSnapshot(data, path)
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var conn *pgxpool.Pool
	if dbURL := util.GetEnv("DATABASE_URL"); dbURL != "" {
		var err error
		conn, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch, []string{queue.RebuildQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	if util.GetEnvBool("RUN_MIGRATIONS", false) {
		if err := pipeline.RunMigrations(); err != nil {
			logger.Fatal("Failed to run migrations", "err", err)
		}
	}

	indexPath := util.GetEnvString("INDEX_PATH", "person_index.json")
	index := mid.NewIndexHandle(indexPath)
	if err := index.Reload(); err != nil {
		if key := util.GetEnv("INDEX_S3_KEY"); key != "" && s3 != nil {
			if derr := fetchSnapshot(ctx, s3, key, indexPath); derr != nil {
				logger.Warn("No index snapshot available", "err", derr)
			} else if err := index.Reload(); err != nil {
				logger.Warn("Failed to load fetched snapshot", "err", err)
			}
		} else {
			logger.Warn("No index snapshot loaded yet", "err", err)
		}
	}
	if n := index.PersonCount(); n > 0 {
		logger.Info("Index snapshot loaded", "persons", n)
	}

	e.Use(mid.AppContextMiddleware(conn, ch, s3, index))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
