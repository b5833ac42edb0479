package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/volgapavel/parsAZ/internal/pipeline"
	"github.com/volgapavel/parsAZ/internal/util"
	"github.com/volgapavel/parsAZ/pkg/logger"
	"github.com/volgapavel/parsAZ/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if util.GetEnvBool("RUN_MIGRATIONS", false) {
		if err := pipeline.RunMigrations(); err != nil {
			logger.Fatal("Failed to run migrations", "err", err)
		}
		logger.Info("Migrations applied")
	}

	index, err := pipeline.Run(ctx, pipeline.Options{})
	if err != nil {
		logger.Fatal("Index build failed", "err", err)
	}

	logger.Info("Index build complete", "persons", len(index.Persons))
}
