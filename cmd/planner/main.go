package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/planner/internal/cli"
	"github.com/dmitrijs2005/planner/internal/config"
	"github.com/dmitrijs2005/planner/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewDefault(os.Stderr, slog.LevelInfo)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		logger.Error(context.Background(), "fatal", "error", err)
		os.Exit(1)
	}
}
