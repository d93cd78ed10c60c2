package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/iqube/internal/logging"
	"github.com/dmitrijs2005/iqube/internal/server"
	"github.com/dmitrijs2005/iqube/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
