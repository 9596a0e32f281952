package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"social-todo/app/config"
	"social-todo/app/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close(context.Background())

	if err := app.Run(ctx); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
