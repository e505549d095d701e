package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"workpulse/config"
	"workpulse/internal/analysis"
	"workpulse/internal/clients"
	"workpulse/internal/db"
	"workpulse/internal/logging"
	"workpulse/internal/pipeline"
	"workpulse/internal/reddit"
	"workpulse/internal/server"
)

func main() {
	config.LoadEnv(os.Getenv("APP_ENV"))
	logging.InitLogger()

	if err := run(); err != nil {
		slog.Error("[Main] fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	dynamoClient, err := clients.NewDynamoDBClient(ctx, cfg.Store.Region, cfg.Store.Endpoint)
	if err != nil {
		return err
	}
	store := db.NewStore(dynamoClient, cfg.Store.Table)
	repo := db.NewCompanyRepo(store)

	redditClient := clients.NewRedditClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.PostLimit)
	fetcher := reddit.NewFetcher(redditClient)

	// Without an API key the service still runs, labeling with the offline
	// VADER analyzer instead of the text-generation API.
	var analyzer pipeline.Analyzer
	if cfg.OpenAI.APIKey != "" {
		analyzer = analysis.NewEngine(clients.NewOpenAIClient(cfg.OpenAI.APIKey))
	} else {
		slog.Warn("[Main] OPENAI_API_KEY not set, using offline analyzer")
		analyzer = analysis.NewOfflineAnalyzer()
	}

	var logoCache *clients.ValkeyClient
	if cfg.Valkey.Address != "" {
		logoCache, err = clients.NewValkeyClient(cfg.Valkey.Address, cfg.Valkey.Password, cfg.Valkey.UseTLS)
		if err != nil {
			slog.Warn("[Main] valkey unavailable, logo lookups run uncached", slog.Any("error", err))
			logoCache = nil
		}
	}
	logos := clients.NewLogoClient(logoCache)

	pipe := pipeline.New(repo, fetcher, analyzer)
	handlers := server.NewHandlers(pipe, repo, logos)

	slog.Info("[Main] starting", slog.String("environment", cfg.Environment))
	return server.New(cfg.Server, handlers).Run(ctx)
}
