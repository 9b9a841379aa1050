package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/fetch"
	"github.com/nijaru/yt-transcript/handlers/api"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/repository"
	"github.com/nijaru/yt-transcript/repository/sqlite"
	"github.com/nijaru/yt-transcript/services/transcript"
	"github.com/sirupsen/logrus"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []transcript.Option
	if cfg.History.Enabled {
		history, err := openHistory(ctx, cfg.History.DBPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize history database")
		}
		defer func() {
			if err := history.Close(); err != nil {
				log.WithError(err).Error("Failed to close history database")
			}
		}()
		opts = append(opts, transcript.WithHistory(history))
	}

	httpClient := &http.Client{}
	fetcher := fetch.NewClient(fetch.Options{
		HTTPClient: httpClient,
		UserAgent:  cfg.Transcript.UserAgent,
		Timeout:    cfg.Transcript.FetchTimeout,
		MaxBytes:   cfg.Transcript.MaxBodyBytes,
	})

	var library transcript.CaptionLibrary
	if cfg.Transcript.PrimaryEnabled {
		library = transcript.NewYouTubeLibrary(httpClient, cfg.Transcript.FetchTimeout)
	}

	svc := transcript.NewService(fetcher, library, transcript.Config{
		Attempts:       cfg.Transcript.Attempts,
		RetryDelay:     cfg.Transcript.RetryDelay,
		LanguagePause:  cfg.Transcript.LanguagePause,
		ResolveTimeout: cfg.Transcript.ResolveTimeout,
		PrimaryEnabled: cfg.Transcript.PrimaryEnabled,
	}, log, opts...)

	server := api.NewServer(cfg,
		api.WithLogger(log),
		api.WithServices(svc),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.WithError(err).Error("Server error")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}
}

func openHistory(ctx context.Context, path string) (repository.ResolutionRepository, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultDBConfig())
	if err != nil {
		return nil, err
	}
	return sqlite.NewRepository(db), nil
}
