package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lingotale/classifier"
	"lingotale/config"
	"lingotale/db"
	"lingotale/gemini"
	"lingotale/handlers"
	"lingotale/middleware"
	"lingotale/prompts"
	"lingotale/qloo"
	"lingotale/story"
	"lingotale/taste"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := db.Init(cfg.MongoURI, cfg.MongoDatabase); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles := db.NewProfileRepository()
	pool := db.NewPoolRepository()
	stories := db.NewStoryRepository()

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := profiles.EnsureIndexes(indexCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to create profile indexes")
	}
	if err := stories.EnsureIndexes(indexCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to create story indexes")
	}

	gen, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation client")
	}

	spec := prompts.LanguageSpec{
		Language:        cfg.Language,
		ForeignLanguage: cfg.ForeignLanguage,
		WordType:        cfg.WordType,
	}

	tasteService := taste.NewService(
		qloo.NewClient(cfg.QlooBaseURL, cfg.QlooAPIKey),
		classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierToken),
		profiles,
		log.Logger,
	)
	storyService := story.NewService(profiles, pool, stories, gen, spec, cfg.PoolSize, log.Logger)

	entityHandlers := handlers.NewEntityHandlers(tasteService)
	storyHandlers := handlers.NewStoryHandlers(storyService)

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/entities", entityHandlers.Search)
		r.Post("/entity", entityHandlers.AddEntity)
		r.Get("/preferences", entityHandlers.Preferences)

		r.Post("/stories", storyHandlers.Start)
		r.Get("/stories", storyHandlers.Feed)
		r.Get("/stories/{storyId}", storyHandlers.Detail)
		r.Post("/stories/{storyId}/continue", storyHandlers.Continue)

		r.Post("/translations", storyHandlers.Translate)

		r.Get("/words", storyHandlers.Words)
		r.Post("/words", storyHandlers.MoveWords)
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
