package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searchbot/api"
	"searchbot/cache"
	"searchbot/chat"
	"searchbot/config"
	"searchbot/conversation"
	"searchbot/events"
	"searchbot/responder"
	"searchbot/retrieval"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load sources")
	}

	fetcher := retrieval.NewFetcher(retrieval.FetcherConfig{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
		Logger:    &log,
	})
	aggregator := retrieval.NewAggregator(sources, fetcher, &log)
	generator := responder.NewGeneratorFromConfig(cfg, &log)
	sessions := conversation.NewStore(cfg.MaxTurns)

	opts := chat.Options{Logger: &log}

	// Optional retrieval cache
	if rc, err := cache.NewRedisCacheFromConfig(cfg); err != nil {
		log.Warn().Err(err).Msg("Redis cache unavailable; continuing without it")
	} else if rc != nil {
		defer rc.Close()
		opts.Cache = rc
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Retrieval cache enabled")
	}

	// Optional exchange events
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := events.NewKafkaPublisher(events.ProducerConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			log.Warn().Err(err).Msg("Kafka publisher unavailable; exchange events disabled")
		} else {
			defer pub.Close()
			opts.Publisher = pub
			log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Exchange events enabled")
		}
	}

	svc := chat.NewService(aggregator, generator, sessions, opts)

	sweeper := chat.NewSweeper(sessions, cfg.SessionIdleTTL, &log)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start session sweeper")
	}
	defer sweeper.Stop()

	router := api.NewRouter(api.Dependencies{
		Chat:   svc,
		Logger: &log,
		RateLimit: api.RateLimit{
			PerMinute: cfg.RateLimitPerMinute,
			Burst:     cfg.RateLimitBurst,
		},
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	log.Info().Str("addr", srv.Addr).Strs("sources", names).Msg("Starting chat server")
	log.Info().Msg("Endpoints: GET/POST /, POST /api/chat, GET|DELETE /api/history, GET /api/health")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
