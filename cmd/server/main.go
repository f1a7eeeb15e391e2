package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/config"
	"github.com/fathima-sithara/quote-chat/internal/bot"
	"github.com/fathima-sithara/quote-chat/internal/cache"
	"github.com/fathima-sithara/quote-chat/internal/events"
	"github.com/fathima-sithara/quote-chat/internal/middleware"
	"github.com/fathima-sithara/quote-chat/internal/quotes"
	"github.com/fathima-sithara/quote-chat/internal/repository"
	"github.com/fathima-sithara/quote-chat/internal/routes"
	"github.com/fathima-sithara/quote-chat/internal/service"
	"github.com/fathima-sithara/quote-chat/internal/session"
	"github.com/fathima-sithara/quote-chat/internal/ws"
)

// Server holds service dependencies.
type Server struct {
	cfg     *config.Config
	app     *fiber.App
	mongo   *repository.MongoRepository
	redis   *cache.Client
	kafka   *events.Publisher
	hub     *ws.Hub
	manager *session.Manager
}

func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	// Store: Mongo when configured, in-memory otherwise (dev mode).
	var store repository.Store
	if cfg.MongoURI != "" {
		repo, err := repository.NewMongoRepository(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		s.mongo = repo
		store = repo
		log.Info().Msg("mongodb connected")
	} else {
		store = repository.NewMemoryStore()
		log.Warn().Msg("no MONGO_URI configured, using in-memory store")
	}

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPwd, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		s.redis = rc
	}

	s.hub = ws.NewHub()
	var broadcaster events.Broadcaster = s.hub
	if len(cfg.KafkaBrokers) > 0 {
		s.kafka = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		broadcaster = events.NewTee(s.hub, s.kafka)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("event mirror enabled")
	}

	responder := bot.NewResponder(store, quotes.NewClient(cfg.QuoteAPIBase), broadcaster, s.redis, cfg.BotReplyDelay)
	s.manager = session.NewManager(responder, broadcaster, cfg.RandomSenderInterval)
	s.hub.OnRegister = s.manager.StatusEvent
	s.hub.OnControl = s.manager.HandleControl

	svc := service.NewChatService(store, broadcaster, responder, s.redis)
	if err := svc.Seed(context.Background()); err != nil {
		log.Error().Err(err).Msg("seeding failed")
	}

	s.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger())
	routes.Register(s.app, svc, s.hub)

	return s, nil
}

func (s *Server) Start() {
	go s.hub.Run()
	go func() {
		log.Info().Str("port", s.cfg.AppPort).Msg("quote-chat listening")
		if err := s.app.Listen(":" + s.cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()
}

func (s *Server) Shutdown() {
	log.Info().Msg("shutting down")

	s.manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("fiber shutdown failed")
	}

	if s.kafka != nil {
		if err := s.kafka.Close(); err != nil {
			log.Error().Err(err).Msg("kafka close failed")
		}
	}
	if err := s.redis.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}
	log.Info().Msg("stopped")
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if cfg.AppEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}
	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("signal received")

	server.Shutdown()
}
