package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/layer-3/garuda/adapters/challenge"
	"github.com/layer-3/garuda/adapters/events"
	"github.com/layer-3/garuda/adapters/ledger"
	"github.com/layer-3/garuda/adapters/sessions"
	"github.com/layer-3/garuda/adapters/tokenizer"
	"github.com/layer-3/garuda/adapters/verifier"
	"github.com/layer-3/garuda/config"
	"github.com/layer-3/garuda/ports"
	"github.com/layer-3/garuda/service"
	"github.com/layer-3/garuda/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	// Generate a new ECDSA key pair (you would normally load this from
	// somewhere secure). Tokens do not survive a restart either way; the
	// session set is the source of truth.
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logger.Fatal("Failed to generate signing key", zap.Error(err))
	}

	sessionStore, publisher := newBackends(cfg, logger)

	webAuthnVerifier, err := verifier.NewWebAuthnVerifier(cfg.RPDisplayName, cfg.RPID, cfg.RPOrigins)
	if err != nil {
		logger.Fatal("Failed to configure relying party", zap.Error(err))
	}

	eventPub := events.NewWatermillPublisher(publisher)

	sessionService := service.NewSessionService(
		tokenizer.NewJWTTokenizer(signKey),
		sessionStore,
		eventPub,
		logger,
		cfg.SessionTTL,
	)
	ceremonyService := service.NewCeremonyService(
		ledger.NewMemoryLedger(),
		challenge.NewRandSource(),
		webAuthnVerifier,
		sessionService,
		eventPub,
		logger,
	).WithChallengeTTL(cfg.ChallengeTTL)

	router := http.SetupRouter(ceremonyService, sessionService)

	logger.Info("Server started", zap.Int("port", cfg.Port), zap.String("rp_id", cfg.RPID))
	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// newBackends picks Redis-backed sessions and events when a Redis URL is
// configured, in-process ones otherwise.
func newBackends(cfg config.Config, logger *zap.Logger) (ports.SessionStore, message.Publisher) {
	wmLogger := watermill.NewStdLogger(false, false)

	if cfg.RedisURL == "" {
		return sessions.NewMemoryStore(), gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		logger.Fatal("Failed to create Redis publisher", zap.Error(err))
	}

	return sessions.NewRedisStore(redisClient), publisher
}

func newLogger(environment string) *zap.Logger {
	var logger *zap.Logger
	var err error

	if environment == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	return logger
}
