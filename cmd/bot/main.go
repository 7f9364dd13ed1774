package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/fname"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/config"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/middleware"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/metrics"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/mentions"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services"
)

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("LOG_FORMAT") == "console" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

// connectRedis returns nil when REDIS_URL is unset or unreachable so the bot
// falls back to in-memory caches
func connectRedis(url string, logger *zap.Logger) *redis.Client {
	if url == "" {
		logger.Info("no REDIS_URL found, using in-memory caches")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("failed to parse Redis URL, falling back to in-memory caches", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to Redis, falling back to in-memory caches", zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("connected to Redis", zap.String("addr", opts.Addr))
	return client
}

func serveMetrics(addr string, collector *metrics.Collector, logger *zap.Logger) *http.Server {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Method(http.MethodGet, "/metrics", collector.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	account, err := cfg.Farcaster.Account()
	if err != nil {
		logger.Fatal("failed to load account", zap.Error(err))
	}
	if account.IsReadOnly() {
		logger.Warn("no FARCASTER_SIGNER_KEY, the default account is read-only", zap.Uint64("fid", account.FID))
	}

	httpClient := &http.Client{Timeout: cfg.Farcaster.HTTPTimeout}

	hubClient, err := hub.New(&hub.Config{
		BaseURL:    cfg.Farcaster.HubURL,
		HTTPClient: httpClient,
		Logger:     logger.Named("hub"),
	})
	if err != nil {
		logger.Fatal("failed to create hub client", zap.Error(err))
	}

	fnameClient, err := fname.New(&fname.Config{
		BaseURL:    cfg.Farcaster.FnameURL,
		HTTPClient: httpClient,
		Logger:     logger.Named("fname"),
	})
	if err != nil {
		logger.Fatal("failed to create fname client", zap.Error(err))
	}

	providerConfig := &services.ProviderConfig{
		HubClient:      hubClient,
		FnameClient:    fnameClient,
		DefaultAccount: account,
		Metrics:        metrics.NewCollector("farcaster_bot"),
		FeedbackHandle: cfg.Farcaster.FeedbackHandle,
		FeedbackFID:    cfg.Farcaster.FeedbackFID,
		Logger:         logger,
	}

	var rateLimitStore middleware.RateLimitStore
	redisClient := connectRedis(cfg.Redis.URL, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("error closing Redis connection", zap.Error(err))
			}
		}()
		providerConfig.MentionRepository = mentions.NewRedis(redisClient, cfg.Redis.MentionTTL)
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient, "ratelimit")
	}

	provider := services.NewProvider(providerConfig)

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, provider.Metrics, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	bot, err := discord.NewBot(&discord.BotConfig{
		Provider:       provider,
		PublisherRoles: cfg.Discord.PublisherRoleIDs,
		PublisherUsers: cfg.Discord.PublisherUserIDs,
		UserRateLimit:  cfg.Discord.UserRateLimit,
		RateLimitStore: rateLimitStore,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("failed to set up Discord handlers", zap.Error(err))
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create Discord session", zap.Error(err))
	}
	dg.AddHandler(bot.HandleInteraction)

	if err := dg.Open(); err != nil {
		logger.Error("failed to open Discord connection", zap.Error(err))
		return
	}
	defer func() {
		if err := dg.Close(); err != nil {
			logger.Warn("failed to close Discord connection", zap.Error(err))
		}
	}()

	if err := discord.RegisterCommands(dg, cfg.Discord.AppID, cfg.Discord.GuildID, logger); err != nil {
		logger.Error("failed to register commands", zap.Error(err))
		return
	}
	if cfg.Discord.GuildID == "" {
		logger.Info("registered global commands, they may take up to an hour to propagate")
	}

	logger.Info("bot is running, press CTRL-C to exit",
		zap.String("account", account.Name),
		zap.Uint64("fid", account.FID))

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("shutting down")
}
