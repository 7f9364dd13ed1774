package services

import (
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/fname"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/events"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/metrics"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/accounts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/mentions"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/drafts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
)

// Provider holds all service instances
type Provider struct {
	Drafts    *drafts.Registry
	Accounts  accounts.Repository
	Resolver  *formatter.CachedResolver
	Formatter formatter.Service
	Bus       *events.Bus
	Metrics   *metrics.Collector

	FeedbackHandle string
	FeedbackFID    uint64
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	HubClient   hub.Client   // Required
	FnameClient fname.Client // Required

	// MentionRepository caches handle lookups, in-memory when nil
	MentionRepository mentions.Repository
	// AccountRepository binds users to accounts; in-memory with DefaultAccount when nil
	AccountRepository accounts.Repository
	// DefaultAccount is used by users who never picked one
	DefaultAccount *entities.Account

	// Metrics listens on the event bus when set
	Metrics *metrics.Collector

	FeedbackHandle string
	FeedbackFID    uint64

	Logger *zap.Logger
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mentionRepo := cfg.MentionRepository
	if mentionRepo == nil {
		mentionRepo = mentions.NewInMemoryRepository()
	}

	accountRepo := cfg.AccountRepository
	if accountRepo == nil {
		accountRepo = accounts.NewInMemoryRepository(cfg.DefaultAccount)
	}

	bus := events.NewBus(logger)
	if cfg.Metrics != nil {
		cfg.Metrics.Attach(bus)
	}

	resolver := formatter.NewCachedResolver(cfg.FnameClient, mentionRepo, logger.Named("resolver"))
	formatterService := formatter.NewService(&formatter.ServiceConfig{
		Resolver: resolver,
		Handles:  resolver,
		Logger:   logger.Named("formatter"),
	})

	registry := drafts.NewRegistry(&drafts.StoreConfig{
		Formatter: formatterService,
		Hub:       cfg.HubClient,
		Bus:       bus,
		Logger:    logger.Named("drafts"),
	})

	return &Provider{
		Drafts:         registry,
		Accounts:       accountRepo,
		Resolver:       resolver,
		Formatter:      formatterService,
		Bus:            bus,
		Metrics:        cfg.Metrics,
		FeedbackHandle: cfg.FeedbackHandle,
		FeedbackFID:    cfg.FeedbackFID,
	}
}
