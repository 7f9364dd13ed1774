package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// Config holds all configuration for the application
type Config struct {
	Discord   DiscordConfig
	Redis     RedisConfig
	Farcaster FarcasterConfig
	Metrics   MetricsConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string `validate:"required"`
	AppID   string `validate:"required"`
	GuildID string // Optional: for guild-specific commands

	// PublisherRoleIDs limits publishing to members with one of these roles
	PublisherRoleIDs []string
	// PublisherUserIDs may publish without a role
	PublisherUserIDs []string
	// UserRateLimit caps interactions per user per minute; zero disables it
	UserRateLimit int `validate:"min=0"`
}

// RedisConfig holds Redis-specific configuration. An empty URL means in-memory caches.
type RedisConfig struct {
	URL        string        `validate:"omitempty,url"`
	MentionTTL time.Duration `validate:"min=0"`
}

// FarcasterConfig describes the hub, the fname registry and the account casts go out under
type FarcasterConfig struct {
	HubURL       string        `validate:"required,url"`
	FnameURL     string        `validate:"required,url"`
	HTTPTimeout  time.Duration `validate:"gt=0"`
	AccountName  string        `validate:"required"`
	FID          uint64        `validate:"required"`
	SignerKeyHex string        `validate:"omitempty,hexadecimal"`

	// FeedbackFID is mentioned by the /cast feedback template
	FeedbackFID    uint64
	FeedbackHandle string
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `validate:"omitempty,hostname_port"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			AppID:   os.Getenv("DISCORD_APP_ID"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),

			PublisherRoleIDs: getEnvAsList("DISCORD_PUBLISHER_ROLES"),
			PublisherUserIDs: getEnvAsList("DISCORD_PUBLISHER_USERS"),
			UserRateLimit:    getEnvAsIntOrDefault("DISCORD_USER_RATE_LIMIT", 30),
		},
		Redis: RedisConfig{
			URL:        os.Getenv("REDIS_URL"),
			MentionTTL: getEnvAsDurationOrDefault("MENTION_CACHE_TTL", 24*time.Hour),
		},
		Farcaster: FarcasterConfig{
			HubURL:         getEnvOrDefault("FARCASTER_HUB_URL", "https://hub.farcaster.standardcrypto.vc:2281"),
			FnameURL:       getEnvOrDefault("FARCASTER_FNAME_URL", "https://fnames.farcaster.xyz"),
			HTTPTimeout:    getEnvAsDurationOrDefault("FARCASTER_HTTP_TIMEOUT", 15*time.Second),
			AccountName:    getEnvOrDefault("FARCASTER_ACCOUNT_NAME", "castbot"),
			FID:            getEnvAsUintOrDefault("FARCASTER_FID", 0),
			SignerKeyHex:   strings.TrimPrefix(os.Getenv("FARCASTER_SIGNER_KEY"), "0x"),
			FeedbackFID:    getEnvAsUintOrDefault("FEEDBACK_FID", 0),
			FeedbackHandle: getEnvOrDefault("FEEDBACK_HANDLE", "kirkdiggler"),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("METRICS_ADDR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct tags and the signer key shape
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Farcaster.SignerKey(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Account is the default publishing account. Without a signer key it is read-only.
func (f FarcasterConfig) Account() (*entities.Account, error) {
	key, err := f.SignerKey()
	if err != nil {
		return nil, err
	}

	account := &entities.Account{
		ID:               fmt.Sprintf("farcaster-%d", f.FID),
		Name:             f.AccountName,
		FID:              f.FID,
		Platform:         entities.AccountPlatformFarcaster,
		SignerPrivateKey: key,
	}
	if key == nil {
		account.Platform = entities.AccountPlatformFarcasterReadOnly
	}
	return account, nil
}

// SignerKey decodes FARCASTER_SIGNER_KEY. It accepts a 32 byte seed or a 64 byte
// private key; an empty value yields a nil key and a read-only account.
func (f FarcasterConfig) SignerKey() (ed25519.PrivateKey, error) {
	if f.SignerKeyHex == "" {
		return nil, nil
	}

	raw, err := hex.DecodeString(f.SignerKeyHex)
	if err != nil {
		return nil, fmt.Errorf("FARCASTER_SIGNER_KEY is not hex: %w", err)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("FARCASTER_SIGNER_KEY must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsUintOrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
