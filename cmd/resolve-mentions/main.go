// Command resolve-mentions looks up Farcaster handles the way the bot does,
// through the mention cache and the fname registry.
//
//	resolve-mentions -text "gm @alice and @bob"
//	resolve-mentions alice bob
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/fname"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/mentions"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	text := flag.String("text", "", "Draft text to pull @mentions from")
	registry := flag.String("fname-url", getEnvOrDefault("FARCASTER_FNAME_URL", "https://fnames.farcaster.xyz"), "fname registry base URL")
	verbose := flag.Bool("v", false, "Log lookups")
	flag.Parse()

	handles := formatter.MentionedHandles(*text)
	for _, arg := range flag.Args() {
		handles = append(handles, strings.ToLower(strings.TrimPrefix(arg, "@")))
	}
	if len(handles) == 0 {
		log.Fatal("Please provide handles as arguments or a draft with -text")
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}

	client, err := fname.New(&fname.Config{
		BaseURL:    *registry,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Failed to create fname client: %v", err)
	}

	cache := mentions.NewInMemoryRepository()
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		cache = mentions.NewRedis(redisClient, 24*time.Hour)
	}

	resolver := formatter.NewCachedResolver(client, cache, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fids, err := resolver.Resolve(ctx, handles)
	if err != nil {
		log.Fatalf("Failed to resolve handles: %v", err)
	}

	missing := 0
	for _, handle := range handles {
		if fid, ok := fids[handle]; ok {
			fmt.Printf("@%-20s %d\n", handle, fid)
			continue
		}
		missing++
		fmt.Printf("@%-20s not found\n", handle)
	}
	if missing > 0 {
		os.Exit(1)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
