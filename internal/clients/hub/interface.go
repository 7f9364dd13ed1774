package hub

//go:generate mockgen -destination=mock/mock_client.go -package=mockhub . Client

import (
	"context"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// Client submits signed casts to a Farcaster hub
type Client interface {
	// SubmitCast signs body with the account's signer and submits it.
	// Failures are *DeliveryError.
	SubmitCast(ctx context.Context, body *entities.CastBody, account *entities.Account) (*SubmitResult, error)
}

// SubmitResult is what the hub tells us about an accepted cast
type SubmitResult struct {
	Hash string `json:"hash"`
}
