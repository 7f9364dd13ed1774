package accounts

import (
	"context"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// Repository supplies the Farcaster account a Discord user publishes under
type Repository interface {
	// Get returns the account selected by the owner
	Get(ctx context.Context, ownerID string) (*entities.Account, error)

	// Select binds an account to an owner
	Select(ctx context.Context, ownerID string, account *entities.Account) error
}
