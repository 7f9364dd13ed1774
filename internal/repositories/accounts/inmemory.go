package accounts

import (
	"context"
	"sync"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

// InMemoryRepository keeps owner -> account bindings in memory and falls back
// to a shared default account for owners without one.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*entities.Account
	fallback *entities.Account
}

// NewInMemoryRepository creates a repository; fallback may be nil
func NewInMemoryRepository(fallback *entities.Account) Repository {
	return &InMemoryRepository{
		accounts: make(map[string]*entities.Account),
		fallback: fallback,
	}
}

// Get returns the account selected by the owner, or the fallback
func (r *InMemoryRepository) Get(_ context.Context, ownerID string) (*entities.Account, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if account, ok := r.accounts[ownerID]; ok {
		return account, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}

	return nil, apperr.NotFoundf("no account selected for owner '%s'", ownerID).
		WithMeta("owner_id", ownerID)
}

// Select binds an account to an owner
func (r *InMemoryRepository) Select(_ context.Context, ownerID string, account *entities.Account) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}
	if account == nil {
		return apperr.InvalidArgument("account cannot be nil")
	}
	if account.FID == 0 {
		return apperr.InvalidArgument("account FID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[ownerID] = account
	return nil
}
