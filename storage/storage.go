package storage

import (
	"context"
	"errors"

	"github.com/sig-0/exchbot/storage/types"
)

// ErrNotFound is returned on point lookups that match no record
var ErrNotFound = errors.New("record not found")

// RateStore is an abstraction over per-platform quote data
type RateStore interface {
	// SaveQuote inserts or replaces the quote row for the quote's
	// platform. Both rates are always written together
	SaveQuote(context.Context, *types.Quote) error

	// QuoteByPlatform fetches the quote for the given platform,
	// or ErrNotFound
	QuoteByPlatform(context.Context, string) (*types.Quote, error)

	// ListQuotes lists all stored quotes, sorted by platform name
	ListQuotes(context.Context) ([]*types.Quote, error)
}

// AdStore is an append-only log of classified ads
type AdStore interface {
	// AppendAd stores the given ad content, assigning the next ID
	AppendAd(context.Context, string) (*types.Ad, error)

	// ListAds lists all ads in insertion order
	ListAds(context.Context) ([]*types.Ad, error)
}

// UserRegistry is the set of known broadcast recipients
type UserRegistry interface {
	// RegisterUser adds the given user ID to the registry.
	// Registering an already-known ID is a no-op
	RegisterUser(context.Context, int64) error

	// ListUsers lists all registered users
	ListUsers(context.Context) ([]types.User, error)
}

// Storage bundles the three stores backing the service
type Storage interface {
	RateStore
	AdStore
	UserRegistry
}
