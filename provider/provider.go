package provider

import (
	"context"

	"github.com/sig-0/exchbot/storage/types"
)

// Provider is a single per-platform quote source
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Platform returns the platform key the provider quotes for
	Platform() string

	// Fetch fetches the platform's current quote
	Fetch(context.Context) (*types.Quote, error)
}
