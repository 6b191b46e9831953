// Package abcex provides a static quote provider for the Abcex
// platform, which has no scrapeable public feed yet. The quote is
// fixed at construction and requires no network access.
package abcex

import (
	"context"

	"github.com/sig-0/exchbot/storage/types"
)

const platformName = "Abcex"

// Default OTC desk rates, until a live feed is available
const (
	DefaultUSDTRate = 93.2
	DefaultBTCRate  = 6700000.0
)

// Provider is the static Abcex quote provider
type Provider struct {
	usdt float64
	btc  float64
}

// NewProvider creates a new instance of the Abcex provider
// with the default rates
func NewProvider() *Provider {
	return NewProviderWithRates(DefaultUSDTRate, DefaultBTCRate)
}

// NewProviderWithRates creates a new instance of the Abcex provider
// with the given fixed rates
func NewProviderWithRates(usdt, btc float64) *Provider {
	return &Provider{
		usdt: usdt,
		btc:  btc,
	}
}

func (p *Provider) Name() string {
	return "Abcex static rates"
}

func (p *Provider) Platform() string {
	return platformName
}

func (p *Provider) Fetch(_ context.Context) (*types.Quote, error) {
	return &types.Quote{
		Platform: platformName,
		USDT:     p.usdt,
		BTC:      p.btc,
	}, nil
}
