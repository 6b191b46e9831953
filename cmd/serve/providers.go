package serve

import (
	"log/slog"

	"github.com/sig-0/exchbot/provider"
	"github.com/sig-0/exchbot/provider/abcex"
	"github.com/sig-0/exchbot/provider/mosca"
)

// defaultProviders returns the default quote providers
func defaultProviders(logger *slog.Logger) []provider.Provider {
	var (
		// Live Mosca valuation page
		moscaProvider = mosca.NewProvider(
			mosca.WithLogger(logger),
		)

		// Static Abcex rates, until a live feed exists
		abcexProvider = abcex.NewProvider()
	)

	return []provider.Provider{
		moscaProvider,
		abcexProvider,
	}
}
