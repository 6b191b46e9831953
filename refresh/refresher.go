package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/rs/xid"

	"github.com/sig-0/exchbot/provider"
	"github.com/sig-0/exchbot/storage"
	"github.com/sig-0/exchbot/storage/types"
)

var (
	// ErrPermissionDenied is returned when the refresh caller is not
	// the configured operator
	ErrPermissionDenied = errors.New("caller is not permitted to refresh rates")

	errInvalidProvider = errors.New("invalid provider")
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Report is the outcome of a single refresh cycle
type Report struct {
	// Cycle is the unique ID of the refresh cycle
	Cycle xid.ID `json:"cycle"`

	// Updated are the platforms whose quote row was written this cycle
	Updated []string `json:"updated"`

	// Degraded are the platforms that were persisted with a
	// zero-valued quote because their provider was unreachable
	// or yielded nothing usable
	Degraded []string `json:"degraded"`

	// Failed are the platforms whose quote could not be persisted
	Failed []string `json:"failed"`
}

// Refresher re-fetches and re-persists quotes from all registered
// providers. The cycle is not transactional across platforms; each
// platform's row is independently authoritative
type Refresher struct {
	store      storage.RateStore
	logger     *slog.Logger
	providers  []provider.Provider
	operatorID int64

	mux sync.RWMutex
}

// New creates a new Refresher instance, gated to the given operator ID
func New(store storage.RateStore, operatorID int64, opts ...Option) *Refresher {
	r := &Refresher{
		store:      store,
		logger:     noopLogger,
		operatorID: operatorID,
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register registers a new quote provider with the refresher
func (r *Refresher) Register(p provider.Provider) error {
	if p == nil || p.Name() == "" || p.Platform() == "" {
		return errInvalidProvider
	}

	r.mux.Lock()
	r.providers = append(r.providers, p)
	r.mux.Unlock()

	r.logger.Info(
		"registered new provider",
		"name", p.Name(),
		"platform", p.Platform(),
	)

	return nil
}

// Refresh runs a single refresh cycle on behalf of the given caller.
// Callers other than the configured operator are rejected with
// ErrPermissionDenied, without side effects
func (r *Refresher) Refresh(ctx context.Context, callerID int64) (*Report, error) {
	if callerID != r.operatorID {
		return nil, ErrPermissionDenied
	}

	return r.runCycle(ctx), nil
}

// fetchResult is a single provider's cycle outcome
type fetchResult struct {
	quote    *types.Quote
	platform string
	degraded bool
}

// runCycle executes the refresh cycle: all providers are fetched
// concurrently, a provider failure is substituted with a degraded
// zero-valued quote, and every resulting quote is upserted
// independently
func (r *Refresher) runCycle(ctx context.Context) *Report {
	r.mux.RLock()
	providers := make([]provider.Provider, len(r.providers))
	copy(providers, r.providers)
	r.mux.RUnlock()

	report := &Report{
		Cycle: xid.New(),
	}

	r.logger.Info(
		"starting refresh cycle",
		"cycle", report.Cycle.String(),
		"providers", len(providers),
	)

	var (
		wg      sync.WaitGroup
		resCh   = make(chan fetchResult, len(providers))
		results = make([]fetchResult, 0, len(providers))
	)

	// Fetch all providers independently. One slow or unreachable
	// provider is bounded by its own client timeout and cannot
	// fail the cycle
	for _, p := range providers {
		wg.Add(1)

		go func(p provider.Provider) {
			defer wg.Done()

			quote, err := p.Fetch(ctx)
			if err != nil || quote == nil {
				r.logger.Error(
					"provider fetch failed, substituting degraded quote",
					"cycle", report.Cycle.String(),
					"name", p.Name(),
					"platform", p.Platform(),
					"err", err,
				)

				// Keep the platform row alive with a zero-valued
				// quote, surfaced through the report
				quote = &types.Quote{
					Platform: p.Platform(),
				}
			}

			resCh <- fetchResult{
				quote:    quote,
				platform: p.Platform(),
				degraded: quote.Degraded(),
			}
		}(p)
	}

	wg.Wait()
	close(resCh)

	for res := range resCh {
		results = append(results, res)
	}

	// Upsert each quote on its own; a storage failure for one
	// platform does not block the remaining ones
	for _, res := range results {
		if err := r.store.SaveQuote(ctx, res.quote); err != nil {
			r.logger.Error(
				"unable to save quote",
				"cycle", report.Cycle.String(),
				"platform", res.platform,
				"err", err,
			)

			report.Failed = append(report.Failed, res.platform)

			continue
		}

		report.Updated = append(report.Updated, res.platform)

		if res.degraded {
			report.Degraded = append(report.Degraded, res.platform)
		}

		r.logger.Info(
			"saved quote",
			"cycle", report.Cycle.String(),
			"platform", res.platform,
			"usdt", res.quote.USDT,
			"btc", res.quote.BTC,
			"degraded", res.degraded,
		)
	}

	sort.Strings(report.Updated)
	sort.Strings(report.Degraded)
	sort.Strings(report.Failed)

	return report
}
