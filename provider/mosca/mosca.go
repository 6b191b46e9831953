package mosca

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/exchbot/storage/types"
)

var errInvalidRate = errors.New("invalid rate")

const (
	// DefaultURL is the Mosca valuation page
	DefaultURL = "https://mosca.moscow/valuation"

	// DefaultTimeout is the hard bound on a single page fetch
	DefaultTimeout = time.Second * 10

	platformName = "Mosca"

	// The valuation page serves a stripped-down version to
	// non-browser agents
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Provider is the Mosca valuation page scraping provider
type Provider struct {
	client *http.Client
	logger *slog.Logger
	url    string
}

// Option is a Mosca provider configuration callback
type Option func(p *Provider)

// WithLogger specifies the logger for the provider
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// WithURL overrides the valuation page URL
func WithURL(url string) Option {
	return func(p *Provider) {
		p.url = url
	}
}

// WithTimeout overrides the page fetch timeout
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		p.client.Timeout = timeout
	}
}

// NewProvider creates a new instance of the Mosca provider
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: noopLogger,
		url:    DefaultURL,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Provider) Name() string {
	return "Mosca valuation page"
}

func (p *Provider) Platform() string {
	return platformName
}

func (p *Provider) Fetch(ctx context.Context) (*types.Quote, error) {
	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	// Execute the request
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	// Construct document for parsing
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	quote := &types.Quote{
		Platform: platformName,
	}

	// Walk the valuation cards. A card whose value cannot be parsed is
	// skipped; a currency with no matching card keeps the zero rate
	doc.Find(".valuation__card").Each(func(_ int, card *goquery.Selection) {
		var (
			title = card.Find(".valuation__title").First().Text()
			value = card.Find(".valuation__value").First().Text()
		)

		rate, err := parseRubleValue(value)
		if err != nil {
			p.logger.Warn(
				"skipping unparsable valuation card",
				"title", strings.TrimSpace(title),
				"value", strings.TrimSpace(value),
				"err", err,
			)

			return
		}

		switch {
		case strings.Contains(title, types.SymbolUSDT.String()):
			quote.USDT = rate
		case strings.Contains(title, types.SymbolBTC.String()):
			quote.BTC = rate
		}
	})

	return quote, nil
}

// parseRubleValue parses a ruble value from the valuation page.
// The page pads large values with regular or non-breaking spaces and
// uses the comma both ways: a single comma is the decimal separator
// ("90,5 ₽" -> 90.5), repeated commas are digit grouping
// ("6,700,000 ₽" -> 6700000)
func parseRubleValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidRate
	}

	s = strings.ReplaceAll(s, "₽", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	if strings.Count(s, ",") > 1 {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse rate %q: %w", s, err)
	}

	return f, nil
}
