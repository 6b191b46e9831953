// Package convert implements the conversion engine: a platform,
// a currency symbol and an amount resolve against the stored quote
// for that platform
package convert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sig-0/exchbot/storage"
	"github.com/sig-0/exchbot/storage/types"
)

var (
	// ErrUnknownPlatform is returned when no quote is stored
	// for the requested platform
	ErrUnknownPlatform = errors.New("no quote stored for platform")

	// ErrUnsupportedCurrency is returned when the requested currency
	// is neither USDT nor BTC
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Result is a single conversion outcome
type Result struct {
	Platform string       `json:"platform"`
	Symbol   types.Symbol `json:"symbol"`
	Amount   float64      `json:"amount"`
	Value    float64      `json:"value"`
}

// FormatValue renders the converted ruble value for display,
// to 2 decimal places
func (r *Result) FormatValue() string {
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// Engine answers conversion queries against stored quotes
type Engine struct {
	rates storage.RateStore
}

// NewEngine creates a new conversion engine on top of the given rate store
func NewEngine(rates storage.RateStore) *Engine {
	return &Engine{
		rates: rates,
	}
}

// Convert computes amount * rate for the given platform and currency
// symbol. The symbol is matched case-insensitively. Parsing the amount
// from text is the caller's responsibility
func (e *Engine) Convert(
	ctx context.Context,
	platform string,
	symbol string,
	amount float64,
) (*Result, error) {
	quote, err := e.rates.QuoteByPlatform(ctx, platform)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownPlatform
		}

		return nil, fmt.Errorf("unable to fetch quote: %w", err)
	}

	sym, err := parseSymbol(symbol)
	if err != nil {
		return nil, err
	}

	return &Result{
		Platform: quote.Platform,
		Symbol:   sym,
		Amount:   amount,
		Value:    amount * quote.Rate(sym),
	}, nil
}

// parseSymbol normalizes the given currency symbol
func parseSymbol(symbol string) (types.Symbol, error) {
	s := types.Symbol(strings.ToUpper(strings.TrimSpace(symbol)))

	switch s {
	case types.SymbolUSDT, types.SymbolBTC:
		return s, nil
	default:
		return "", ErrUnsupportedCurrency
	}
}
