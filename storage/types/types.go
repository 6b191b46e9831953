package types

// Symbol is a supported quote currency
type Symbol string

const (
	SymbolUSDT Symbol = "USDT"
	SymbolBTC  Symbol = "BTC"
)

func (s Symbol) String() string {
	return string(s)
}

// Quote is the current exchange rate pair (in RUB) for a single
// trading platform. At most one quote exists per platform; a platform
// with no quote row has no known rate, which is distinct from a stored
// zero rate
type Quote struct {
	Platform string  `json:"platform"`
	USDT     float64 `json:"usdt"`
	BTC      float64 `json:"btc"`
}

// Rate returns the stored rate for the given symbol
func (q *Quote) Rate(s Symbol) float64 {
	if s == SymbolBTC {
		return q.BTC
	}

	return q.USDT
}

// Degraded reports whether the quote is a zero-valued placeholder,
// produced when the provider was unreachable or unparsable
func (q *Quote) Degraded() bool {
	return q.USDT == 0 && q.BTC == 0
}

// Ad is a single free-text classified listing. Ads are immutable once
// stored; the ID is assigned by the store and strictly increases with
// insertion order
type Ad struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// User is a single registered broadcast recipient
type User struct {
	ID int64 `json:"id"`
}
