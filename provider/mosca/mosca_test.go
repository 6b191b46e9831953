package mosca

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valuationPage renders a minimal valuation page with the given cards
func valuationPage(cards ...[2]string) string {
	body := `<html><body><div class="valuation">`

	for _, card := range cards {
		body += fmt.Sprintf(
			`<div class="valuation__card">`+
				`<div class="valuation__title">%s</div>`+
				`<div class="valuation__value">%s</div>`+
				`</div>`,
			card[0],
			card[1],
		)
	}

	return body + `</div></body></html>`
}

func TestProvider_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("full page", func(t *testing.T) {
		t.Parallel()

		var capturedAgent string

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedAgent = r.Header.Get("User-Agent")

				fmt.Fprint(w, valuationPage(
					[2]string{"Курс USDT", "90,5 ₽"},
					[2]string{"Курс BTC", "6 000 000 ₽"},
				))
			}),
		)
		defer srv.Close()

		p := NewProvider(WithURL(srv.URL))

		quote, err := p.Fetch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "Mosca", quote.Platform)
		assert.Equal(t, 90.5, quote.USDT)
		assert.Equal(t, 6000000.0, quote.BTC)

		// The page checks for a browser agent
		assert.Contains(t, capturedAgent, "Mozilla")
	})

	t.Run("malformed card skipped", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, valuationPage(
					[2]string{"USDT", "abc₽"},
					[2]string{"BTC", "6,700,000 ₽"},
				))
			}),
		)
		defer srv.Close()

		p := NewProvider(WithURL(srv.URL))

		quote, err := p.Fetch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0.0, quote.USDT)
		assert.Equal(t, 6700000.0, quote.BTC)
	})

	t.Run("missing cards keep zero rates", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, valuationPage())
			}),
		)
		defer srv.Close()

		p := NewProvider(WithURL(srv.URL))

		quote, err := p.Fetch(context.Background())
		require.NoError(t, err)

		assert.True(t, quote.Degraded())
	})

	t.Run("non-success status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}),
		)
		defer srv.Close()

		p := NewProvider(WithURL(srv.URL))

		quote, err := p.Fetch(context.Background())

		assert.Nil(t, quote)
		assert.Error(t, err)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		t.Parallel()

		// Grab a URL that refuses connections
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		p := NewProvider(WithURL(srv.URL))

		quote, err := p.Fetch(context.Background())

		assert.Nil(t, quote)
		assert.Error(t, err)
	})
}

func TestParseRubleValue(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		input    string
		expected float64
		isError  bool
	}{
		{
			name:     "decimal comma",
			input:    "90,5",
			expected: 90.5,
		},
		{
			name:     "currency sign and spaces",
			input:    " 6 000 000 ₽ ",
			expected: 6000000.0,
		},
		{
			name:     "grouping commas",
			input:    "6,700,000 ₽",
			expected: 6700000.0,
		},
		{
			name:     "non-breaking spaces",
			input:    "93 200,75 ₽",
			expected: 93200.75,
		},
		{
			name:    "empty value",
			input:   "   ",
			isError: true,
		},
		{
			name:    "garbage value",
			input:   "abc₽",
			isError: true,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			value, err := parseRubleValue(testCase.input)

			if testCase.isError {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, value)
		})
	}
}
