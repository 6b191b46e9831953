package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/exchbot/storage"
	"github.com/sig-0/exchbot/storage/types"
)

func TestStorage_Quotes(t *testing.T) {
	t.Parallel()

	t.Run("missing platform", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		q, err := s.QuoteByPlatform(context.Background(), "Mosca")

		assert.Nil(t, q)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save and fetch", func(t *testing.T) {
		t.Parallel()

		var (
			s = NewStorage()

			quote = &types.Quote{
				Platform: "Mosca",
				USDT:     90.0,
				BTC:      6000000.0,
			}
		)

		require.NoError(t, s.SaveQuote(context.Background(), quote))

		fetched, err := s.QuoteByPlatform(context.Background(), "Mosca")
		require.NoError(t, err)

		assert.Equal(t, quote, fetched)
	})

	t.Run("upsert replaces both rates", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		require.NoError(t, s.SaveQuote(context.Background(), &types.Quote{
			Platform: "Mosca",
			USDT:     90.0,
			BTC:      6000000.0,
		}))

		// Same platform, new cycle
		require.NoError(t, s.SaveQuote(context.Background(), &types.Quote{
			Platform: "Mosca",
			USDT:     91.5,
		}))

		fetched, err := s.QuoteByPlatform(context.Background(), "Mosca")
		require.NoError(t, err)

		assert.Equal(t, 91.5, fetched.USDT)
		assert.Equal(t, 0.0, fetched.BTC)

		quotes, err := s.ListQuotes(context.Background())
		require.NoError(t, err)

		assert.Len(t, quotes, 1)
	})

	t.Run("list sorted by platform", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		for _, platform := range []string{"Mosca", "Abcex", "Garantex"} {
			require.NoError(t, s.SaveQuote(context.Background(), &types.Quote{
				Platform: platform,
				USDT:     90.0,
			}))
		}

		quotes, err := s.ListQuotes(context.Background())
		require.NoError(t, err)

		require.Len(t, quotes, 3)

		assert.Equal(t, "Abcex", quotes[0].Platform)
		assert.Equal(t, "Garantex", quotes[1].Platform)
		assert.Equal(t, "Mosca", quotes[2].Platform)
	})
}

func TestStorage_Ads(t *testing.T) {
	t.Parallel()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		ads, err := s.ListAds(context.Background())

		require.NoError(t, err)
		assert.Empty(t, ads)
	})

	t.Run("insertion order, increasing ids", func(t *testing.T) {
		t.Parallel()

		var (
			s        = NewStorage()
			numAds   = 10
			contents = make([]string, 0, numAds)
		)

		for i := 0; i < numAds; i++ {
			content := fmt.Sprintf("selling USDT, lot %d", i)
			contents = append(contents, content)

			ad, err := s.AppendAd(context.Background(), content)
			require.NoError(t, err)

			assert.Equal(t, content, ad.Content)
		}

		ads, err := s.ListAds(context.Background())
		require.NoError(t, err)

		require.Len(t, ads, numAds)

		for i, ad := range ads {
			assert.Equal(t, contents[i], ad.Content)

			if i > 0 {
				assert.Greater(t, ad.ID, ads[i-1].ID)
			}
		}
	})
}

func TestStorage_Users(t *testing.T) {
	t.Parallel()

	t.Run("idempotent registration", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		require.NoError(t, s.RegisterUser(context.Background(), 10))
		require.NoError(t, s.RegisterUser(context.Background(), 10))
		require.NoError(t, s.RegisterUser(context.Background(), 20))

		users, err := s.ListUsers(context.Background())
		require.NoError(t, err)

		require.Len(t, users, 2)

		assert.Equal(t, int64(10), users[0].ID)
		assert.Equal(t, int64(20), users[1].ID)
	})
}
