package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sig-0/exchbot/storage"
	"github.com/sig-0/exchbot/storage/types"
)

// Storage is an in-memory datastore, safe for concurrent use
type Storage struct {
	quotes map[string]types.Quote
	ads    []types.Ad
	users  map[int64]struct{}

	nextAdID int64

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		quotes:   make(map[string]types.Quote),
		users:    make(map[int64]struct{}),
		nextAdID: 1,
	}
}

func (s *Storage) SaveQuote(_ context.Context, q *types.Quote) error {
	s.mu.Lock()
	s.quotes[q.Platform] = *q // last write wins
	s.mu.Unlock()

	return nil
}

func (s *Storage) QuoteByPlatform(_ context.Context, platform string) (*types.Quote, error) {
	s.mu.RLock()
	q, ok := s.quotes[platform]
	s.mu.RUnlock()

	if !ok {
		return nil, storage.ErrNotFound
	}

	return &q, nil
}

func (s *Storage) ListQuotes(_ context.Context) ([]*types.Quote, error) {
	s.mu.RLock()

	out := make([]*types.Quote, 0, len(s.quotes))

	for _, q := range s.quotes {
		cp := q
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Platform < out[j].Platform
	})

	return out, nil
}

func (s *Storage) AppendAd(_ context.Context, content string) (*types.Ad, error) {
	s.mu.Lock()

	ad := types.Ad{
		ID:      s.nextAdID,
		Content: content,
	}

	s.nextAdID++
	s.ads = append(s.ads, ad)

	s.mu.Unlock()

	return &ad, nil
}

func (s *Storage) ListAds(_ context.Context) ([]*types.Ad, error) {
	s.mu.RLock()

	out := make([]*types.Ad, 0, len(s.ads))

	for _, ad := range s.ads {
		cp := ad
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	return out, nil
}

func (s *Storage) RegisterUser(_ context.Context, id int64) error {
	s.mu.Lock()
	s.users[id] = struct{}{} // duplicate registration is a no-op
	s.mu.Unlock()

	return nil
}

func (s *Storage) ListUsers(_ context.Context) ([]types.User, error) {
	s.mu.RLock()

	out := make([]types.User, 0, len(s.users))

	for id := range s.users {
		out = append(out, types.User{ID: id})
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}
