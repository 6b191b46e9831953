package refresh

import (
	"context"

	"github.com/sig-0/exchbot/storage/types"
)

type (
	nameDelegate     func() string
	platformDelegate func() string
	fetchDelegate    func(context.Context) (*types.Quote, error)
)

type mockProvider struct {
	nameFn     nameDelegate
	platformFn platformDelegate
	fetchFn    fetchDelegate
}

func (m *mockProvider) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockProvider) Platform() string {
	if m.platformFn != nil {
		return m.platformFn()
	}

	return ""
}

func (m *mockProvider) Fetch(ctx context.Context) (*types.Quote, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}
