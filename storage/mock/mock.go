package mock

import (
	"context"

	"github.com/sig-0/exchbot/storage/types"
)

type (
	SaveQuoteDelegate       func(context.Context, *types.Quote) error
	QuoteByPlatformDelegate func(context.Context, string) (*types.Quote, error)
	ListQuotesDelegate      func(context.Context) ([]*types.Quote, error)
	AppendAdDelegate        func(context.Context, string) (*types.Ad, error)
	ListAdsDelegate         func(context.Context) ([]*types.Ad, error)
	RegisterUserDelegate    func(context.Context, int64) error
	ListUsersDelegate       func(context.Context) ([]types.User, error)
)

type Storage struct {
	SaveQuoteFn       SaveQuoteDelegate
	QuoteByPlatformFn QuoteByPlatformDelegate
	ListQuotesFn      ListQuotesDelegate
	AppendAdFn        AppendAdDelegate
	ListAdsFn         ListAdsDelegate
	RegisterUserFn    RegisterUserDelegate
	ListUsersFn       ListUsersDelegate
}

func (m *Storage) SaveQuote(ctx context.Context, q *types.Quote) error {
	if m.SaveQuoteFn != nil {
		return m.SaveQuoteFn(ctx, q)
	}

	return nil
}

func (m *Storage) QuoteByPlatform(ctx context.Context, platform string) (*types.Quote, error) {
	if m.QuoteByPlatformFn != nil {
		return m.QuoteByPlatformFn(ctx, platform)
	}

	return nil, nil
}

func (m *Storage) ListQuotes(ctx context.Context) ([]*types.Quote, error) {
	if m.ListQuotesFn != nil {
		return m.ListQuotesFn(ctx)
	}

	return nil, nil
}

func (m *Storage) AppendAd(ctx context.Context, content string) (*types.Ad, error) {
	if m.AppendAdFn != nil {
		return m.AppendAdFn(ctx, content)
	}

	return nil, nil
}

func (m *Storage) ListAds(ctx context.Context) ([]*types.Ad, error) {
	if m.ListAdsFn != nil {
		return m.ListAdsFn(ctx)
	}

	return nil, nil
}

func (m *Storage) RegisterUser(ctx context.Context, id int64) error {
	if m.RegisterUserFn != nil {
		return m.RegisterUserFn(ctx, id)
	}

	return nil
}

func (m *Storage) ListUsers(ctx context.Context) ([]types.User, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx)
	}

	return nil, nil
}
