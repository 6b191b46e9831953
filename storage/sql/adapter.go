package sql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sig-0/exchbot/storage"
	"github.com/sig-0/exchbot/storage/types"
)

const (
	saveQuoteSQL = `INSERT INTO rates (platform, usdt, btc)
	VALUES ($1, $2, $3)
	ON CONFLICT (platform) DO UPDATE
	SET usdt = EXCLUDED.usdt,
	    btc  = EXCLUDED.btc`

	quoteByPlatformSQL = `SELECT platform, usdt, btc
	FROM rates
	WHERE platform = $1`

	listQuotesSQL = `SELECT platform, usdt, btc
	FROM rates
	ORDER BY platform`

	appendAdSQL = `INSERT INTO ads (content)
	VALUES ($1)
	RETURNING id`

	listAdsSQL = `SELECT id, content
	FROM ads
	ORDER BY id`

	registerUserSQL = `INSERT INTO users (id)
	VALUES ($1)
	ON CONFLICT (id) DO NOTHING`

	listUsersSQL = `SELECT id
	FROM users
	ORDER BY id`
)

// DB is the minimal pgx query surface the adapter needs
// (satisfied by *pgx.Conn and *pgxpool.Pool)
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage is an SQL-backed datastore
type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) SaveQuote(ctx context.Context, q *types.Quote) error {
	if _, err := s.db.Exec(ctx, saveQuoteSQL, q.Platform, q.USDT, q.BTC); err != nil {
		return fmt.Errorf("unable to save quote: %w", err)
	}

	return nil
}

func (s *Storage) QuoteByPlatform(ctx context.Context, platform string) (*types.Quote, error) {
	var q types.Quote

	err := s.db.QueryRow(ctx, quoteByPlatformSQL, platform).
		Scan(&q.Platform, &q.USDT, &q.BTC)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("unable to fetch quote: %w", err)
	}

	return &q, nil
}

func (s *Storage) ListQuotes(ctx context.Context) ([]*types.Quote, error) {
	rows, err := s.db.Query(ctx, listQuotesSQL)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch quotes: %w", err)
	}
	defer rows.Close()

	var out []*types.Quote

	for rows.Next() {
		var q types.Quote

		if err := rows.Scan(&q.Platform, &q.USDT, &q.BTC); err != nil {
			return nil, fmt.Errorf("unable to scan quote: %w", err)
		}

		out = append(out, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read quotes: %w", err)
	}

	return out, nil
}

func (s *Storage) AppendAd(ctx context.Context, content string) (*types.Ad, error) {
	ad := types.Ad{
		Content: content,
	}

	if err := s.db.QueryRow(ctx, appendAdSQL, content).Scan(&ad.ID); err != nil {
		return nil, fmt.Errorf("unable to append ad: %w", err)
	}

	return &ad, nil
}

func (s *Storage) ListAds(ctx context.Context) ([]*types.Ad, error) {
	rows, err := s.db.Query(ctx, listAdsSQL)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch ads: %w", err)
	}
	defer rows.Close()

	var out []*types.Ad

	for rows.Next() {
		var ad types.Ad

		if err := rows.Scan(&ad.ID, &ad.Content); err != nil {
			return nil, fmt.Errorf("unable to scan ad: %w", err)
		}

		out = append(out, &ad)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read ads: %w", err)
	}

	return out, nil
}

func (s *Storage) RegisterUser(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, registerUserSQL, id); err != nil {
		return fmt.Errorf("unable to register user: %w", err)
	}

	return nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch users: %w", err)
	}
	defer rows.Close()

	var out []types.User

	for rows.Next() {
		var u types.User

		if err := rows.Scan(&u.ID); err != nil {
			return nil, fmt.Errorf("unable to scan user: %w", err)
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read users: %w", err)
	}

	return out, nil
}
