// Package repository is the injectable persistence layer the core never
// imports: it loads a Goal's Portfolio snapshot for a caller to pass into
// engine.Rebalance, and stores the RebalanceResult that comes back.
package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrGoalNotFound      = errors.New("repository: goal not found")
	ErrPortfolioNotFound = errors.New("repository: portfolio not found")
)

// Database wraps a pgx connection pool with shopspring/decimal support
// registered, the same registration the teacher's backtest database used
// for candle/asset prices.
type Database struct {
	pool *pgxpool.Pool
}

// NewDatabase opens a pool against dbURL and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return &Database{pool: pool}, nil
}

// Close releases the pool.
func (db *Database) Close() {
	db.pool.Close()
}
