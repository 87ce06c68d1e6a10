package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the shared connection pool from the DATABASE_URL
// environment variable. Safe to call more than once; only the first call
// connects.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		cfg, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, cfg)
	})
	return err
}

// GetPool returns the shared connection pool, nil before InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
