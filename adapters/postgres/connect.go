package postgres

import (
	"context"
	"time"

	"cardiorisk/internal"
	"cardiorisk/internal/errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the database, retrying with exponential backoff while the server comes up
func Connect(ctx context.Context, url string, retries int) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	logger := internal.DefaultLogger.Named("postgres")

	var db *sqlx.DB
	attempt := 0
	operation := func() error {
		attempt++
		conn, err := sqlx.ConnectContext(ctx, "postgres", url)
		if err != nil {
			logger.Warn("connect attempt %d failed: %v", attempt, err)
			return err
		}
		db = conn
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = 250 * time.Millisecond
	strategy.MaxElapsedTime = 30 * time.Second
	var policy backoff.BackOff = strategy
	if retries >= 0 {
		policy = backoff.WithMaxRetries(strategy, uint64(retries))
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	logger.Info("connected after %d attempt(s)", attempt)
	return db, nil
}
