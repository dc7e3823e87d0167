package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PingRetryConfig は起動時の疎通確認リトライの設定。
type PingRetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultPingRetryConfig はコンテナ起動順のずれを吸収する程度のリトライ設定。
var DefaultPingRetryConfig = PingRetryConfig{
	Attempts:     5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     8 * time.Second,
}

// Backoff は失敗回数に応じた待機時間を返す。
// InitialDelayから倍々に増え、MaxDelayで頭打ちになる。
func (c PingRetryConfig) Backoff(failures int) time.Duration {
	delay := c.InitialDelay
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > c.MaxDelay {
			return c.MaxDelay
		}
	}
	return delay
}

// PingWithRetry は疎通が取れるまで指数バックオフでPingを繰り返す。
// Attempts回すべて失敗した場合は最後のエラーを返す。
func (db *DB) PingWithRetry(ctx context.Context, cfg PingRetryConfig) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := cfg.Backoff(i)
		slog.Warn("database not reachable, retrying",
			slog.Int("attempt", i+1),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("database ping retry aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}
