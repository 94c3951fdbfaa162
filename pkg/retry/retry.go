// Package retry is a caller-side helper for gateway operations. The gateway
// itself never retries; callers that want retries use this package, which only
// repeats transport-class failures. Validation failures and provider
// rejections stop immediately: the provider answered, retrying would risk a
// double charge.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/microlend/paygate/internal/gateway"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig returns the default backoff schedule.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
	}
}

// Do runs a gateway operation with exponential backoff until it succeeds or
// fails for a reason other than transport. The last result is returned either
// way; callers inspect it exactly as they would a single-attempt result.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) *gateway.Result) *gateway.Result {
	var last *gateway.Result

	_ = retry.Do(
		func() error {
			last = fn(ctx)
			if last.Success {
				return nil
			}
			err := errors.New(last.Error)
			if last.Kind != gateway.KindTransport {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(cfg.MaxAttempts),
		retry.Delay(cfg.InitialDelay),
		retry.MaxDelay(cfg.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)

	return last
}
