package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const minDelay = time.Millisecond

type Options struct {
	// MaxAttempts counts the first call too, so 3 means up to 2 retries.
	MaxAttempts int
	Delay       time.Duration
	// Retryable decides whether the error returned by the action is worth another attempt.
	Retryable func(err error) bool
	// OnRetry runs between attempts, never after the last one. If it fails
	// the loop stops and the action error is returned.
	OnRetry func(ctx context.Context, attempt int, err error) error
}

// Do runs action until it succeeds, fails with a non-retryable error or runs out of attempts.
// The error of the last attempt is returned as is.
func Do(ctx context.Context, opts Options, action func(ctx context.Context) error) error {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Delay < minDelay {
		opts.Delay = minDelay
	}

	backoff := goretry.WithMaxRetries(uint64(opts.MaxAttempts-1), goretry.NewConstant(opts.Delay))

	attempt := 0
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		err := action(ctx)
		if err == nil {
			return nil
		}

		if opts.Retryable == nil || !opts.Retryable(err) || attempt >= opts.MaxAttempts {
			return err
		}

		if opts.OnRetry != nil {
			if hookErr := opts.OnRetry(ctx, attempt, err); hookErr != nil {
				return err
			}
		}

		return goretry.RetryableError(err)
	})
}
