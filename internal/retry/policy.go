// Package retry runs an operation again after transient failures, waiting a growing
// delay between attempts.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/foundation/normalization"
)

// BackoffMode selects how the delay grows between attempts.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

var modes = normalization.New(BackoffLinear, map[BackoffMode][]string{
	BackoffFixed:       {"constant"},
	BackoffLinear:      nil,
	BackoffExponential: {"exp"},
})

// ParseBackoff validates a configured mode name; blank means linear.
func ParseBackoff(raw string) (BackoffMode, error) { return modes.Parse(raw) }

// Policy is a retry schedule. The zero value never retries.
type Policy struct {
	Mode    BackoffMode
	Initial time.Duration // first delay
	Max     time.Duration // cap on any delay
	Retries int           // attempts after the first one
}

// DefaultPolicy is linear from 1s, capped at 30s, with two retries.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second, Retries: 2}
}

// NewPolicy fills a policy from configuration. Unknown modes and non-positive durations
// keep the defaults; negative retries keep the default count.
func NewPolicy(mode string, initial, maxDelay time.Duration, retries int) Policy {
	p := DefaultPolicy()
	p.Mode = modes.Or(mode)
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if retries >= 0 {
		p.Retries = retries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// Delay is the wait before retry n (n >= 1). It never exceeds Max.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := p.Initial
	switch p.Mode {
	case BackoffLinear:
		d = p.Initial * time.Duration(n)
	case BackoffExponential:
		for i := 1; i < n && d < p.Max; i++ {
			d *= 2
		}
	}
	if d <= 0 || d > p.Max {
		return p.Max
	}
	return d
}

// Do calls fn until it succeeds, the retries run out or ctx is done, and returns the last
// error. Classified errors that cannot be retried automatically end the loop at once.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if c, ok := ferrors.AsClassified(err); ok && !c.CanRetry() {
			return err
		}
		if attempt >= p.Retries {
			return err
		}

		wait := p.Delay(attempt + 1)
		slog.Debug("Retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait))
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w (last error: %w)", ctx.Err(), err)
		case <-t.C:
		}
	}
}
