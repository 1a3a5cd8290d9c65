package sync

import (
	"math/rand/v2"
	"time"
)

// Backoff maps a retry attempt index to a delay: base << attempt plus
// up to 10% uniform jitter, capped at Max. Pure policy; the mutator
// owns the actual sleeping.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff mirrors the store's throttling guidance: 1s, 2s, 4s...
// capped at 30s.
var DefaultBackoff = Backoff{
	Base: 1 * time.Second,
	Max:  30 * time.Second,
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			d = b.Max
			break
		}
	}

	jitter := time.Duration(rand.Int64N(int64(d)/10 + 1))
	if d+jitter > b.Max {
		return b.Max
	}
	return d + jitter
}
