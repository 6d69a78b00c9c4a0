package bridge

import "time"

// Default retry bounds for a camera stream.
const (
	defaultMinBackoff = 1 * time.Second
	defaultMaxBackoff = 15 * time.Second
)

// backoff is the retry delay state for one supervisor. Growth is driven by
// consecutive failures since the last authenticated success, not by
// lifetime attempt count.
type backoff struct {
	min time.Duration
	max time.Duration
	cur time.Duration
}

func newBackoff(min, max time.Duration) backoff {
	if min <= 0 {
		min = defaultMinBackoff
	}
	if max < min {
		max = defaultMaxBackoff
	}
	return backoff{min: min, max: max, cur: min}
}

// Next returns the delay to sleep before the next attempt and doubles the
// stored delay up to the cap.
func (b *backoff) Next() time.Duration {
	d := b.cur
	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}
	return d
}

// Reset drops the delay back to the minimum. Called after any attempt that
// passed authentication, so a camera that was streaming and dropped is
// retried promptly.
func (b *backoff) Reset() {
	b.cur = b.min
}
