package listener

import "time"

// Backoff defaults
const (
	DefaultBackoffBase = 30 * time.Second
	DefaultBackoffMax  = time.Hour
)

// backoffDelay returns the wait before the next poll after the given number
// of consecutive probe failures: base doubled per failure, capped at max.
// The delay never decreases while failures keep accumulating.
func backoffDelay(base, max time.Duration, failures int) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= max || d <= 0 {
			return max
		}
	}
	return d
}
