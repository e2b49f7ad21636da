package ffmpeg

import "time"

const (
	defaultBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// RetryState tracks the attempts made for one unit of work (a chunk) and
// decides whether a failure earns another try.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	Backoff     time.Duration // Delay before the first retry; doubles per retry.
}

// NewRetryState allows retries extra attempts after the first.
func NewRetryState(retries int) *RetryState {
	if retries < 0 {
		retries = 0
	}
	return &RetryState{
		MaxAttempts: retries + 1,
		Backoff:     defaultBackoff,
	}
}

// Advance records a failed attempt and returns the delay before the next
// one. It returns false when err is not transient or the attempt limit is
// reached.
func (s *RetryState) Advance(err error) (time.Duration, bool) {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts || !IsTransient(err) {
		return 0, false
	}
	d := s.Backoff << (s.Attempt - 1)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d, true
}
