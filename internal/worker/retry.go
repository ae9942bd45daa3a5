package worker

import "time"

// RetryPolicy schedules re-delivery of failed report tasks. Report
// generation hits the filesystem and the reservations table, so transient
// failures (locked database, full disk being cleaned up) are retried with
// growing gaps before the task goes to the dead-letter list.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultReportRetryPolicy retries five times over roughly two minutes:
// 2s, 4s, 8s, 16s, 32s.
func DefaultReportRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
}

// NextDelay returns how long to wait before the given attempt (1-based).
// The delay grows by BackoffFactor per attempt and is clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := float64(initial)
	for i := 1; i < attempt; i++ {
		d *= factor
		if r.MaxDelay > 0 && time.Duration(d) > r.MaxDelay {
			return r.MaxDelay
		}
	}

	delay := time.Duration(d)
	if delay <= 0 {
		return time.Second
	}
	return delay
}
