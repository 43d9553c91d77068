package adapter

import "time"

// Clock is the time source of the ledger. Timestamps it hands out are UTC so journal
// rows and published events compare equal regardless of the host's zone.
//
//go:generate mockgen -source=clock.go -destination=../mocks/clock.go -package=mocks -mock_names=Clock=MockClock
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	After(d time.Duration) <-chan time.Time
}

type utcClock struct{}

// NewClock returns the wall clock
func NewClock() Clock {
	return utcClock{}
}

func (utcClock) Now() time.Time {
	return time.Now().UTC()
}

func (utcClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (utcClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
