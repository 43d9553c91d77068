package sweeper

import (
	"context"
)

// Sweeper settles work that a request path left unfinished, such as a mint whose
// confirmation timed out. Start loops until canceled; RunOnce serves operators
// who want a single pass without running the loop.
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start blocks, running a cycle per interval until ctx is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop waits for the in-flight cycle to finish
	Stop(ctx context.Context) error

	// RunOnce runs a single cycle and returns how many items reached a settled state.
	// It fails while the Start loop is running.
	RunOnce(ctx context.Context) (int, error)

	Name() string
}
