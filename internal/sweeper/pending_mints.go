package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/messaging"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/store"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

const (
	DEFAULT_SWEEP_INTERVAL = time.Minute // Time to sleep between sweep cycles
)

// PendingMintSweeperConfig holds configuration for the pending mint sweeper
type PendingMintSweeperConfig struct {
	BatchSize      int           // Attempts to settle per cycle
	WorkerPoolSize int           // Concurrent receipt lookups
	Interval       time.Duration // Sleep between cycles
	StaleAfter     time.Duration // Only settle attempts not updated for this long
	// FlushMaxElapsedTime bounds the retries of a journal flush
	FlushMaxElapsedTime time.Duration
}

// attemptUpdate is the journal change produced by settling one attempt
type attemptUpdate struct {
	attemptID string
	state     schema.MintAttemptState
	result    *minting.Result
}

// pendingMintSweeper settles mint attempts whose confirmation or persistence did not complete.
// Settling re-reads the receipt and runs the same conditional update as a fresh mint; it never resubmits.
type pendingMintSweeper struct {
	config    *PendingMintSweeperConfig
	store     store.Store
	guard     *minting.Guard
	publisher messaging.Publisher
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewPendingMintSweeper creates a new pending mint sweeper
func NewPendingMintSweeper(
	config *PendingMintSweeperConfig,
	st store.Store,
	guard *minting.Guard,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_SWEEP_INTERVAL
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 1
	}
	if config.FlushMaxElapsedTime <= 0 {
		config.FlushMaxElapsedTime = 10 * time.Minute
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &pendingMintSweeper{
		config:    config,
		store:     st,
		guard:     guard,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *pendingMintSweeper) Name() string {
	return "pending-mint-sweeper"
}

// Start runs sweep cycles until the context is canceled or Stop is called
func (s *pendingMintSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting pending mint sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("interval", s.config.Interval),
		zap.Duration("stale_after", s.config.StaleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Pending mint sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Pending mint sweeper stop requested")
			return nil
		default:
			if _, err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
			if !s.sleep(ctx, s.config.Interval) {
				return nil
			}
		}
	}
}

// Stop gracefully stops the sweeper, waiting for the current cycle to finish
func (s *pendingMintSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping pending mint sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Pending mint sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Pending mint sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunOnce runs one sweep cycle outside the Start loop
func (s *pendingMintSweeper) RunOnce(ctx context.Context) (int, error) {
	if s.running.Load() {
		return 0, fmt.Errorf("sweeper already running")
	}
	return s.runSweepCycle(ctx)
}

// errSubmissionUnknown is recorded on attempts that never got past submitting
var errSubmissionUnknown = errors.New("submission outcome unknown: no transaction hash was recorded; reconcile from the logged hash")

// runSweepCycle settles one batch of stale attempts and returns how many were settled
func (s *pendingMintSweeper) runSweepCycle(ctx context.Context) (int, error) {
	startTime := s.clock.Now()
	updatedBefore := startTime.Add(-s.config.StaleAfter)

	if err := s.surfaceAbandonedSubmissions(ctx, updatedBefore); err != nil {
		return 0, err
	}

	attempts, err := s.store.GetMintAttempts(ctx, store.MintAttemptFilter{
		States:        schema.PendingMintAttemptStates,
		UpdatedBefore: &updatedBefore,
		Limit:         s.config.BatchSize,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get pending mint attempts: %w", err)
	}
	if len(attempts) == 0 {
		logger.DebugCtx(ctx, "No pending mint attempts")
		return 0, nil
	}

	logger.InfoCtx(ctx, "Found pending mint attempts", zap.Int("count", len(attempts)))

	var (
		mu      sync.Mutex
		updates []attemptUpdate
		settled atomic.Int32
	)

	pool := pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(len(attempts)),
		pond.WithContext(ctx),
	)

	for _, attempt := range attempts {
		if attempt.TransactionHash == nil {
			logger.WarnCtx(ctx, "Pending mint attempt has no transaction hash", zap.String("attempt_id", attempt.ID))
			continue
		}

		pool.Submit(func() {
			update, ok := s.settle(ctx, attempt)
			if !ok {
				return
			}
			if update.result.Outcome.Succeeded() {
				settled.Add(1)
			}
			mu.Lock()
			updates = append(updates, update)
			mu.Unlock()
		})
	}

	pool.StopAndWait()

	if err := s.flushAttemptUpdatesWithRetry(ctx, updates); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("CRITICAL: failed to flush mint attempt updates after retries: %w", err),
			zap.Int("attempt_count", len(updates)),
		)
	}

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("total_checked", len(attempts)),
		zap.Int32("settled", settled.Load()),
	)

	return int(settled.Load()), nil
}

// surfaceAbandonedSubmissions marks attempts stuck in submitting as unknown.
// The process stopped between sending the transaction and recording its hash, so only an operator can settle them.
func (s *pendingMintSweeper) surfaceAbandonedSubmissions(ctx context.Context, updatedBefore time.Time) error {
	attempts, err := s.store.GetMintAttempts(ctx, store.MintAttemptFilter{
		States:        []schema.MintAttemptState{schema.MintAttemptStateSubmitting},
		UpdatedBefore: &updatedBefore,
		Limit:         s.config.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to get abandoned mint attempts: %w", err)
	}

	updates := make([]attemptUpdate, 0, len(attempts))
	for _, attempt := range attempts {
		logger.WarnCtx(ctx, "Mint attempt abandoned while submitting",
			zap.String("attempt_id", attempt.ID),
			zap.Int64("product_id", attempt.ProductID),
			zap.Time("updated_at", attempt.UpdatedAt))
		updates = append(updates, attemptUpdate{
			attemptID: attempt.ID,
			state:     schema.MintAttemptStateUnknown,
			result:    &minting.Result{ProductID: attempt.ProductID, Err: errSubmissionUnknown},
		})
	}

	if err := s.flushAttemptUpdatesWithRetry(ctx, updates); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mark abandoned mint attempts: %w", err),
			zap.Int("attempt_count", len(updates)))
	}
	return nil
}

// settle re-checks one attempt; false means the receipt could not be read and the attempt is left as is
func (s *pendingMintSweeper) settle(ctx context.Context, attempt schema.MintAttempt) (attemptUpdate, bool) {
	ctx = logger.WithAttempt(ctx, attempt.ID, attempt.ProductID)

	res := s.guard.Recheck(ctx, attempt.ProductID, common.HexToHash(*attempt.TransactionHash))
	res.AttemptID = attempt.ID

	if res.Outcome == minting.OutcomeFailed {
		logger.WarnCtx(ctx, "Failed to re-check mint attempt", zap.Error(res.Err))
		return attemptUpdate{}, false
	}

	event := minting.EventFor(res, s.guard.Network(), s.guard.Contract(), s.clock.Now())
	if event != nil {
		if err := s.publisher.PublishTokenizationEvent(ctx, event); err != nil {
			logger.WarnCtx(ctx, "Failed to publish tokenization event", zap.Error(err))
		}
	}

	return attemptUpdate{
		attemptID: attempt.ID,
		state:     minting.AttemptState(res.Outcome),
		result:    res,
	}, true
}

// sleep waits for the duration; false when interrupted by cancellation or Stop
func (s *pendingMintSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}

// flushAttemptUpdatesWithRetry writes the settled states to the journal with exponential backoff retry.
// Updates already written are not repeated on retry.
func (s *pendingMintSweeper) flushAttemptUpdatesWithRetry(ctx context.Context, updates []attemptUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = s.config.FlushMaxElapsedTime

	remaining := updates
	operation := func() error {
		var failed []attemptUpdate
		var errs []error
		for _, u := range remaining {
			if err := s.store.UpdateMintAttempt(ctx, u.attemptID, toUpdateInput(u)); err != nil {
				failed = append(failed, u)
				errs = append(errs, err)
			}
		}
		remaining = failed
		return errors.Join(errs...)
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Mint attempt flush failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Int("remaining", len(remaining)),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return fmt.Errorf("failed after %d attempts: %w", attemptCount+1, err)
	}
	return nil
}

func toUpdateInput(u attemptUpdate) store.UpdateMintAttemptInput {
	input := store.UpdateMintAttemptInput{
		State:   u.state,
		TokenID: u.result.TokenIDString(),
	}
	if u.result.Err != nil {
		msg := u.result.Err.Error()
		input.LastError = &msg
	}
	return input
}
