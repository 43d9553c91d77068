package minting

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/messaging"
	"github.com/vicuna-trace/ledger/internal/provenance"
	"github.com/vicuna-trace/ledger/internal/providers/ethereum"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

const (
	defaultPersistInitialInterval = 200 * time.Millisecond
	defaultPersistMaxElapsedTime  = 15 * time.Second
)

// Config holds orchestrator options
type Config struct {
	// DefaultRecipient receives the token when a mint does not name one; the signing account otherwise
	DefaultRecipient *common.Address
	// ConfirmationTimeout applies when a mint does not set its own
	ConfirmationTimeout time.Duration
	// MaxConfirmationTimeout caps the per-mint timeout. It must stay below the reconciler's
	// stale_after so a live attempt is never re-checked while it still waits.
	MaxConfirmationTimeout time.Duration
	PersistInitialInterval time.Duration
	// PersistMaxElapsedTime bounds persistence retries after confirmation
	PersistMaxElapsedTime time.Duration
}

// MintOptions are the per-attempt options of Mint
type MintOptions struct {
	Recipient           *common.Address
	ConfirmationTimeout time.Duration
}

// Orchestrator drives a mint attempt end to end:
// validate, connect, check network, submit, confirm, extract the token id and persist.
type Orchestrator struct {
	cfg       Config
	resolver  *provenance.Resolver
	chain     ethereum.ChainClient
	guard     *Guard
	journal   *Journal
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewOrchestrator creates a mint orchestrator
func NewOrchestrator(
	cfg Config,
	resolver *provenance.Resolver,
	chain ethereum.ChainClient,
	guard *Guard,
	journal *Journal,
	publisher messaging.Publisher,
	clock adapter.Clock,
) *Orchestrator {
	if cfg.PersistInitialInterval <= 0 {
		cfg.PersistInitialInterval = defaultPersistInitialInterval
	}
	if cfg.PersistMaxElapsedTime <= 0 {
		cfg.PersistMaxElapsedTime = defaultPersistMaxElapsedTime
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &Orchestrator{
		cfg:       cfg,
		resolver:  resolver,
		chain:     chain,
		guard:     guard,
		journal:   journal,
		publisher: publisher,
		clock:     clock,
	}
}

// stateOrder is the position of each state in a mint attempt; a trace only moves forward
var stateOrder = map[State]int{
	StateIdle:                 0,
	StateWalletConnecting:     1,
	StateWalletConnected:      2,
	StateNetworkValidating:    3,
	StateSubmitting:           4,
	StateAwaitingConfirmation: 5,
	StateConfirmed:            6,
	StatePersisting:           7,
	StateDone:                 8,
	StateFailed:               9,
}

// attempt tracks the states a single mint passes through
type attempt struct {
	ctx    context.Context
	result *Result
}

func (a *attempt) enter(s State) {
	if len(a.result.Trace) > 0 {
		if last := a.result.State(); stateOrder[s] <= stateOrder[last] {
			logger.ErrorCtx(a.ctx, fmt.Errorf("mint attempt cannot move from %s to %s", last, s))
			return
		}
	}
	a.result.Trace = append(a.result.Trace, s)
	logger.DebugCtx(a.ctx, "Mint attempt state", zap.String("state", string(s)))
}

func (a *attempt) fail(outcome Outcome, err error) *Result {
	a.enter(StateFailed)
	a.result.Outcome = outcome
	a.result.Err = err
	return a.result
}

// Mint runs one mint attempt for the product. Every call is a new attempt with a new id.
// Once a transaction is submitted, canceling ctx only stops waiting for its confirmation.
func (o *Orchestrator) Mint(ctx context.Context, productID int64, opts MintOptions) *Result {
	attemptID := o.journal.NewAttemptID()
	ctx = logger.WithAttempt(ctx, attemptID, productID)

	a := &attempt{ctx: ctx, result: &Result{AttemptID: attemptID, ProductID: productID}}
	a.enter(StateIdle)

	res := o.run(ctx, a, opts)
	o.report(ctx, res)
	return res
}

func (o *Orchestrator) run(ctx context.Context, a *attempt, opts MintOptions) *Result {
	productID := a.result.ProductID

	attrs, _, err := o.resolver.Attributes(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return a.fail(OutcomeValidationFailed, err)
		}
		return a.fail(OutcomeFailed, err)
	}
	a.result.Attributes = attrs

	if missing := attrs.MissingFields(); len(missing) > 0 {
		return a.fail(OutcomeValidationFailed, &domain.ValidationError{Fields: missing})
	}
	if opts.Recipient != nil && *opts.Recipient == (common.Address{}) {
		return a.fail(OutcomeValidationFailed, &domain.ValidationError{Fields: []string{"recipient"}})
	}

	if err := o.guard.PreCheck(ctx, productID); err != nil {
		return a.fail(outcomeForError(err), err)
	}

	a.enter(StateWalletConnecting)
	account, err := o.chain.ConnectAccount(ctx)
	if err != nil {
		return a.fail(outcomeForError(err), err)
	}
	a.enter(StateWalletConnected)

	recipient := account
	switch {
	case opts.Recipient != nil:
		recipient = *opts.Recipient
	case o.cfg.DefaultRecipient != nil:
		recipient = *o.cfg.DefaultRecipient
	}

	call := domain.NewMintCall(account, recipient, attrs)
	if err := call.Validate(); err != nil {
		return a.fail(OutcomeValidationFailed, err)
	}

	a.enter(StateNetworkValidating)
	network, err := o.chain.CurrentNetwork(ctx)
	if err != nil {
		return a.fail(OutcomeFailed, err)
	}
	if required := o.chain.RequiredNetwork(); network != required {
		return a.fail(OutcomeWrongNetwork, &domain.WrongNetworkError{Expected: required, Actual: network})
	}

	a.enter(StateSubmitting)
	o.journal.Begin(ctx, a.result.AttemptID, network, recipient, attrs)

	pending, err := o.chain.InvokeMint(ctx, call)
	if err != nil {
		res := a.fail(outcomeForError(err), err)
		o.journal.Record(ctx, res.AttemptID, schema.MintAttemptStateFailed, res)
		return res
	}
	a.result.TxHash = pending.Hash.Hex()

	a.enter(StateAwaitingConfirmation)
	o.journal.Record(ctx, a.result.AttemptID, schema.MintAttemptStateAwaitingConfirmation, a.result)

	timeout := o.confirmationTimeout(ctx, opts.ConfirmationTimeout)
	receipt, err := o.chain.AwaitConfirmation(ctx, pending, timeout)
	if err != nil {
		var res *Result
		if errors.Is(err, domain.ErrTransactionReverted) {
			res = a.fail(OutcomeChainRejected, err)
		} else {
			// the transaction may still confirm; the attempt stays in AwaitingConfirmation
			a.result.Outcome = OutcomeConfirmationTimedOut
			if !errors.Is(err, domain.ErrConfirmationTimedOut) {
				err = fmt.Errorf("%w: %v", domain.ErrConfirmationTimedOut, err)
			}
			a.result.Err = err
			res = a.result
		}
		o.journal.Record(ctx, res.AttemptID, AttemptState(res.Outcome), res)
		return res
	}

	a.enter(StateConfirmed)
	tokenID, found := o.chain.ExtractMintedTokenID(receipt)
	if found {
		a.result.TokenID = tokenID
	} else {
		logger.WarnCtx(ctx, "Minted token id not found in receipt logs", zap.String("tx_hash", pending.Hash.Hex()))
	}

	a.enter(StatePersisting)
	// persistence runs even when the caller stopped waiting
	persistCtx := context.WithoutCancel(ctx)
	err = o.persist(persistCtx, productID, pending.Hash, a.result.TokenID)
	switch {
	case err == nil:
		a.result.Outcome = settledOutcome(found)
	case errors.Is(err, domain.ErrAlreadyTokenized):
		// a try whose commit was reported as failed, or a reconciliation pass, may have stored this transaction
		o.guard.settleExisting(persistCtx, a.result, pending.Hash, found)
	default:
		a.result.Outcome = OutcomeConfirmedButNotPersisted
		a.result.Err = fmt.Errorf("%w: %v", domain.ErrConfirmedButNotPersisted, err)
	}

	res := a.result
	switch {
	case res.Outcome.Succeeded():
		a.enter(StateDone)
	case res.Outcome == OutcomeConfirmedButNotPersisted:
		// stays in Persisting until reconciled
	default:
		res = a.fail(res.Outcome, res.Err)
	}
	o.journal.Record(persistCtx, res.AttemptID, AttemptState(res.Outcome), res)
	return res
}

// confirmationTimeout picks the per-mint timeout, falling back to the configured one and capped by the maximum
func (o *Orchestrator) confirmationTimeout(ctx context.Context, requested time.Duration) time.Duration {
	timeout := requested
	if timeout <= 0 {
		timeout = o.cfg.ConfirmationTimeout
	}
	if limit := o.cfg.MaxConfirmationTimeout; limit > 0 && timeout > limit {
		logger.WarnCtx(ctx, "Confirmation timeout capped",
			zap.Duration("requested", timeout),
			zap.Duration("max", limit))
		timeout = limit
	}
	return timeout
}

// persist retries transient store failures with exponential backoff; it always tries at least once
func (o *Orchestrator) persist(ctx context.Context, productID int64, txHash common.Hash, tokenID *big.Int) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.cfg.PersistInitialInterval
	b.MaxElapsedTime = o.cfg.PersistMaxElapsedTime

	operation := func() error {
		err := o.guard.Persist(ctx, productID, txHash, tokenID)
		if errors.Is(err, domain.ErrAlreadyTokenized) || errors.Is(err, domain.ErrProductNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "Failed to persist mint, retrying",
			zap.String("tx_hash", txHash.Hex()),
			zap.Error(err),
			zap.Duration("retry_in", d))
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}

// Recheck settles a previously submitted transaction without resubmitting it
func (o *Orchestrator) Recheck(ctx context.Context, productID int64, txHash common.Hash) *Result {
	res := o.guard.Recheck(ctx, productID, txHash)
	o.journal.Settle(ctx, res)
	if res.AttemptID != "" {
		ctx = logger.WithAttempt(ctx, res.AttemptID, productID)
	}
	o.report(ctx, res)
	return res
}

// report logs the terminal outcome and publishes the matching event
func (o *Orchestrator) report(ctx context.Context, res *Result) {
	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.String("state", string(res.State())),
	}
	if res.TxHash != "" {
		fields = append(fields, zap.String("tx_hash", res.TxHash))
	}
	if res.TokenID != nil {
		fields = append(fields, zap.String("token_id", res.TokenID.String()))
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}

	switch {
	case res.Outcome.Succeeded():
		logger.InfoCtx(ctx, "Mint attempt finished", fields...)
	case res.Outcome == OutcomeConfirmedButNotPersisted:
		logger.ErrorCtx(ctx, errors.New("mint confirmed on-chain but not persisted"), fields...)
	default:
		logger.WarnCtx(ctx, "Mint attempt finished", fields...)
	}

	event := EventFor(res, o.chain.RequiredNetwork(), o.chain.ContractAddress(), o.clock.Now())
	if event == nil {
		return
	}
	if err := o.publisher.PublishTokenizationEvent(context.WithoutCancel(ctx), event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish tokenization event", zap.Error(err))
	}
}
