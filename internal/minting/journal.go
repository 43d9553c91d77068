package minting

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/store"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// Journal records mint attempts that reach the chain.
// Writes are best-effort: failures are logged and never change an attempt's outcome.
type Journal struct {
	store store.Store
	json  adapter.JSON
	clock adapter.Clock
}

// NewJournal creates a mint attempt journal
func NewJournal(st store.Store, json adapter.JSON, clock adapter.Clock) *Journal {
	return &Journal{store: st, json: json, clock: clock}
}

// NewAttemptID returns a time-ordered attempt id
func (j *Journal) NewAttemptID() string {
	return ulid.MustNew(ulid.Timestamp(j.clock.Now()), ulid.DefaultEntropy()).String()
}

// Snapshot returns the canonical JSON of the attributes and its keccak256 digest
func (j *Journal) Snapshot(attrs domain.MintAttributes) ([]byte, string, error) {
	canonical, err := j.json.Canonicalize(attrs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to canonicalize attributes: %w", err)
	}
	return canonical, crypto.Keccak256Hash(canonical).Hex(), nil
}

// Begin records an attempt about to be submitted
func (j *Journal) Begin(ctx context.Context, attemptID string, network domain.NetworkID, recipient common.Address, attrs domain.MintAttributes) {
	canonical, digest, err := j.Snapshot(attrs)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to snapshot mint attributes", zap.Error(err))
		return
	}

	attempt := &schema.MintAttempt{
		ID:               attemptID,
		ProductID:        attrs.ProductID,
		State:            schema.MintAttemptStateSubmitting,
		Network:          network.CAIP2(),
		Recipient:        recipient.Hex(),
		Attributes:       datatypes.JSON(canonical),
		AttributesDigest: digest,
	}
	if err := j.store.CreateMintAttempt(ctx, attempt); err != nil {
		logger.WarnCtx(ctx, "Failed to record mint attempt", zap.Error(err))
	}
}

// Record updates the state of an attempt
func (j *Journal) Record(ctx context.Context, attemptID string, state schema.MintAttemptState, res *Result) {
	input := store.UpdateMintAttemptInput{State: state}
	if res != nil {
		if res.TxHash != "" {
			txHash := res.TxHash
			input.TransactionHash = &txHash
		}
		input.TokenID = res.TokenIDString()
		if res.Err != nil {
			msg := res.Err.Error()
			input.LastError = &msg
		}
	}

	if err := j.store.UpdateMintAttempt(ctx, attemptID, input); err != nil {
		logger.WarnCtx(ctx, "Failed to update mint attempt",
			zap.String("state", string(state)),
			zap.Error(err))
	}
}

// Settle records the result of a re-check on the attempt that submitted the transaction, if any
func (j *Journal) Settle(ctx context.Context, res *Result) {
	attempt, err := j.store.GetMintAttemptByTxHash(ctx, res.TxHash)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to load mint attempt", zap.String("tx_hash", res.TxHash), zap.Error(err))
		return
	}
	if attempt == nil {
		return
	}
	res.AttemptID = attempt.ID
	j.Record(ctx, attempt.ID, AttemptState(res.Outcome), res)
}

// AttemptState maps the outcome of a submitted transaction to its journal state
func AttemptState(o Outcome) schema.MintAttemptState {
	switch o {
	case OutcomeDone, OutcomeDoneWithoutTokenID:
		return schema.MintAttemptStateDone
	case OutcomeConfirmedButNotPersisted:
		return schema.MintAttemptStateConfirmedNotPersisted
	case OutcomeConfirmationTimedOut:
		return schema.MintAttemptStateConfirmationTimedOut
	case OutcomeAlreadyTokenized:
		return schema.MintAttemptStateDuplicate
	default:
		return schema.MintAttemptStateFailed
	}
}
