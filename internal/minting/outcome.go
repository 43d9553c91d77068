package minting

import (
	"errors"
	"math/big"

	"github.com/vicuna-trace/ledger/internal/domain"
)

// State is a step of a mint attempt
type State string

const (
	StateIdle                 State = "idle"
	StateWalletConnecting     State = "wallet_connecting"
	StateWalletConnected      State = "wallet_connected"
	StateNetworkValidating    State = "network_validating"
	StateSubmitting           State = "submitting"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateConfirmed            State = "confirmed"
	StatePersisting           State = "persisting"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

// Outcome is the terminal result reported to the caller of a mint attempt
type Outcome string

const (
	OutcomeDone                     Outcome = "done"
	OutcomeDoneWithoutTokenID       Outcome = "done_without_token_id"
	OutcomeConfirmedButNotPersisted Outcome = "confirmed_not_persisted"
	OutcomeConfirmationTimedOut     Outcome = "confirmation_timed_out"
	OutcomeAlreadyTokenized         Outcome = "already_tokenized"
	OutcomeValidationFailed         Outcome = "validation_failed"
	OutcomeWalletUnavailable        Outcome = "wallet_unavailable"
	OutcomeUserRejected             Outcome = "user_rejected"
	OutcomeWrongNetwork             Outcome = "wrong_network"
	OutcomeChainRejected            Outcome = "chain_rejected"
	OutcomeFailed                   Outcome = "failed"
)

var outcomeMessages = map[Outcome]string{
	OutcomeDone:                     "Product tokenized",
	OutcomeDoneWithoutTokenID:       "Product tokenized, but the token id could not be read from the transaction receipt",
	OutcomeConfirmedButNotPersisted: "Token minted on-chain but the product record was not updated; reconciliation required",
	OutcomeConfirmationTimedOut:     "Transaction submitted but not confirmed yet; it may still confirm later",
	OutcomeAlreadyTokenized:         "Product is already tokenized",
	OutcomeValidationFailed:         "Required mint attributes are missing",
	OutcomeWalletUnavailable:        "No signing wallet is available",
	OutcomeUserRejected:             "Wallet connection was rejected",
	OutcomeWrongNetwork:             "Wallet is connected to the wrong network",
	OutcomeChainRejected:            "The network rejected the mint transaction",
	OutcomeFailed:                   "Mint failed",
}

// Message returns the user-facing message of the outcome
func (o Outcome) Message() string {
	if msg, ok := outcomeMessages[o]; ok {
		return msg
	}
	return outcomeMessages[OutcomeFailed]
}

// Succeeded reports whether the product is tokenized by this attempt
func (o Outcome) Succeeded() bool {
	return o == OutcomeDone || o == OutcomeDoneWithoutTokenID
}

// Result is the terminal report of a mint attempt or re-check
type Result struct {
	AttemptID  string
	ProductID  int64
	Outcome    Outcome
	Trace      []State
	Attributes domain.MintAttributes
	// TxHash is empty when nothing was submitted
	TxHash  string
	TokenID *big.Int
	Err     error
}

// Message returns the user-facing message of the result
func (r *Result) Message() string {
	return r.Outcome.Message()
}

// State returns the last state the attempt reached
func (r *Result) State() State {
	if len(r.Trace) == 0 {
		return StateIdle
	}
	return r.Trace[len(r.Trace)-1]
}

// TokenIDString returns the decimal token id, nil when it is not known
func (r *Result) TokenIDString() *string {
	if r.TokenID == nil {
		return nil
	}
	s := r.TokenID.String()
	return &s
}

// outcomeForError classifies an error raised before the transaction was accepted by the node
func outcomeForError(err error) Outcome {
	var validationErr *domain.ValidationError
	var wrongNetworkErr *domain.WrongNetworkError
	var chainErr *domain.ChainError

	switch {
	case errors.As(err, &validationErr):
		return OutcomeValidationFailed
	case errors.Is(err, domain.ErrAlreadyTokenized):
		return OutcomeAlreadyTokenized
	case errors.Is(err, domain.ErrWalletUnavailable):
		return OutcomeWalletUnavailable
	case errors.Is(err, domain.ErrUserRejected):
		return OutcomeUserRejected
	case errors.As(err, &wrongNetworkErr):
		return OutcomeWrongNetwork
	case errors.Is(err, domain.ErrTransactionReverted), errors.As(err, &chainErr):
		return OutcomeChainRejected
	default:
		return OutcomeFailed
	}
}
