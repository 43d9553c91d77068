package schema

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// MintAttemptState is the last recorded state of a mint attempt
type MintAttemptState string

const (
	MintAttemptStateSubmitting            MintAttemptState = "submitting"
	MintAttemptStateAwaitingConfirmation  MintAttemptState = "awaiting_confirmation"
	MintAttemptStateConfirmationTimedOut  MintAttemptState = "confirmation_timed_out"
	MintAttemptStateConfirmedNotPersisted MintAttemptState = "confirmed_not_persisted"
	// MintAttemptStateDuplicate means the transaction minted a token for a product that another attempt tokenized first
	MintAttemptStateDuplicate MintAttemptState = "duplicate"
	MintAttemptStateDone      MintAttemptState = "done"
	MintAttemptStateFailed    MintAttemptState = "failed"
	// MintAttemptStateUnknown marks an attempt abandoned while submitting; it needs an operator
	MintAttemptStateUnknown MintAttemptState = "unknown"
)

// MintAttemptStates lists every state an attempt can be recorded in
var MintAttemptStates = []MintAttemptState{
	MintAttemptStateSubmitting,
	MintAttemptStateAwaitingConfirmation,
	MintAttemptStateConfirmationTimedOut,
	MintAttemptStateConfirmedNotPersisted,
	MintAttemptStateDuplicate,
	MintAttemptStateDone,
	MintAttemptStateFailed,
	MintAttemptStateUnknown,
}

// IsValidMintAttemptState checks if a state is a known mint attempt state
func IsValidMintAttemptState(s MintAttemptState) bool {
	return slices.Contains(MintAttemptStates, s)
}

// PendingMintAttemptStates are the states a reconciliation pass can still settle
var PendingMintAttemptStates = []MintAttemptState{
	MintAttemptStateAwaitingConfirmation,
	MintAttemptStateConfirmationTimedOut,
	MintAttemptStateConfirmedNotPersisted,
}

// MintAttempt represents the mint_attempts table - a journal of every attempt that reached the chain
type MintAttempt struct {
	// ID is the ULID of the attempt
	ID        string           `gorm:"column:id;primaryKey;type:text"`
	ProductID int64            `gorm:"column:product_id;not null;index"`
	State     MintAttemptState `gorm:"column:state;not null;type:text;index"`
	Network   string           `gorm:"column:network;not null;type:text"`
	// Recipient is the address receiving the token
	Recipient       string  `gorm:"column:recipient;not null;type:text"`
	TransactionHash *string `gorm:"column:transaction_hash;type:text;uniqueIndex"`
	TokenID         *string `gorm:"column:token_id;type:text"`
	LastError       *string `gorm:"column:last_error;type:text"`
	// Attributes is the canonical (RFC 8785) JSON of the attributes sent to the contract
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb;not null"`
	// AttributesDigest is the keccak256 of Attributes
	AttributesDigest string    `gorm:"column:attributes_digest;not null;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the MintAttempt model
func (MintAttempt) TableName() string {
	return "mint_attempts"
}
