package dto

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vicuna-trace/ledger/internal/domain"
)

// MintRequest is the body of POST /products/:id/mint
type MintRequest struct {
	// Recipient overrides the configured token recipient
	Recipient *string `json:"recipient"`
	// ConfirmationTimeout is a Go duration such as "2m"
	ConfirmationTimeout string `json:"confirmation_timeout"`
}

// Validate validates the request and returns the parsed recipient and timeout
func (r MintRequest) Validate() (*common.Address, time.Duration, error) {
	var recipient *common.Address
	if r.Recipient != nil {
		if !common.IsHexAddress(*r.Recipient) {
			return nil, 0, fmt.Errorf("invalid recipient address: %s", *r.Recipient)
		}
		addr := common.HexToAddress(*r.Recipient)
		recipient = &addr
	}

	var timeout time.Duration
	if r.ConfirmationTimeout != "" {
		d, err := time.ParseDuration(r.ConfirmationTimeout)
		if err != nil || d <= 0 {
			return nil, 0, fmt.Errorf("invalid confirmation_timeout: %s", r.ConfirmationTimeout)
		}
		timeout = d
	}

	return recipient, timeout, nil
}

// RecheckRequest is the body of POST /products/:id/recheck
type RecheckRequest struct {
	TransactionHash string `json:"transaction_hash" binding:"required"`
}

// Validate validates the request and returns the parsed hash
func (r RecheckRequest) Validate() (common.Hash, error) {
	b, err := hexutil.Decode(r.TransactionHash)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid transaction_hash: %s", r.TransactionHash)
	}
	return common.BytesToHash(b), nil
}

// MintResponse reports the outcome of a mint attempt or re-check
type MintResponse struct {
	AttemptID       string                 `json:"attempt_id,omitempty"`
	ProductID       int64                  `json:"product_id"`
	Outcome         string                 `json:"outcome"`
	Message         string                 `json:"message"`
	State           string                 `json:"state,omitempty"`
	Trace           []string               `json:"trace,omitempty"`
	TransactionHash *string                `json:"transaction_hash,omitempty"`
	TokenID         *string                `json:"token_id,omitempty"`
	Attributes      *domain.MintAttributes `json:"attributes,omitempty"`
	Error           *string                `json:"error,omitempty"`
	// ProductNotFound is set when the product does not exist
	ProductNotFound bool `json:"-"`
}

// MintAttemptResponse is one entry of the mint attempt journal
type MintAttemptResponse struct {
	ID               string    `json:"id"`
	ProductID        int64     `json:"product_id"`
	State            string    `json:"state"`
	Network          string    `json:"network"`
	Recipient        string    `json:"recipient"`
	TransactionHash  *string   `json:"transaction_hash,omitempty"`
	TokenID          *string   `json:"token_id,omitempty"`
	LastError        *string   `json:"last_error,omitempty"`
	AttributesDigest string    `json:"attributes_digest"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MintAttemptListResponse is a page of mint attempts
type MintAttemptListResponse struct {
	Items []MintAttemptResponse `json:"items"`
	Total int                   `json:"total"`
}
