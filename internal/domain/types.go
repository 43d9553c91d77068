package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkID is the EIP-155 chain id of an Ethereum network
type NetworkID uint64

const (
	NetworkEthereumMainnet NetworkID = 1
	NetworkEthereumSepolia NetworkID = 11155111
	NetworkPolygonMainnet  NetworkID = 137
	NetworkPolygonAmoy     NetworkID = 80002
)

// CAIP2 returns the network identifier in CAIP-2 format (e.g. "eip155:1")
func (n NetworkID) CAIP2() string {
	return fmt.Sprintf("eip155:%d", uint64(n))
}

// BigInt returns the network id as a big.Int for transaction signing
func (n NetworkID) BigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(n))
}

func (n NetworkID) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// ParseNetworkID parses either a plain chain id ("11155111") or a CAIP-2 id ("eip155:11155111")
func ParseNetworkID(s string) (NetworkID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "eip155:")
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid network id: %q", s)
	}
	return NetworkID(id), nil
}

// MintAttributes are the human-readable provenance attributes written on-chain for a product
type MintAttributes struct {
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name"`
	ArtisanName       string `json:"artisan_name"`
	CertificateNumber string `json:"certificate_number"`
	MassGrams         uint64 `json:"mass_grams"`
}

// MissingFields returns the names of the attributes that are empty or zero
func (a MintAttributes) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.ProductName) == "" {
		missing = append(missing, "product_name")
	}
	if strings.TrimSpace(a.ArtisanName) == "" {
		missing = append(missing, "artisan_name")
	}
	if strings.TrimSpace(a.CertificateNumber) == "" {
		missing = append(missing, "certificate_number")
	}
	if a.MassGrams == 0 {
		missing = append(missing, "mass_grams")
	}
	return missing
}

// MintCall is a single invocation of the contract's mint function
type MintCall struct {
	From              common.Address
	To                common.Address
	ProductName       string
	ArtisanName       string
	CertificateNumber string
	MassGrams         uint64
}

// NewMintCall builds a mint call for the given signer, recipient and attributes
func NewMintCall(from, to common.Address, attrs MintAttributes) MintCall {
	return MintCall{
		From:              from,
		To:                to,
		ProductName:       attrs.ProductName,
		ArtisanName:       attrs.ArtisanName,
		CertificateNumber: attrs.CertificateNumber,
		MassGrams:         attrs.MassGrams,
	}
}

// Validate checks that every argument of the call is present
func (c MintCall) Validate() error {
	missing := MintAttributes{
		ProductName:       c.ProductName,
		ArtisanName:       c.ArtisanName,
		CertificateNumber: c.CertificateNumber,
		MassGrams:         c.MassGrams,
	}.MissingFields()
	if c.To == (common.Address{}) {
		missing = append([]string{"recipient"}, missing...)
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// PendingTransaction is a signed mint transaction that was accepted by the node
type PendingTransaction struct {
	Hash        common.Hash
	From        common.Address
	Nonce       uint64
	SubmittedAt time.Time
}

// TokenizationEventType is the type of event published after a mint attempt settles
type TokenizationEventType string

const (
	// TokenizationEventTokenized is published when the store reflects the minted token
	TokenizationEventTokenized TokenizationEventType = "tokenized"
	// TokenizationEventDivergent is published when a token exists on-chain but the store does not reflect it
	TokenizationEventDivergent TokenizationEventType = "divergent"
)

// TokenizationEvent notifies other services about the tokenization state of a product
type TokenizationEvent struct {
	Type            TokenizationEventType `json:"type"`
	AttemptID       string                `json:"attempt_id"`
	ProductID       int64                 `json:"product_id"`
	Network         string                `json:"network"`
	ContractAddress string                `json:"contract_address"`
	TransactionHash string                `json:"transaction_hash"`
	TokenID         *string               `json:"token_id,omitempty"`
	Reason          string                `json:"reason,omitempty"`
	Timestamp       time.Time             `json:"timestamp"`
}
