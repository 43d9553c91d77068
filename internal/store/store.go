package store

import (
	"context"
	"time"

	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// OriginCertificateFilter narrows origin certificates by artisan, extraction site and year.
// Nil site or year means no narrowing on that column.
type OriginCertificateFilter struct {
	ArtisanID        int64
	ExtractionSiteID *int64
	Year             *int
}

// MarkTokenizedInput is the single conditional update applied when a mint settles
type MarkTokenizedInput struct {
	ProductID       int64
	TransactionHash string
	TokenID         *string
}

// UpdateMintAttemptInput updates the journal entry of a mint attempt.
// Nil fields are left untouched.
type UpdateMintAttemptInput struct {
	State           schema.MintAttemptState
	TransactionHash *string
	TokenID         *string
	LastError       *string
}

// MintAttemptFilter selects journal entries
type MintAttemptFilter struct {
	ProductID     *int64
	States        []schema.MintAttemptState
	UpdatedBefore *time.Time
	Limit         int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetProductByID retrieves a product by id, nil when it does not exist
	GetProductByID(ctx context.Context, id int64) (*schema.Product, error)
	// GetArtisanByID retrieves an artisan with its cooperative, nil when it does not exist
	GetArtisanByID(ctx context.Context, id int64) (*schema.Artisan, error)
	// GetProcessingCertificateByID retrieves a processing certificate with its entries, nil when it does not exist
	GetProcessingCertificateByID(ctx context.Context, id int64) (*schema.ProcessingCertificate, error)
	// GetOriginCertificates retrieves origin certificates matching the filter
	GetOriginCertificates(ctx context.Context, filter OriginCertificateFilter) ([]schema.OriginCertificate, error)
	// ReplaceTransformationEntries deletes all entries of a certificate and inserts the given set in one transaction
	ReplaceTransformationEntries(ctx context.Context, certificateID int64, entries []schema.TransformationEntry) error

	// MarkProductTokenized sets has_token, transaction_hash and token_id together, only if has_token is false.
	// Returns false when the product was already tokenized.
	MarkProductTokenized(ctx context.Context, input MarkTokenizedInput) (bool, error)
	// SetProductTokenID fills token_id for a tokenized product whose token id was unknown
	SetProductTokenID(ctx context.Context, productID int64, transactionHash string, tokenID string) (bool, error)

	// CreateMintAttempt records a new mint attempt
	CreateMintAttempt(ctx context.Context, attempt *schema.MintAttempt) error
	// UpdateMintAttempt updates the state of a recorded mint attempt
	UpdateMintAttempt(ctx context.Context, id string, input UpdateMintAttemptInput) error
	// GetMintAttemptByTxHash retrieves the attempt that submitted a transaction, nil when unknown
	GetMintAttemptByTxHash(ctx context.Context, txHash string) (*schema.MintAttempt, error)
	// GetMintAttempts lists attempts matching the filter, oldest update first
	GetMintAttempts(ctx context.Context, filter MintAttemptFilter) ([]schema.MintAttempt, error)
}
