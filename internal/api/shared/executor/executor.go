package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vicuna-trace/ledger/internal/api/shared/dto"
	apierrors "github.com/vicuna-trace/ledger/internal/api/shared/errors"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/provenance"
	"github.com/vicuna-trace/ledger/internal/store"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/mock_api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetProvenance resolves the certification chain of a product, nil when the product does not exist
	GetProvenance(ctx context.Context, productID int64) (*dto.ProvenanceResponse, error)

	// MintProduct runs a mint attempt; the outcome is reported in the response, not as an error
	MintProduct(ctx context.Context, productID int64, recipient *common.Address, confirmationTimeout time.Duration) (*dto.MintResponse, error)

	// RecheckProduct settles a previously submitted transaction without resubmitting it
	RecheckProduct(ctx context.Context, productID int64, txHash common.Hash) (*dto.MintResponse, error)

	// ListMintAttempts lists recorded mint attempts, oldest update first
	ListMintAttempts(ctx context.Context, productID *int64, states []schema.MintAttemptState, limit int) (*dto.MintAttemptListResponse, error)
}

type executor struct {
	store        store.Store
	resolver     *provenance.Resolver
	orchestrator *minting.Orchestrator
}

// NewExecutor creates an executor over the provenance resolver and mint orchestrator
func NewExecutor(st store.Store, resolver *provenance.Resolver, orchestrator *minting.Orchestrator) Executor {
	return &executor{store: st, resolver: resolver, orchestrator: orchestrator}
}

func (e *executor) GetProvenance(ctx context.Context, productID int64) (*dto.ProvenanceResponse, error) {
	attrs, p, err := e.resolver.Attributes(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, nil
		}
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to resolve provenance: %v", err))
	}

	resp := mapProvenanceToDTO(p)
	resp.Attributes = attrs
	resp.MissingAttributes = attrs.MissingFields()
	return resp, nil
}

func (e *executor) MintProduct(ctx context.Context, productID int64, recipient *common.Address, confirmationTimeout time.Duration) (*dto.MintResponse, error) {
	res := e.orchestrator.Mint(ctx, productID, minting.MintOptions{
		Recipient:           recipient,
		ConfirmationTimeout: confirmationTimeout,
	})
	return mapResultToDTO(res), nil
}

func (e *executor) RecheckProduct(ctx context.Context, productID int64, txHash common.Hash) (*dto.MintResponse, error) {
	res := e.orchestrator.Recheck(ctx, productID, txHash)
	return mapResultToDTO(res), nil
}

func (e *executor) ListMintAttempts(ctx context.Context, productID *int64, states []schema.MintAttemptState, limit int) (*dto.MintAttemptListResponse, error) {
	attempts, err := e.store.GetMintAttempts(ctx, store.MintAttemptFilter{
		ProductID: productID,
		States:    states,
		Limit:     limit,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list mint attempts: %v", err))
	}

	items := make([]dto.MintAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, mapMintAttemptToDTO(a))
	}

	return &dto.MintAttemptListResponse{Items: items, Total: len(items)}, nil
}
