package minting

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/providers/ethereum"
	"github.com/vicuna-trace/ledger/internal/store"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

// Guard keeps the product's tokenization fields consistent with the chain.
// The only mutual exclusion between concurrent attempts is the conditional update in Persist.
type Guard struct {
	store store.Store
	chain ethereum.ChainClient
}

// NewGuard creates a reconciliation guard
func NewGuard(st store.Store, chain ethereum.ChainClient) *Guard {
	return &Guard{store: st, chain: chain}
}

// Network returns the network mints are settled on
func (g *Guard) Network() domain.NetworkID {
	return g.chain.RequiredNetwork()
}

// Contract returns the tokenization contract address
func (g *Guard) Contract() common.Address {
	return g.chain.ContractAddress()
}

// PreCheck fails with ErrAlreadyTokenized when the product already carries a token.
// It takes no lock; Persist is authoritative.
func (g *Guard) PreCheck(ctx context.Context, productID int64) error {
	product, err := g.store.GetProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if product.HasToken {
		return domain.ErrAlreadyTokenized
	}
	return nil
}

// Persist records the mint on the product with a single compare-and-set on has_token.
// A product that is already tokenized yields ErrAlreadyTokenized and is left untouched.
func (g *Guard) Persist(ctx context.Context, productID int64, txHash common.Hash, tokenID *big.Int) error {
	input := store.MarkTokenizedInput{
		ProductID:       productID,
		TransactionHash: txHash.Hex(),
	}
	if tokenID != nil {
		s := tokenID.String()
		input.TokenID = &s
	}

	applied, err := g.store.MarkProductTokenized(ctx, input)
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrAlreadyTokenized
	}
	return nil
}

// Recheck settles a known transaction without resubmitting it: it reads the receipt,
// checks that the transaction minted this product, extracts the token id and runs the
// same conditional update as Persist.
//
// A product already tokenized by the same transaction settles as done, filling a token id that was unknown.
func (g *Guard) Recheck(ctx context.Context, productID int64, txHash common.Hash) *Result {
	res := &Result{ProductID: productID, TxHash: txHash.Hex()}

	product, err := g.store.GetProductByID(ctx, productID)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("failed to load product: %w", err)
		return res
	}
	if product == nil {
		res.Outcome = OutcomeValidationFailed
		res.Err = domain.ErrProductNotFound
		return res
	}

	receipt, err := g.chain.ReceiptByHash(ctx, txHash)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	if receipt == nil {
		res.Outcome = OutcomeConfirmationTimedOut
		res.Err = fmt.Errorf("%w: %s is still pending", domain.ErrConfirmationTimedOut, txHash.Hex())
		return res
	}
	if receipt.Status == types.ReceiptStatusFailed {
		res.Outcome = OutcomeChainRejected
		res.Err = fmt.Errorf("%w: %s", domain.ErrTransactionReverted, txHash.Hex())
		return res
	}

	if err := g.verifyMintOf(ctx, product, txHash); err != nil {
		res.Outcome = OutcomeFailed
		if errors.Is(err, domain.ErrTransactionMismatch) {
			res.Outcome = OutcomeValidationFailed
		}
		res.Err = err
		logger.WarnCtx(ctx, "Re-checked transaction does not belong to product",
			zap.Int64("product_id", productID),
			zap.String("tx_hash", txHash.Hex()),
			zap.Error(err))
		return res
	}

	tokenID, found := g.chain.ExtractMintedTokenID(receipt)
	if found {
		res.TokenID = tokenID
	}

	err = g.Persist(ctx, productID, txHash, res.TokenID)
	switch {
	case err == nil:
		res.Outcome = settledOutcome(found)
	case errors.Is(err, domain.ErrAlreadyTokenized):
		g.settleExisting(ctx, res, txHash, found)
	case errors.Is(err, domain.ErrProductNotFound):
		res.Outcome = OutcomeValidationFailed
		res.Err = err
	default:
		res.Outcome = OutcomeConfirmedButNotPersisted
		res.Err = fmt.Errorf("%w: %v", domain.ErrConfirmedButNotPersisted, err)
	}

	logger.InfoCtx(ctx, "Transaction re-checked",
		zap.Int64("product_id", productID),
		zap.String("tx_hash", txHash.Hex()),
		zap.String("outcome", string(res.Outcome)))

	return res
}

// verifyMintOf fails with domain.ErrTransactionMismatch unless txHash minted the product.
// The journaled attempt that submitted the hash is authoritative; without one the
// calldata must carry the product's name and certificate number.
func (g *Guard) verifyMintOf(ctx context.Context, product *schema.Product, txHash common.Hash) error {
	if product.TransactionHash != nil && common.HexToHash(*product.TransactionHash) == txHash {
		return nil
	}

	attempt, err := g.store.GetMintAttemptByTxHash(ctx, txHash.Hex())
	if err != nil {
		return fmt.Errorf("failed to load mint attempt: %w", err)
	}
	if attempt != nil {
		if attempt.ProductID != product.ID {
			return fmt.Errorf("%w: %s was submitted for product %d", domain.ErrTransactionMismatch, txHash.Hex(), attempt.ProductID)
		}
		return nil
	}

	call, err := g.chain.MintCallByHash(ctx, txHash)
	if err != nil {
		return err
	}
	if call.ProductName != product.Name {
		return fmt.Errorf("%w: %s minted %q", domain.ErrTransactionMismatch, txHash.Hex(), call.ProductName)
	}
	if product.ProcessingCertificateID == nil {
		return fmt.Errorf("%w: product has no processing certificate", domain.ErrTransactionMismatch)
	}
	cert, err := g.store.GetProcessingCertificateByID(ctx, *product.ProcessingCertificateID)
	if err != nil {
		return fmt.Errorf("failed to load processing certificate: %w", err)
	}
	if cert == nil || cert.Number != call.CertificateNumber {
		return fmt.Errorf("%w: %s cites certificate %q", domain.ErrTransactionMismatch, txHash.Hex(), call.CertificateNumber)
	}
	return nil
}

func (g *Guard) settleExisting(ctx context.Context, res *Result, txHash common.Hash, found bool) {
	product, err := g.store.GetProductByID(ctx, res.ProductID)
	if err != nil {
		res.Outcome = OutcomeConfirmedButNotPersisted
		res.Err = fmt.Errorf("%w: %v", domain.ErrConfirmedButNotPersisted, err)
		return
	}
	if product == nil {
		res.Outcome = OutcomeFailed
		res.Err = domain.ErrProductNotFound
		return
	}

	if product.TransactionHash == nil || common.HexToHash(*product.TransactionHash) != txHash {
		res.Outcome = OutcomeAlreadyTokenized
		res.Err = domain.ErrAlreadyTokenized
		return
	}

	if product.TokenID == nil && found {
		if _, err := g.store.SetProductTokenID(ctx, res.ProductID, *product.TransactionHash, res.TokenID.String()); err != nil {
			logger.WarnCtx(ctx, "Failed to fill token id",
				zap.Int64("product_id", res.ProductID),
				zap.String("tx_hash", txHash.Hex()),
				zap.Error(err))
		}
		res.Outcome = OutcomeDone
		return
	}

	if product.TokenID != nil && res.TokenID == nil {
		if tokenID, ok := new(big.Int).SetString(*product.TokenID, 10); ok {
			res.TokenID = tokenID
			found = true
		}
	}
	res.Outcome = settledOutcome(found)
}

func settledOutcome(tokenIDFound bool) Outcome {
	if tokenIDFound {
		return OutcomeDone
	}
	return OutcomeDoneWithoutTokenID
}
