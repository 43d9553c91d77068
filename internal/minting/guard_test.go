package minting_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

func TestGuard_PersistIsConditional(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()

	require.NoError(t, tm.guard.Persist(ctx, productID, txHashA, big.NewInt(1)))

	err := tm.guard.Persist(ctx, productID, txHashB, big.NewInt(2))
	assert.ErrorIs(t, err, domain.ErrAlreadyTokenized)

	product, err := tm.mem.GetProductByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, txHashA.Hex(), *product.TransactionHash)
	assert.Equal(t, "1", *product.TokenID)

	assert.ErrorIs(t, tm.guard.PreCheck(ctx, productID), domain.ErrAlreadyTokenized)
	assert.ErrorIs(t, tm.guard.PreCheck(ctx, 404), domain.ErrProductNotFound)
}

func TestGuard_Recheck(t *testing.T) {
	t.Run("pending transaction", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})
		tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).Return(nil, nil)

		res := tm.guard.Recheck(context.Background(), productID, txHashA)

		assert.Equal(t, minting.OutcomeConfirmationTimedOut, res.Outcome)
		assert.ErrorIs(t, res.Err, domain.ErrConfirmationTimedOut)
	})

	t.Run("reverted transaction", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})
		tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).
			Return(&types.Receipt{Status: types.ReceiptStatusFailed, TxHash: txHashA}, nil)

		res := tm.guard.Recheck(context.Background(), productID, txHashA)

		assert.Equal(t, minting.OutcomeChainRejected, res.Outcome)
		assert.ErrorIs(t, res.Err, domain.ErrTransactionReverted)

		product, err := tm.mem.GetProductByID(context.Background(), productID)
		require.NoError(t, err)
		assert.False(t, product.HasToken)
	})

	t.Run("unknown product", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})

		res := tm.guard.Recheck(context.Background(), 404, txHashA)

		assert.Equal(t, minting.OutcomeValidationFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, domain.ErrProductNotFound)
	})

	t.Run("node error", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})
		tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).Return(nil, errors.New("503 service unavailable"))

		res := tm.guard.Recheck(context.Background(), productID, txHashA)

		assert.Equal(t, minting.OutcomeFailed, res.Outcome)
	})

	t.Run("token id filled on a later recheck", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})
		ctx := context.Background()
		tm.seedSubmittedAttempt(t, "01HZA", productID, txHashA)
		receipt := successReceipt(txHashA)
		tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).Return(receipt, nil).Times(2)
		gomock.InOrder(
			tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(nil, false),
			tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true),
		)

		first := tm.guard.Recheck(ctx, productID, txHashA)
		assert.Equal(t, minting.OutcomeDoneWithoutTokenID, first.Outcome)

		second := tm.guard.Recheck(ctx, productID, txHashA)
		assert.Equal(t, minting.OutcomeDone, second.Outcome)

		product, err := tm.mem.GetProductByID(ctx, productID)
		require.NoError(t, err)
		require.NotNil(t, product.TokenID)
		assert.Equal(t, "42", *product.TokenID)
	})

	t.Run("product tokenized by another transaction", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})
		ctx := context.Background()
		require.NoError(t, tm.guard.Persist(ctx, productID, txHashB, big.NewInt(2)))
		tm.seedSubmittedAttempt(t, "01HZA", productID, txHashA)

		receipt := successReceipt(txHashA)
		tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).Return(receipt, nil)
		tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(1), true)

		res := tm.guard.Recheck(ctx, productID, txHashA)

		assert.Equal(t, minting.OutcomeAlreadyTokenized, res.Outcome)
		assert.Equal(t, txHashA.Hex(), res.TxHash)

		product, err := tm.mem.GetProductByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, txHashB.Hex(), *product.TransactionHash)
		assert.Equal(t, "2", *product.TokenID)
	})

	t.Run("transaction submitted for another product", func(t *testing.T) {
		tm := setupTestMocks(t, minting.Config{})
		ctx := context.Background()
		tm.mem.PutProduct(schema.Product{ID: 2, Name: "Poncho"})
		tm.seedSubmittedAttempt(t, "01HZB", 2, txHashB)
		require.NoError(t, tm.guard.Persist(ctx, 2, txHashB, big.NewInt(7)))

		tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashB).Return(successReceipt(txHashB), nil)

		res := tm.guard.Recheck(ctx, productID, txHashB)

		assert.Equal(t, minting.OutcomeValidationFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, domain.ErrTransactionMismatch)
		assert.Nil(t, res.TokenID)

		product, err := tm.mem.GetProductByID(ctx, productID)
		require.NoError(t, err)
		assert.False(t, product.HasToken)
		assert.Nil(t, product.TransactionHash)

		other, err := tm.mem.GetProductByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, txHashB.Hex(), *other.TransactionHash)
		assert.Equal(t, "7", *other.TokenID)
	})

	t.Run("unjournaled transaction is checked against its calldata", func(t *testing.T) {
		poncho := expectedCall(buyer)
		poncho.ProductName = "Poncho"
		otherCertificate := expectedCall(buyer)
		otherCertificate.CertificateNumber = "CTPSFS-2023-001"

		tests := []struct {
			name     string
			call     *domain.MintCall
			err      error
			expected minting.Outcome
		}{
			{name: "mint of this product", call: callPtr(expectedCall(buyer)), expected: minting.OutcomeDone},
			{name: "mint of another product", call: &poncho, expected: minting.OutcomeValidationFailed},
			{name: "mint citing another certificate", call: &otherCertificate, expected: minting.OutcomeValidationFailed},
			{name: "not a mint", err: fmt.Errorf("%w: calldata is not a mint call", domain.ErrTransactionMismatch), expected: minting.OutcomeValidationFailed},
			{name: "node error", err: errors.New("503 service unavailable"), expected: minting.OutcomeFailed},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tm := setupTestMocks(t, minting.Config{})
				ctx := context.Background()
				receipt := successReceipt(txHashA)
				tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).Return(receipt, nil)
				tm.chain.EXPECT().MintCallByHash(gomock.Any(), txHashA).Return(tt.call, tt.err)
				if tt.expected == minting.OutcomeDone {
					tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true)
				}

				res := tm.guard.Recheck(ctx, productID, txHashA)

				assert.Equal(t, tt.expected, res.Outcome)
				product, err := tm.mem.GetProductByID(ctx, productID)
				require.NoError(t, err)
				assert.Equal(t, tt.expected == minting.OutcomeDone, product.HasToken)
				if tt.expected == minting.OutcomeValidationFailed {
					assert.ErrorIs(t, res.Err, domain.ErrTransactionMismatch)
				}
			})
		}
	})
}

func callPtr(c domain.MintCall) *domain.MintCall {
	return &c
}

func TestEventFor(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		result   *minting.Result
		expected *domain.TokenizationEventType
	}{
		{
			name:     "done",
			result:   &minting.Result{Outcome: minting.OutcomeDone, TxHash: txHashA.Hex(), TokenID: big.NewInt(5)},
			expected: eventType(domain.TokenizationEventTokenized),
		},
		{
			name:     "done without token id",
			result:   &minting.Result{Outcome: minting.OutcomeDoneWithoutTokenID, TxHash: txHashA.Hex()},
			expected: eventType(domain.TokenizationEventTokenized),
		},
		{
			name:     "confirmed but not persisted",
			result:   &minting.Result{Outcome: minting.OutcomeConfirmedButNotPersisted, TxHash: txHashA.Hex(), Err: domain.ErrConfirmedButNotPersisted},
			expected: eventType(domain.TokenizationEventDivergent),
		},
		{
			name:     "duplicate mint on-chain",
			result:   &minting.Result{Outcome: minting.OutcomeAlreadyTokenized, TxHash: txHashA.Hex()},
			expected: eventType(domain.TokenizationEventDivergent),
		},
		{
			name:   "already tokenized before submission",
			result: &minting.Result{Outcome: minting.OutcomeAlreadyTokenized},
		},
		{
			name:   "timed out",
			result: &minting.Result{Outcome: minting.OutcomeConfirmationTimedOut, TxHash: txHashA.Hex()},
		},
		{
			name:   "validation failed",
			result: &minting.Result{Outcome: minting.OutcomeValidationFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.result.ProductID = productID
			event := minting.EventFor(tt.result, network, contract, now)
			if tt.expected == nil {
				assert.Nil(t, event)
				return
			}
			require.NotNil(t, event)
			assert.Equal(t, *tt.expected, event.Type)
			assert.Equal(t, productID, event.ProductID)
			assert.Equal(t, network.CAIP2(), event.Network)
			assert.Equal(t, now, event.Timestamp)
			assert.Equal(t, tt.result.TokenIDString(), event.TokenID)
		})
	}
}

func eventType(t domain.TokenizationEventType) *domain.TokenizationEventType {
	return &t
}

func TestJournal_Snapshot(t *testing.T) {
	journal := minting.NewJournal(nil, adapter.NewJSON(), adapter.NewClock())
	attrs := domain.MintAttributes{
		ProductID:         productID,
		ProductName:       "Chalina",
		ArtisanName:       "Maria Lopez",
		CertificateNumber: "CTPSFS-2024-007",
		MassGrams:         1200,
	}

	canonical, digest, err := journal.Snapshot(attrs)
	require.NoError(t, err)
	assert.Equal(t, `{"artisan_name":"Maria Lopez","certificate_number":"CTPSFS-2024-007","mass_grams":1200,"product_id":1,"product_name":"Chalina"}`, string(canonical))

	_, again, err := journal.Snapshot(attrs)
	require.NoError(t, err)
	assert.Equal(t, digest, again)
	assert.Len(t, digest, 66)

	assert.Len(t, journal.NewAttemptID(), 26)
	assert.NotEqual(t, journal.NewAttemptID(), journal.NewAttemptID())
}

func TestAttemptState(t *testing.T) {
	tests := map[minting.Outcome]schema.MintAttemptState{
		minting.OutcomeDone:                     schema.MintAttemptStateDone,
		minting.OutcomeDoneWithoutTokenID:       schema.MintAttemptStateDone,
		minting.OutcomeConfirmedButNotPersisted: schema.MintAttemptStateConfirmedNotPersisted,
		minting.OutcomeConfirmationTimedOut:     schema.MintAttemptStateConfirmationTimedOut,
		minting.OutcomeAlreadyTokenized:         schema.MintAttemptStateDuplicate,
		minting.OutcomeChainRejected:            schema.MintAttemptStateFailed,
		minting.OutcomeFailed:                   schema.MintAttemptStateFailed,
	}
	for outcome, expected := range tests {
		assert.Equal(t, expected, minting.AttemptState(outcome), outcome)
	}
}
