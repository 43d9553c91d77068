package minting_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/mocks"
	"github.com/vicuna-trace/ledger/internal/provenance"
	"github.com/vicuna-trace/ledger/internal/store"
	"github.com/vicuna-trace/ledger/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

const (
	productID int64 = 1
	network         = domain.NetworkEthereumSepolia
)

var (
	signer   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyer    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	contract = common.HexToAddress("0x3333333333333333333333333333333333333333")
	txHashA  = common.HexToHash("0xaaaa")
	txHashB  = common.HexToHash("0xbbbb")
)

var fullTrace = []minting.State{
	minting.StateIdle,
	minting.StateWalletConnecting,
	minting.StateWalletConnected,
	minting.StateNetworkValidating,
	minting.StateSubmitting,
	minting.StateAwaitingConfirmation,
	minting.StateConfirmed,
	minting.StatePersisting,
	minting.StateDone,
}

// testMocks contains all mocks and the orchestrator under test
type testMocks struct {
	ctrl         *gomock.Controller
	mem          *store.MemoryStore
	chain        *mocks.MockChainClient
	publisher    *mocks.MockPublisher
	guard        *minting.Guard
	orchestrator *minting.Orchestrator
}

// setupTestMocks seeds a mintable product and wires the orchestrator to mocked chain and publisher
func setupTestMocks(t *testing.T, cfg minting.Config) *testMocks {
	t.Helper()

	ctrl := gomock.NewController(t)
	mem := store.NewMemoryStore(adapter.NewClock())
	seedMintableProduct(mem)

	return newTestMocks(ctrl, mem, mem, cfg)
}

func newTestMocks(ctrl *gomock.Controller, mem *store.MemoryStore, st store.Store, cfg minting.Config) *testMocks {
	chain := mocks.NewMockChainClient(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	chain.EXPECT().RequiredNetwork().Return(network).AnyTimes()
	chain.EXPECT().ContractAddress().Return(contract).AnyTimes()

	clock := adapter.NewClock()
	guard := minting.NewGuard(st, chain)
	journal := minting.NewJournal(st, adapter.NewJSON(), clock)
	resolver := provenance.NewResolver(st, provenance.Config{})

	if cfg.PersistInitialInterval == 0 {
		cfg.PersistInitialInterval = 5 * time.Millisecond
	}
	if cfg.PersistMaxElapsedTime == 0 {
		cfg.PersistMaxElapsedTime = 50 * time.Millisecond
	}

	return &testMocks{
		ctrl:         ctrl,
		mem:          mem,
		chain:        chain,
		publisher:    publisher,
		guard:        guard,
		orchestrator: minting.NewOrchestrator(cfg, resolver, chain, guard, journal, publisher, clock),
	}
}

func seedMintableProduct(mem *store.MemoryStore) {
	artisanID := int64(1)
	certID := int64(10)
	mem.PutArtisan(schema.Artisan{ID: artisanID, IdentityNumber: "40112233", FirstName: "Maria", LastName: "Lopez"})
	mem.PutProcessingCertificate(schema.ProcessingCertificate{
		ID:     certID,
		Number: "CTPSFS-2024-007",
		Entries: []schema.TransformationEntry{
			{
				ID:          1,
				QuantityKg:  decimal.RequireFromString("1.2"),
				Unit:        domain.UNIT_KILOGRAM,
				CertifiedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	})
	mem.PutProduct(schema.Product{ID: productID, Name: "Chalina", ArtisanID: &artisanID, ProcessingCertificateID: &certID})
}

func expectedCall(to common.Address) domain.MintCall {
	return domain.MintCall{
		From:              signer,
		To:                to,
		ProductName:       "Chalina",
		ArtisanName:       "Maria Lopez",
		CertificateNumber: "CTPSFS-2024-007",
		MassGrams:         1200,
	}
}

func pending(hash common.Hash) *domain.PendingTransaction {
	return &domain.PendingTransaction{Hash: hash, From: signer, SubmittedAt: time.Now()}
}

func successReceipt(hash common.Hash) *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}
}

// expectSubmission sets up the chain calls of a mint that reaches the node
func (tm *testMocks) expectSubmission(to common.Address, hash common.Hash) {
	tm.chain.EXPECT().ConnectAccount(gomock.Any()).Return(signer, nil)
	tm.chain.EXPECT().CurrentNetwork(gomock.Any()).Return(network, nil)
	tm.chain.EXPECT().InvokeMint(gomock.Any(), expectedCall(to)).Return(pending(hash), nil)
}

// seedSubmittedAttempt journals an attempt that reached the chain with hash
func (tm *testMocks) seedSubmittedAttempt(t *testing.T, id string, product int64, hash common.Hash) {
	t.Helper()
	txHash := hash.Hex()
	require.NoError(t, tm.mem.CreateMintAttempt(context.Background(), &schema.MintAttempt{
		ID:               id,
		ProductID:        product,
		State:            schema.MintAttemptStateConfirmationTimedOut,
		Network:          network.CAIP2(),
		Recipient:        signer.Hex(),
		TransactionHash:  &txHash,
		Attributes:       []byte(`{}`),
		AttributesDigest: "0x00",
	}))
}

func (tm *testMocks) attemptStates(t *testing.T) []schema.MintAttemptState {
	t.Helper()
	pid := productID
	attempts, err := tm.mem.GetMintAttempts(context.Background(), store.MintAttemptFilter{ProductID: &pid})
	require.NoError(t, err)
	states := make([]schema.MintAttemptState, 0, len(attempts))
	for _, a := range attempts {
		states = append(states, a.State)
	}
	return states
}

func TestMint_Done(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()
	receipt := successReceipt(txHashA)

	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), time.Duration(0)).DoAndReturn(
		func(_ context.Context, tx *domain.PendingTransaction, _ time.Duration) (*types.Receipt, error) {
			assert.Equal(t, txHashA, tx.Hash)
			return receipt, nil
		})
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.TokenizationEvent) error {
			assert.Equal(t, domain.TokenizationEventTokenized, event.Type)
			assert.Equal(t, productID, event.ProductID)
			assert.Equal(t, "eip155:11155111", event.Network)
			assert.Equal(t, contract.Hex(), event.ContractAddress)
			assert.Equal(t, txHashA.Hex(), event.TransactionHash)
			require.NotNil(t, event.TokenID)
			assert.Equal(t, "42", *event.TokenID)
			return nil
		})

	res := tm.orchestrator.Mint(ctx, productID, minting.MintOptions{})

	require.NoError(t, res.Err)
	assert.Equal(t, minting.OutcomeDone, res.Outcome)
	assert.Equal(t, fullTrace, res.Trace)
	assert.Equal(t, txHashA.Hex(), res.TxHash)
	assert.Equal(t, "42", res.TokenID.String())
	assert.NotEmpty(t, res.AttemptID)
	assert.Equal(t, domain.MintAttributes{
		ProductID:         productID,
		ProductName:       "Chalina",
		ArtisanName:       "Maria Lopez",
		CertificateNumber: "CTPSFS-2024-007",
		MassGrams:         1200,
	}, res.Attributes)

	product, err := tm.mem.GetProductByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.HasToken)
	require.NotNil(t, product.TransactionHash)
	assert.Equal(t, txHashA.Hex(), *product.TransactionHash)
	require.NotNil(t, product.TokenID)
	assert.Equal(t, "42", *product.TokenID)

	attempt, err := tm.mem.GetMintAttemptByTxHash(ctx, txHashA.Hex())
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, res.AttemptID, attempt.ID)
	assert.Equal(t, schema.MintAttemptStateDone, attempt.State)
	assert.Equal(t, signer.Hex(), attempt.Recipient)
	assert.Equal(t, "eip155:11155111", attempt.Network)
	assert.JSONEq(t, `{"artisan_name":"Maria Lopez","certificate_number":"CTPSFS-2024-007","mass_grams":1200,"product_id":1,"product_name":"Chalina"}`, string(attempt.Attributes))
	assert.NotEmpty(t, attempt.AttributesDigest)
}

func TestMint_DoneWithoutTokenID(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()
	receipt := successReceipt(txHashA)

	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).Return(receipt, nil)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(nil, false)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).Return(nil)

	res := tm.orchestrator.Mint(ctx, productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeDoneWithoutTokenID, res.Outcome)
	assert.Equal(t, minting.StateDone, res.State())
	assert.Nil(t, res.TokenID)
	assert.NotEqual(t, minting.OutcomeDone.Message(), res.Message())

	product, err := tm.mem.GetProductByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.HasToken)
	assert.Nil(t, product.TokenID)
	require.NotNil(t, product.TransactionHash)
	assert.Equal(t, txHashA.Hex(), *product.TransactionHash)
}

func TestMint_RecipientSelection(t *testing.T) {
	defaultRecipient := common.HexToAddress("0x4444444444444444444444444444444444444444")

	tests := []struct {
		name     string
		cfg      minting.Config
		opts     minting.MintOptions
		expected common.Address
	}{
		{
			name:     "signing account by default",
			expected: signer,
		},
		{
			name:     "configured default recipient",
			cfg:      minting.Config{DefaultRecipient: &defaultRecipient},
			expected: defaultRecipient,
		},
		{
			name:     "explicit recipient wins",
			cfg:      minting.Config{DefaultRecipient: &defaultRecipient},
			opts:     minting.MintOptions{Recipient: &buyer},
			expected: buyer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestMocks(t, tt.cfg)
			receipt := successReceipt(txHashA)

			tm.expectSubmission(tt.expected, txHashA)
			tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).Return(receipt, nil)
			tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(7), true)
			tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).Return(nil)

			res := tm.orchestrator.Mint(context.Background(), productID, tt.opts)
			assert.Equal(t, minting.OutcomeDone, res.Outcome)
		})
	}
}

func TestMint_ConfirmationTimeoutIsPassedThrough(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{ConfirmationTimeout: time.Minute})
	receipt := successReceipt(txHashA)

	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), 5*time.Second).Return(receipt, nil)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(7), true)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).Return(nil)

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{ConfirmationTimeout: 5 * time.Second})
	assert.Equal(t, minting.OutcomeDone, res.Outcome)
}

func TestMint_ValidationFailsWithoutChainContact(t *testing.T) {
	tests := []struct {
		name    string
		product schema.Product
		opts    minting.MintOptions
		fields  []string
	}{
		{
			name:    "no certification history",
			product: schema.Product{ID: 2, Name: "Poncho"},
			fields:  []string{"artisan_name", "certificate_number", "mass_grams"},
		},
		{
			name:    "blank product name",
			product: schema.Product{ID: 2, Name: "  ", ArtisanID: int64Ptr(1), ProcessingCertificateID: int64Ptr(10)},
			fields:  []string{"product_name"},
		},
		{
			name:    "zero recipient",
			product: schema.Product{ID: 2, Name: "Poncho", ArtisanID: int64Ptr(1), ProcessingCertificateID: int64Ptr(10)},
			opts:    minting.MintOptions{Recipient: &common.Address{}},
			fields:  []string{"recipient"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestMocks(t, minting.Config{})
			tm.mem.PutProduct(tt.product)

			res := tm.orchestrator.Mint(context.Background(), tt.product.ID, tt.opts)

			assert.Equal(t, minting.OutcomeValidationFailed, res.Outcome)
			assert.Equal(t, []minting.State{minting.StateIdle, minting.StateFailed}, res.Trace)
			assert.Empty(t, res.TxHash)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, res.Err, &validationErr)
			assert.Equal(t, tt.fields, validationErr.Fields)
			assert.Empty(t, tm.attemptStates(t))
		})
	}
}

func TestMint_ProductNotFound(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})

	res := tm.orchestrator.Mint(context.Background(), 999, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeValidationFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrProductNotFound)
	assert.Equal(t, []minting.State{minting.StateIdle, minting.StateFailed}, res.Trace)
}

func TestMint_AlreadyTokenizedBeforeSubmission(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()

	applied, err := tm.mem.MarkProductTokenized(ctx, store.MarkTokenizedInput{ProductID: productID, TransactionHash: txHashB.Hex()})
	require.NoError(t, err)
	require.True(t, applied)

	res := tm.orchestrator.Mint(ctx, productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeAlreadyTokenized, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrAlreadyTokenized)
	assert.Empty(t, res.TxHash)
	assert.Equal(t, []minting.State{minting.StateIdle, minting.StateFailed}, res.Trace)
}

func TestMint_WalletFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected minting.Outcome
	}{
		{
			name:     "user rejected",
			err:      fmt.Errorf("%w: declined", domain.ErrUserRejected),
			expected: minting.OutcomeUserRejected,
		},
		{
			name:     "wallet unavailable",
			err:      fmt.Errorf("%w: no signing account configured", domain.ErrWalletUnavailable),
			expected: minting.OutcomeWalletUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestMocks(t, minting.Config{})
			tm.chain.EXPECT().ConnectAccount(gomock.Any()).Return(common.Address{}, tt.err)

			res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

			assert.Equal(t, tt.expected, res.Outcome)
			assert.Equal(t, []minting.State{minting.StateIdle, minting.StateWalletConnecting, minting.StateFailed}, res.Trace)
			assert.Empty(t, tm.attemptStates(t))
		})
	}
}

func TestMint_WrongNetwork(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	tm.chain.EXPECT().ConnectAccount(gomock.Any()).Return(signer, nil)
	tm.chain.EXPECT().CurrentNetwork(gomock.Any()).Return(domain.NetworkEthereumMainnet, nil)

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeWrongNetwork, res.Outcome)
	var wrongNetwork *domain.WrongNetworkError
	require.ErrorAs(t, res.Err, &wrongNetwork)
	assert.Equal(t, network, wrongNetwork.Expected)
	assert.Equal(t, domain.NetworkEthereumMainnet, wrongNetwork.Actual)
	assert.Equal(t, minting.StateNetworkValidating, res.Trace[len(res.Trace)-2])
	assert.Empty(t, tm.attemptStates(t))
}

func TestMint_ChainRejectsSubmission(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	tm.chain.EXPECT().ConnectAccount(gomock.Any()).Return(signer, nil)
	tm.chain.EXPECT().CurrentNetwork(gomock.Any()).Return(network, nil)
	tm.chain.EXPECT().InvokeMint(gomock.Any(), gomock.Any()).
		Return(nil, &domain.ChainError{Op: "estimate_gas", Err: errors.New("execution reverted: product already minted")})

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeChainRejected, res.Outcome)
	assert.Contains(t, res.Err.Error(), "execution reverted: product already minted")
	assert.Equal(t, minting.StateSubmitting, res.Trace[len(res.Trace)-2])
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateFailed}, tm.attemptStates(t))
}

func TestMint_TransactionReverted(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: %s", domain.ErrTransactionReverted, txHashA.Hex()))

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeChainRejected, res.Outcome)
	assert.Equal(t, txHashA.Hex(), res.TxHash)
	assert.Equal(t, minting.StateFailed, res.State())
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateFailed}, tm.attemptStates(t))

	product, err := tm.mem.GetProductByID(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, product.HasToken)
}

func TestMint_ConfirmationTimedOutThenRecheck(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()

	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: %s after 2m0s", domain.ErrConfirmationTimedOut, txHashA.Hex()))

	res := tm.orchestrator.Mint(ctx, productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeConfirmationTimedOut, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrConfirmationTimedOut)
	assert.Equal(t, minting.StateAwaitingConfirmation, res.State())
	assert.NotContains(t, res.Trace, minting.StateFailed)
	assert.Equal(t, txHashA.Hex(), res.TxHash)
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateConfirmationTimedOut}, tm.attemptStates(t))

	product, err := tm.mem.GetProductByID(ctx, productID)
	require.NoError(t, err)
	assert.False(t, product.HasToken)

	// the transaction confirmed after the attempt gave up
	receipt := successReceipt(txHashA)
	tm.chain.EXPECT().ReceiptByHash(gomock.Any(), txHashA).Return(receipt, nil).Times(2)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true).Times(2)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	rechecked := tm.orchestrator.Recheck(ctx, productID, txHashA)

	assert.Equal(t, minting.OutcomeDone, rechecked.Outcome)
	assert.Equal(t, res.AttemptID, rechecked.AttemptID)
	assert.Equal(t, "42", rechecked.TokenID.String())
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateDone}, tm.attemptStates(t))

	product, err = tm.mem.GetProductByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, product.HasToken)
	require.NotNil(t, product.TokenID)
	assert.Equal(t, "42", *product.TokenID)

	// re-checking a settled transaction is idempotent
	again := tm.orchestrator.Recheck(ctx, productID, txHashA)
	assert.Equal(t, minting.OutcomeDone, again.Outcome)
	assert.Equal(t, "42", again.TokenID.String())
}

func TestMint_PersistFailureIsReportedAsDivergence(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := store.NewMemoryStore(adapter.NewClock())
	seedMintableProduct(mem)
	failing := &failingMarkStore{MemoryStore: mem, err: errors.New("connection reset by peer")}
	tm := newTestMocks(ctrl, mem, failing, minting.Config{})

	receipt := successReceipt(txHashA)
	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).Return(receipt, nil)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.TokenizationEvent) error {
			assert.Equal(t, domain.TokenizationEventDivergent, event.Type)
			assert.Equal(t, txHashA.Hex(), event.TransactionHash)
			assert.Contains(t, event.Reason, "connection reset by peer")
			return nil
		})

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeConfirmedButNotPersisted, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrConfirmedButNotPersisted)
	assert.Equal(t, minting.StatePersisting, res.State())
	assert.Equal(t, "42", res.TokenID.String())
	assert.GreaterOrEqual(t, failing.calls.Load(), int32(1))
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateConfirmedNotPersisted}, tm.attemptStates(t))
}

func TestMint_PersistRetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := store.NewMemoryStore(adapter.NewClock())
	seedMintableProduct(mem)
	flaky := &failingMarkStore{MemoryStore: mem, err: errors.New("deadlock detected"), failures: 2}
	tm := newTestMocks(ctrl, mem, flaky, minting.Config{PersistMaxElapsedTime: 5 * time.Second})

	receipt := successReceipt(txHashA)
	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).Return(receipt, nil)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).Return(nil)

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeDone, res.Outcome)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestMint_PersistRetryFindsOwnTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := store.NewMemoryStore(adapter.NewClock())
	seedMintableProduct(mem)
	ambiguous := &failingMarkStore{MemoryStore: mem, err: errors.New("connection reset by peer"), failures: 1, committed: true}
	tm := newTestMocks(ctrl, mem, ambiguous, minting.Config{PersistMaxElapsedTime: 5 * time.Second})

	receipt := successReceipt(txHashA)
	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).Return(receipt, nil)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(42), true)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.TokenizationEvent) error {
			assert.Equal(t, domain.TokenizationEventTokenized, event.Type)
			return nil
		})

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{})

	require.NoError(t, res.Err)
	assert.Equal(t, minting.OutcomeDone, res.Outcome)
	assert.Equal(t, fullTrace, res.Trace)
	assert.Equal(t, "42", res.TokenID.String())
	assert.Equal(t, int32(2), ambiguous.calls.Load())
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateDone}, tm.attemptStates(t))

	product, err := mem.GetProductByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, txHashA.Hex(), *product.TransactionHash)
}

func TestMint_ReconciledBeforePersisting(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()
	receipt := successReceipt(txHashA)

	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *domain.PendingTransaction, time.Duration) (*types.Receipt, error) {
			// a reconciliation pass settles the same transaction while the attempt waits
			tokenID := "42"
			applied, err := tm.mem.MarkProductTokenized(ctx, store.MarkTokenizedInput{ProductID: productID, TransactionHash: txHashA.Hex(), TokenID: &tokenID})
			require.NoError(t, err)
			require.True(t, applied)
			return receipt, nil
		})
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(nil, false)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.TokenizationEvent) error {
			assert.Equal(t, domain.TokenizationEventTokenized, event.Type)
			return nil
		})

	res := tm.orchestrator.Mint(ctx, productID, minting.MintOptions{})

	assert.Equal(t, minting.OutcomeDone, res.Outcome)
	assert.Equal(t, minting.StateDone, res.State())
	require.NotNil(t, res.TokenID)
	assert.Equal(t, "42", res.TokenID.String())
	assert.Equal(t, []schema.MintAttemptState{schema.MintAttemptStateDone}, tm.attemptStates(t))
}

func TestMint_ConfirmationTimeoutIsCapped(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{ConfirmationTimeout: time.Minute, MaxConfirmationTimeout: 4 * time.Minute})
	receipt := successReceipt(txHashA)

	tm.expectSubmission(signer, txHashA)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), 4*time.Minute).Return(receipt, nil)
	tm.chain.EXPECT().ExtractMintedTokenID(receipt).Return(big.NewInt(7), true)
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).Return(nil)

	res := tm.orchestrator.Mint(context.Background(), productID, minting.MintOptions{ConfirmationTimeout: time.Hour})
	assert.Equal(t, minting.OutcomeDone, res.Outcome)
}

func TestMint_ConcurrentAttemptsTokenizeOnce(t *testing.T) {
	tm := setupTestMocks(t, minting.Config{})
	ctx := context.Background()

	hashes := []common.Hash{txHashA, txHashB}
	var submitted atomic.Int32

	// both attempts pass the pre-check before either persists
	var atConfirmation sync.WaitGroup
	atConfirmation.Add(2)

	tm.chain.EXPECT().ConnectAccount(gomock.Any()).Return(signer, nil).Times(2)
	tm.chain.EXPECT().CurrentNetwork(gomock.Any()).Return(network, nil).Times(2)
	tm.chain.EXPECT().InvokeMint(gomock.Any(), expectedCall(signer)).DoAndReturn(
		func(_ context.Context, _ domain.MintCall) (*domain.PendingTransaction, error) {
			return pending(hashes[submitted.Add(1)-1]), nil
		}).Times(2)
	tm.chain.EXPECT().AwaitConfirmation(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *domain.PendingTransaction, _ time.Duration) (*types.Receipt, error) {
			atConfirmation.Done()
			atConfirmation.Wait()
			return successReceipt(tx.Hash), nil
		}).Times(2)
	tm.chain.EXPECT().ExtractMintedTokenID(gomock.Any()).DoAndReturn(
		func(receipt *types.Receipt) (*big.Int, bool) {
			if receipt.TxHash == txHashA {
				return big.NewInt(1), true
			}
			return big.NewInt(2), true
		}).Times(2)

	var events []domain.TokenizationEventType
	var eventsMu sync.Mutex
	tm.publisher.EXPECT().PublishTokenizationEvent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.TokenizationEvent) error {
			eventsMu.Lock()
			defer eventsMu.Unlock()
			events = append(events, event.Type)
			return nil
		}).Times(2)

	results := make([]*minting.Result, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tm.orchestrator.Mint(ctx, productID, minting.MintOptions{})
		}(i)
	}
	wg.Wait()

	var done, duplicate *minting.Result
	for _, r := range results {
		switch r.Outcome {
		case minting.OutcomeDone:
			done = r
		case minting.OutcomeAlreadyTokenized:
			duplicate = r
		default:
			t.Fatalf("unexpected outcome %s", r.Outcome)
		}
	}
	require.NotNil(t, done)
	require.NotNil(t, duplicate)
	assert.NotEqual(t, done.TxHash, duplicate.TxHash)

	product, err := tm.mem.GetProductByID(ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, product.TransactionHash)
	assert.Equal(t, done.TxHash, *product.TransactionHash)
	require.NotNil(t, product.TokenID)
	assert.Equal(t, done.TokenID.String(), *product.TokenID)

	assert.ElementsMatch(t, []schema.MintAttemptState{schema.MintAttemptStateDone, schema.MintAttemptStateDuplicate}, tm.attemptStates(t))
	assert.ElementsMatch(t, []domain.TokenizationEventType{domain.TokenizationEventTokenized, domain.TokenizationEventDivergent}, events)
}

func TestOutcome_MessagesAreDistinct(t *testing.T) {
	outcomes := []minting.Outcome{
		minting.OutcomeDone,
		minting.OutcomeDoneWithoutTokenID,
		minting.OutcomeConfirmedButNotPersisted,
		minting.OutcomeConfirmationTimedOut,
		minting.OutcomeAlreadyTokenized,
		minting.OutcomeValidationFailed,
		minting.OutcomeWalletUnavailable,
		minting.OutcomeUserRejected,
		minting.OutcomeWrongNetwork,
		minting.OutcomeChainRejected,
		minting.OutcomeFailed,
	}

	seen := map[string]minting.Outcome{}
	for _, o := range outcomes {
		msg := o.Message()
		assert.NotEmpty(t, msg, o)
		if other, ok := seen[msg]; ok {
			t.Errorf("outcomes %s and %s share the message %q", o, other, msg)
		}
		seen[msg] = o
	}

	assert.True(t, minting.OutcomeDone.Succeeded())
	assert.True(t, minting.OutcomeDoneWithoutTokenID.Succeeded())
	assert.False(t, minting.OutcomeConfirmedButNotPersisted.Succeeded())
	assert.Equal(t, minting.OutcomeFailed.Message(), minting.Outcome("unknown").Message())
}

func int64Ptr(v int64) *int64 {
	return &v
}

// failingMarkStore fails the conditional tokenization update; after failures calls it delegates.
// With committed set, the failing calls still apply the update, as when a commit is acknowledged with an error.
type failingMarkStore struct {
	*store.MemoryStore
	err       error
	failures  int32
	committed bool
	calls     atomic.Int32
}

func (s *failingMarkStore) MarkProductTokenized(ctx context.Context, input store.MarkTokenizedInput) (bool, error) {
	n := s.calls.Add(1)
	if s.failures == 0 || n <= s.failures {
		if s.committed {
			_, _ = s.MemoryStore.MarkProductTokenized(ctx, input)
		}
		return false, s.err
	}
	return s.MemoryStore.MarkProductTokenized(ctx, input)
}
