package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
)

const (
	// gasLimitBufferPercent pads the node's gas estimate
	gasLimitBufferPercent = 120

	defaultReceiptPollInterval = 2 * time.Second
	defaultConfirmationTimeout = 2 * time.Minute
)

// Config holds the chain the tokenization contract lives on
type Config struct {
	RequiredNetwork     domain.NetworkID
	ContractAddress     common.Address
	ReceiptPollInterval time.Duration
	// ConfirmationTimeout applies when AwaitConfirmation is called without a timeout
	ConfirmationTimeout time.Duration
}

// ChainClient submits mint transactions and observes their outcome
//
//go:generate mockgen -source=client.go -destination=../../mocks/chain_client.go -package=mocks -mock_names=ChainClient=MockChainClient
type ChainClient interface {
	// ConnectAccount connects the signing wallet and returns its account
	ConnectAccount(ctx context.Context) (common.Address, error)

	// CurrentNetwork returns the network the node is connected to
	CurrentNetwork(ctx context.Context) (domain.NetworkID, error)

	// RequiredNetwork returns the network mints must be submitted to
	RequiredNetwork() domain.NetworkID

	// ContractAddress returns the tokenization contract address
	ContractAddress() common.Address

	// InvokeMint validates, signs and submits a mint call.
	// Returns *domain.WrongNetworkError without submitting when the node is on another network.
	InvokeMint(ctx context.Context, call domain.MintCall) (*domain.PendingTransaction, error)

	// AwaitConfirmation polls the receipt until it is mined or the timeout elapses
	AwaitConfirmation(ctx context.Context, tx *domain.PendingTransaction, timeout time.Duration) (*types.Receipt, error)

	// ExtractMintedTokenID finds the minted token id in the receipt logs, false when none matched
	ExtractMintedTokenID(receipt *types.Receipt) (*big.Int, bool)

	// ReceiptByHash returns the receipt of a known transaction, nil while it is pending
	ReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, error)

	// MintCallByHash decodes a transaction sent to the tokenization contract.
	// Returns domain.ErrTransactionMismatch when the node does not know it or it is not a mint call.
	MintCallByHash(ctx context.Context, hash common.Hash) (*domain.MintCall, error)

	// Close closes the connection
	Close()
}

type chainClient struct {
	cfg      Config
	client   adapter.EthClient
	wallet   Wallet
	decoders *LogDecoderRegistry
	clock    adapter.Clock
}

// NewClient creates a chain client for the configured contract
func NewClient(cfg Config, client adapter.EthClient, wallet Wallet, clock adapter.Clock) ChainClient {
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = defaultReceiptPollInterval
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = defaultConfirmationTimeout
	}
	return &chainClient{
		cfg:      cfg,
		client:   client,
		wallet:   wallet,
		decoders: DefaultLogDecoderRegistry(),
		clock:    clock,
	}
}

func (c *chainClient) ConnectAccount(ctx context.Context) (common.Address, error) {
	return c.wallet.Connect(ctx)
}

func (c *chainClient) CurrentNetwork(ctx context.Context) (domain.NetworkID, error) {
	id, err := c.client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("chain id out of range: %s", id)
	}
	return domain.NetworkID(id.Uint64()), nil
}

func (c *chainClient) RequiredNetwork() domain.NetworkID {
	return c.cfg.RequiredNetwork
}

func (c *chainClient) ContractAddress() common.Address {
	return c.cfg.ContractAddress
}

func (c *chainClient) InvokeMint(ctx context.Context, call domain.MintCall) (*domain.PendingTransaction, error) {
	if err := call.Validate(); err != nil {
		return nil, err
	}

	network, err := c.CurrentNetwork(ctx)
	if err != nil {
		return nil, err
	}
	if network != c.cfg.RequiredNetwork {
		return nil, &domain.WrongNetworkError{Expected: c.cfg.RequiredNetwork, Actual: network}
	}

	data, err := packMint(call.To, call.ProductName, call.ArtisanName, call.CertificateNumber, call.MassGrams)
	if err != nil {
		return nil, fmt.Errorf("failed to pack mint call: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, call.From)
	if err != nil {
		return nil, &domain.ChainError{Op: "nonce", Err: err}
	}

	tipCap, err := c.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, &domain.ChainError{Op: "gas_tip", Err: err}
	}

	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, &domain.ChainError{Op: "header", Err: err}
	}
	feeCap := new(big.Int).Set(tipCap)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	contract := c.cfg.ContractAddress
	gas, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From:      call.From,
		To:        &contract,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Data:      data,
	})
	if err != nil {
		// contract reverts surface here, before anything is signed
		return nil, &domain.ChainError{Op: "estimate_gas", Err: err}
	}
	gas = gas * gasLimitBufferPercent / 100

	chainID := c.cfg.RequiredNetwork.BigInt()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &contract,
		Value:     big.NewInt(0),
		Data:      data,
	})

	signed, err := c.wallet.SignTx(ctx, tx, chainID)
	if err != nil {
		if errors.Is(err, domain.ErrUserRejected) || errors.Is(err, domain.ErrWalletUnavailable) {
			return nil, err
		}
		return nil, &domain.ChainError{Op: "sign", Err: err}
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return nil, &domain.ChainError{Op: "send", Err: err}
	}

	logger.InfoCtx(ctx, "Mint transaction submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("from", call.From.Hex()),
		zap.String("to", call.To.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))

	return &domain.PendingTransaction{
		Hash:        signed.Hash(),
		From:        call.From,
		Nonce:       nonce,
		SubmittedAt: c.clock.Now(),
	}, nil
}

var errReceiptPending = errors.New("receipt pending")

func (c *chainClient) AwaitConfirmation(ctx context.Context, tx *domain.PendingTransaction, timeout time.Duration) (*types.Receipt, error) {
	if timeout <= 0 {
		timeout = c.cfg.ConfirmationTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.ReceiptPollInterval
	b.MaxInterval = 4 * c.cfg.ReceiptPollInterval
	b.MaxElapsedTime = 0 // bounded by waitCtx

	operation := func() (*types.Receipt, error) {
		receipt, err := c.client.TransactionReceipt(waitCtx, tx.Hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return nil, errReceiptPending
			}
			return nil, err
		}
		if receipt.Status == types.ReceiptStatusFailed {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrTransactionReverted, tx.Hash.Hex()))
		}
		return receipt, nil
	}

	notify := func(err error, d time.Duration) {
		if !errors.Is(err, errReceiptPending) {
			logger.WarnCtx(ctx, "Receipt lookup failed, retrying",
				zap.String("tx_hash", tx.Hash.Hex()),
				zap.Error(err),
				zap.Duration("retry_in", d))
		}
	}

	receipt, err := backoff.RetryNotifyWithData(operation, backoff.WithContext(b, waitCtx), notify)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionReverted) {
			return nil, err
		}
		if waitCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrConfirmationTimedOut, tx.Hash.Hex(), timeout)
		}
		return nil, fmt.Errorf("failed to await confirmation: %w", err)
	}

	return receipt, nil
}

func (c *chainClient) ExtractMintedTokenID(receipt *types.Receipt) (*big.Int, bool) {
	if receipt == nil {
		return nil, false
	}
	return c.decoders.FindMintedTokenID(receipt.Logs, c.cfg.ContractAddress)
}

func (c *chainClient) ReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

func (c *chainClient) MintCallByHash(ctx context.Context, hash common.Hash) (*domain.MintCall, error) {
	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s is unknown to the node", domain.ErrTransactionMismatch, hash.Hex())
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx.To() == nil || *tx.To() != c.cfg.ContractAddress {
		return nil, fmt.Errorf("%w: %s was not sent to %s", domain.ErrTransactionMismatch, hash.Hex(), c.cfg.ContractAddress.Hex())
	}

	to, productName, artisanName, certificateNumber, massGrams, err := unpackMint(tx.Data())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionMismatch, err)
	}
	if !massGrams.IsUint64() {
		return nil, fmt.Errorf("%w: mass out of range", domain.ErrTransactionMismatch)
	}

	call := &domain.MintCall{
		To:                to,
		ProductName:       productName,
		ArtisanName:       artisanName,
		CertificateNumber: certificateNumber,
		MassGrams:         massGrams.Uint64(),
	}
	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		call.From = from
	}
	return call, nil
}

func (c *chainClient) Close() {
	c.client.Close()
}
