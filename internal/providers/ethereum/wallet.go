package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
)

// ApproveFunc asks the account owner to approve the connection.
// A non-nil error means the owner declined.
type ApproveFunc func(ctx context.Context, account common.Address) error

// WalletConfig selects the signing account
type WalletConfig struct {
	KeystoreDir string
	Account     string
	Passphrase  string
	PrivateKey  string
	Approve     ApproveFunc
}

// Wallet is the signing account used to submit mint transactions
//
//go:generate mockgen -source=wallet.go -destination=../../mocks/wallet.go -package=mocks -mock_names=Wallet=MockWallet
type Wallet interface {
	// Connect unlocks the account and returns its address
	Connect(ctx context.Context) (common.Address, error)
	// SignTx signs a transaction with the connected account
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// NewWallet builds the wallet described by cfg.
// A keystore directory wins over a raw private key; with neither, every connection reports the wallet unavailable.
func NewWallet(cfg WalletConfig, opener adapter.KeyStoreOpener) Wallet {
	switch {
	case cfg.KeystoreDir != "":
		return &keystoreWallet{
			ks:         opener.Open(cfg.KeystoreDir),
			account:    cfg.Account,
			passphrase: cfg.Passphrase,
			approve:    cfg.Approve,
		}
	case cfg.PrivateKey != "":
		return &privateKeyWallet{hexKey: cfg.PrivateKey, approve: cfg.Approve}
	default:
		return unavailableWallet{}
	}
}

func approve(ctx context.Context, fn ApproveFunc, account common.Address) error {
	if fn == nil {
		return nil
	}
	if err := fn(ctx, account); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
	}
	return nil
}

type keystoreWallet struct {
	ks         adapter.KeyStore
	account    string
	passphrase string
	approve    ApproveFunc

	mu        sync.Mutex
	connected *accounts.Account
}

func (w *keystoreWallet) Connect(ctx context.Context) (common.Address, error) {
	acct, err := w.selectAccount()
	if err != nil {
		return common.Address{}, err
	}

	if err := approve(ctx, w.approve, acct.Address); err != nil {
		return common.Address{}, err
	}

	// scrypt decryption is slow; give up when the caller stops waiting
	done := make(chan error, 1)
	go func() {
		done <- w.ks.Unlock(acct, w.passphrase)
	}()

	select {
	case <-ctx.Done():
		return common.Address{}, fmt.Errorf("%w: %v", domain.ErrUserRejected, ctx.Err())
	case err := <-done:
		if err != nil {
			if errors.Is(err, keystore.ErrDecrypt) {
				return common.Address{}, fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
			}
			return common.Address{}, fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
		}
	}

	w.mu.Lock()
	w.connected = &acct
	w.mu.Unlock()

	logger.DebugCtx(ctx, "Wallet connected", zap.String("account", acct.Address.Hex()))

	return acct.Address, nil
}

func (w *keystoreWallet) selectAccount() (accounts.Account, error) {
	accts := w.ks.Accounts()
	if len(accts) == 0 {
		return accounts.Account{}, fmt.Errorf("%w: keystore has no accounts", domain.ErrWalletUnavailable)
	}
	if w.account == "" {
		return accts[0], nil
	}

	want := common.HexToAddress(w.account)
	for _, a := range accts {
		if a.Address == want {
			return a, nil
		}
	}
	return accounts.Account{}, fmt.Errorf("%w: account %s not in keystore", domain.ErrWalletUnavailable, want.Hex())
}

func (w *keystoreWallet) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	w.mu.Lock()
	acct := w.connected
	w.mu.Unlock()

	if acct == nil {
		return nil, fmt.Errorf("%w: not connected", domain.ErrWalletUnavailable)
	}

	return w.ks.SignTx(*acct, tx, chainID)
}

type privateKeyWallet struct {
	hexKey  string
	approve ApproveFunc

	mu      sync.Mutex
	key     *ecdsa.PrivateKey
	address common.Address
}

func (w *privateKeyWallet) Connect(ctx context.Context) (common.Address, error) {
	key, address, err := adapter.ParsePrivateKey(strings.TrimSpace(w.hexKey))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: invalid private key", domain.ErrWalletUnavailable)
	}

	if err := approve(ctx, w.approve, address); err != nil {
		return common.Address{}, err
	}
	if err := ctx.Err(); err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
	}

	w.mu.Lock()
	w.key = key
	w.address = address
	w.mu.Unlock()

	return address, nil
}

func (w *privateKeyWallet) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	w.mu.Lock()
	key := w.key
	w.mu.Unlock()

	if key == nil {
		return nil, fmt.Errorf("%w: not connected", domain.ErrWalletUnavailable)
	}

	return types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
}

type unavailableWallet struct{}

func (unavailableWallet) Connect(context.Context) (common.Address, error) {
	return common.Address{}, fmt.Errorf("%w: no signing account configured", domain.ErrWalletUnavailable)
}

func (unavailableWallet) SignTx(context.Context, *types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, fmt.Errorf("%w: no signing account configured", domain.ErrWalletUnavailable)
}
