package adapter

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyStore defines an interface for encrypted key store operations to enable mocking
//
//go:generate mockgen -source=keystore.go -destination=../mocks/keystore.go -package=mocks -mock_names=KeyStore=MockKeyStore
type KeyStore interface {
	// Accounts lists the accounts held by the key store
	Accounts() []accounts.Account
	// Unlock decrypts the key of the account and keeps it in memory
	Unlock(account accounts.Account, passphrase string) error
	// SignTx signs a transaction with an unlocked account
	SignTx(account accounts.Account, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeyStoreOpener defines an interface for opening key store directories
//
//go:generate mockgen -source=keystore.go -destination=../mocks/keystore.go -package=mocks -mock_names=KeyStoreOpener=MockKeyStoreOpener
type KeyStoreOpener interface {
	Open(dir string) KeyStore
}

// RealKeyStoreOpener implements KeyStoreOpener with go-ethereum's keystore package
type RealKeyStoreOpener struct{}

// NewKeyStoreOpener creates a new real key store opener
func NewKeyStoreOpener() KeyStoreOpener {
	return &RealKeyStoreOpener{}
}

func (o *RealKeyStoreOpener) Open(dir string) KeyStore {
	return keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
}

// ParsePrivateKey parses a hex-encoded secp256k1 private key, with or without 0x prefix
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, common.Address, error) {
	if len(hexKey) >= 2 && (hexKey[:2] == "0x" || hexKey[:2] == "0X") {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, common.Address{}, err
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}
