// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is the bridge to the user's signing account.
//
// Accounts is the silent session check: it returns the authorized accounts,
// or none if the user never connected. RequestAccounts is the explicit
// connect prompt. Transactor returns signing options for the first account
// and fails with ErrWalletNotConnected until the wallet is authorized.
type Wallet interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

var (
	_ Wallet = (*KeyWallet)(nil)
	_ Wallet = (*KeystoreWallet)(nil)
)

// KeyWallet signs with a raw secp256k1 private key.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address

	mu        sync.RWMutex
	connected bool
}

// NewKeyWallet parses a hex private key (without 0x).
func NewKeyWallet(hexKey string, autoConnect bool) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewKeyWalletFromKey(key, autoConnect), nil
}

func NewKeyWalletFromKey(key *ecdsa.PrivateKey, autoConnect bool) *KeyWallet {
	return &KeyWallet{
		key:       key,
		address:   crypto.PubkeyToAddress(key.PublicKey),
		connected: autoConnect,
	}
}

func (w *KeyWallet) Address() common.Address {
	return w.address
}

func (w *KeyWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return nil, nil
	}
	return []common.Address{w.address}, nil
}

func (w *KeyWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	return []common.Address{w.address}, nil
}

func (w *KeyWallet) Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.RLock()
	connected := w.connected
	w.mu.RUnlock()
	if !connected {
		return nil, ErrWalletNotConnected
	}
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// KeystoreWallet signs with an encrypted account from a go-ethereum keystore
// directory. RequestAccounts unlocks the account with the passphrase.
type KeystoreWallet struct {
	ks         *keystore.KeyStore
	account    accounts.Account
	passphrase string

	mu        sync.RWMutex
	connected bool
}

func NewKeystoreWallet(dir string, address common.Address, passphrase string, autoConnect bool) (*KeystoreWallet, error) {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
	account, err := ks.Find(accounts.Account{Address: address})
	if err != nil {
		return nil, fmt.Errorf("account %s not found in keystore: %w", address.Hex(), err)
	}

	w := &KeystoreWallet{ks: ks, account: account, passphrase: passphrase}
	if autoConnect {
		if _, err := w.RequestAccounts(context.Background()); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *KeystoreWallet) Address() common.Address {
	return w.account.Address
}

func (w *KeystoreWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return nil, nil
	}
	return []common.Address{w.account.Address}, nil
}

func (w *KeystoreWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if err := w.ks.Unlock(w.account, w.passphrase); err != nil {
		return nil, fmt.Errorf("failed to unlock %s: %w", w.account.Address.Hex(), err)
	}
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	return []common.Address{w.account.Address}, nil
}

func (w *KeystoreWallet) Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.RLock()
	connected := w.connected
	w.mu.RUnlock()
	if !connected {
		return nil, ErrWalletNotConnected
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(w.ks, w.account, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
