// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/chainvote/models"
)

// Backend is the node connection. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type Config struct {
	Address common.Address
	ChainID *big.Int
	// Wallet is nil when no wallet is installed.
	Wallet     Wallet
	Registerer prometheus.Registerer
}

// Option is one entry of getOptions.
type Option struct {
	Name   string      `abi:"name"`
	ID     common.Hash `abi:"id"`
	Exists bool        `abi:"exists"`
}

// Gateway is the only component that talks to the wallet and the contract.
type Gateway struct {
	backend Backend
	address common.Address
	chainID *big.Int
	wallet  Wallet
	metrics *metrics
}

func New(backend Backend, cfg Config) (*Gateway, error) {
	if backend == nil {
		return nil, errors.New("gateway: backend is required")
	}
	if cfg.ChainID == nil {
		return nil, errors.New("gateway: chain id is required")
	}
	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}
	return &Gateway{
		backend: backend,
		address: cfg.Address,
		chainID: cfg.ChainID,
		wallet:  cfg.Wallet,
		metrics: m,
	}, nil
}

func (g *Gateway) Address() common.Address {
	return g.address
}

// Handle is a contract instance bound either to the provider only or to a
// signer as well.
type Handle struct {
	contract *bind.BoundContract
	opts     *bind.TransactOpts
}

// Writable reports whether the handle can send transactions.
func (h *Handle) Writable() bool {
	return h.opts != nil
}

// From returns the signer address of a writable handle.
func (h *Handle) From() common.Address {
	if h.opts == nil {
		return common.Address{}
	}
	return h.opts.From
}

// Contract returns a read-only handle, or a signer-bound one when
// needsWrite is set.
func (g *Gateway) Contract(ctx context.Context, needsWrite bool) (*Handle, error) {
	if g.wallet == nil {
		return nil, ErrWalletNotInstalled
	}
	if !needsWrite {
		return &Handle{contract: bind.NewBoundContract(g.address, votingABI, g.backend, nil, nil)}, nil
	}

	opts, err := g.wallet.Transactor(ctx, g.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return &Handle{
		contract: bind.NewBoundContract(g.address, votingABI, g.backend, g.backend, g.backend),
		opts:     opts,
	}, nil
}

// Accounts passes through the wallet's silent session check.
func (g *Gateway) Accounts(ctx context.Context) ([]common.Address, error) {
	if g.wallet == nil {
		return nil, ErrWalletNotInstalled
	}
	return g.wallet.Accounts(ctx)
}

// RequestAccounts passes through the wallet's connect prompt.
func (g *Gateway) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if g.wallet == nil {
		return nil, ErrWalletNotInstalled
	}
	accts, err := g.wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("wallet connected", "accounts", len(accts))
	return accts, nil
}

func (g *Gateway) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	h, err := g.Contract(ctx, false)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var out []interface{}
	err = h.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	err = decodeChainError(err)
	g.metrics.observe(method, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}

// transact simulates the call from the signer first so a revert comes back
// with its error data, then signs and sends it.
func (g *Gateway) transact(ctx context.Context, method string, params ...interface{}) (*types.Transaction, error) {
	h, err := g.Contract(ctx, true)
	if err != nil {
		return nil, err
	}

	input, err := votingABI.Pack(method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	start := time.Now()
	to := g.address
	_, err = g.backend.CallContract(ctx, ethereum.CallMsg{From: h.opts.From, To: &to, Data: input}, nil)
	if err == nil {
		var tx *types.Transaction
		tx, err = h.contract.Transact(h.opts, method, params...)
		if err == nil {
			g.metrics.observe(method, start, nil)
			slog.Info("transaction sent", "method", method, "tx", tx.Hash().Hex(), "from", h.opts.From.Hex())
			return tx, nil
		}
	}

	err = decodeChainError(err)
	g.metrics.observe(method, start, err)
	slog.Warn("transaction rejected", "method", method, "from", h.opts.From.Hex(), "error", err)
	return nil, err
}

// WaitMined blocks until tx is included and fails if it reverted. If ctx
// ends first the error wraps ErrTxPending: the transaction was broadcast
// and may still be mined.
func (g *Gateway) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, g.backend, tx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTxPending, tx.Hash().Hex(), err)
		}
		return nil, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTransactionFailed, tx.Hash().Hex())
	}
	slog.Info("transaction confirmed", "tx", tx.Hash().Hex(), "block", receipt.BlockNumber)
	return receipt, nil
}

// Writes

func (g *Gateway) AddOption(ctx context.Context, name string) (*types.Transaction, error) {
	return g.transact(ctx, MethodAddOption, name)
}

func (g *Gateway) CastVote(ctx context.Context, optionID common.Hash) (*types.Transaction, error) {
	return g.transact(ctx, MethodCastVote, [32]byte(optionID))
}

// Reads

func (g *Gateway) GetOptions(ctx context.Context) ([]Option, error) {
	out, err := g.call(ctx, MethodGetOptions)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]Option)).(*[]Option), nil
}

func (g *Gateway) GetVotes(ctx context.Context, optionID common.Hash) (uint64, error) {
	out, err := g.call(ctx, MethodGetVotes, [32]byte(optionID))
	if err != nil {
		return 0, err
	}
	return toUint64(MethodGetVotes, out[0])
}

func (g *Gateway) GetNumOptions(ctx context.Context) (uint64, error) {
	out, err := g.call(ctx, MethodGetNumOptions)
	if err != nil {
		return 0, err
	}
	return toUint64(MethodGetNumOptions, out[0])
}

func (g *Gateway) GetOwner(ctx context.Context) (common.Address, error) {
	out, err := g.call(ctx, MethodGetOwner)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (g *Gateway) HasVoted(ctx context.Context, voter common.Address) (bool, error) {
	out, err := g.call(ctx, MethodHasVoted, voter)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (g *Gateway) StartTime(ctx context.Context) (time.Time, error) {
	return g.timestamp(ctx, MethodStartTime)
}

func (g *Gateway) EndTime(ctx context.Context) (time.Time, error) {
	return g.timestamp(ctx, MethodEndTime)
}

func (g *Gateway) timestamp(ctx context.Context, method string) (time.Time, error) {
	out, err := g.call(ctx, method)
	if err != nil {
		return time.Time{}, err
	}
	secs, err := toUint64(method, out[0])
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0), nil
}

// Composite reads used by the views

// LoadCandidates fetches every option and its vote count. Vote counts are
// fetched concurrently; the contract's option order is kept.
func (g *Gateway) LoadCandidates(ctx context.Context) ([]models.Candidate, error) {
	options, err := g.GetOptions(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, len(options))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, opt := range options {
		eg.Go(func() error {
			votes, err := g.GetVotes(egCtx, opt.ID)
			if err != nil {
				return err
			}
			candidates[i] = models.Candidate{ID: opt.ID, Name: opt.Name, Votes: votes}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// VotingPeriod returns the contract's start and end times.
func (g *Gateway) VotingPeriod(ctx context.Context) (start, end time.Time, err error) {
	start, err = g.StartTime(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = g.EndTime(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// IsOwner compares account with the contract owner, ignoring case.
func (g *Gateway) IsOwner(ctx context.Context, account common.Address) (bool, error) {
	owner, err := g.GetOwner(ctx)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(owner.Hex(), account.Hex()), nil
}

func toUint64(method string, v interface{}) (uint64, error) {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return 0, fmt.Errorf("%s: unexpected result type %T", method, v)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%s: value %s overflows uint64", method, n)
	}
	return n.Uint64(), nil
}
