// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/gateway"
)

// TestChainID is the chain id used by FakeChain and test gateways.
var TestChainID = big.NewInt(1337)

// TestContractAddress is where FakeChain pretends the Voting contract lives.
var TestContractAddress = common.HexToAddress("0xC9e2a74607469d3925F7E630B2F7039F7e07f6ab")

// RevertError mimics the JSON-RPC error a node returns for a custom error
// revert: a generic message with the selector in the error data.
type RevertError struct {
	Name string
	data string
}

func (e *RevertError) Error() string          { return "execution reverted" }
func (e *RevertError) ErrorCode() int         { return 3 }
func (e *RevertError) ErrorData() interface{} { return e.data }

func revert(name string) error {
	return &RevertError{Name: name, data: gateway.RevertData(name)}
}

// FakeChain is an in-memory node hosting one Voting contract. It implements
// gateway.Backend and follows the contract's rules for owner, time window
// and double votes.
type FakeChain struct {
	mu sync.Mutex

	parsed abi.ABI
	owner  common.Address
	start  time.Time
	end    time.Time
	now    func() time.Time

	options []gateway.Option
	votes   map[common.Hash]uint64
	voted   map[common.Address]bool

	nonces   map[common.Address]uint64
	receipts map[common.Hash]*types.Receipt
	block    int64

	readErrs map[string]error
	sendErr  error
	held     bool
	calls    map[string]int
	sent     []*types.Transaction
}

var _ gateway.Backend = (*FakeChain)(nil)

// NewFakeChain deploys a fake Voting contract owned by owner with the given
// voting window. The chain clock defaults to time.Now.
func NewFakeChain(owner common.Address, start, end time.Time) *FakeChain {
	return &FakeChain{
		parsed:   gateway.ParsedABI(),
		owner:    owner,
		start:    start,
		end:      end,
		now:      time.Now,
		votes:    make(map[common.Hash]uint64),
		voted:    make(map[common.Address]bool),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
		readErrs: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// SetNow replaces the chain clock.
func (c *FakeChain) SetNow(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SeedOption adds an option directly, bypassing owner and time checks.
func (c *FakeChain) SeedOption(name string, votes uint64) common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := auth.OptionID(name)
	c.options = append(c.options, gateway.Option{Name: name, ID: id, Exists: true})
	c.votes[id] = votes
	return id
}

// FailRead makes every call to method fail with err until cleared with nil.
func (c *FakeChain) FailRead(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.readErrs, method)
		return
	}
	c.readErrs[method] = err
}

// FailSend makes SendTransaction fail with err until cleared with nil.
func (c *FakeChain) FailSend(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// HoldReceipts keeps sent transactions from being reported as mined. They
// still execute when sent.
func (c *FakeChain) HoldReceipts(hold bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = hold
}

// Calls returns how many times method was called (reads and simulations).
func (c *FakeChain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Sent returns the transactions accepted by the chain.
func (c *FakeChain) Sent() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.sent...)
}

// Votes returns the on-chain count for an option.
func (c *FakeChain) Votes(id common.Hash) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.votes[id]
}

// HasVoted returns the on-chain voter record.
func (c *FakeChain) HasVoted(voter common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voted[voter]
}

// Options returns the on-chain options.
func (c *FakeChain) Options() []gateway.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]gateway.Option(nil), c.options...)
}

// ContractCaller

func (c *FakeChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if contract == TestContractAddress {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

func (c *FakeChain) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execute(call.From, call.To, call.Data, false)
}

// ContractTransactor

func (c *FakeChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// No base fee, so bind builds legacy transactions
	return &types.Header{Number: big.NewInt(c.block), Time: uint64(c.now().Unix())}, nil
}

func (c *FakeChain) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return c.CodeAt(ctx, account, nil)
}

func (c *FakeChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *FakeChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (c *FakeChain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (c *FakeChain) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.execute(call.From, call.To, call.Data, false); err != nil {
		return 0, err
	}
	return 100_000, nil
}

func (c *FakeChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	from, err := types.Sender(types.LatestSignerForChainID(TestChainID), tx)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	if tx.Nonce() != c.nonces[from] {
		return fmt.Errorf("nonce too low: have %d, want %d", tx.Nonce(), c.nonces[from])
	}
	c.nonces[from]++
	c.block++

	status := types.ReceiptStatusSuccessful
	if _, err := c.execute(from, tx.To(), tx.Data(), true); err != nil {
		status = types.ReceiptStatusFailed
	}
	c.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(c.block),
		GasUsed:     21_000,
	}
	c.sent = append(c.sent, tx)
	return nil
}

// ContractFilterer

func (c *FakeChain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, errors.New("fake chain: logs not supported")
}

func (c *FakeChain) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("fake chain: subscriptions not supported")
}

// DeployBackend

func (c *FakeChain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[txHash]
	if !ok || c.held {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// execute runs one contract call. Writes only change state when commit is
// set. Must be called with c.mu held.
func (c *FakeChain) execute(from common.Address, to *common.Address, data []byte, commit bool) ([]byte, error) {
	if to == nil || *to != TestContractAddress {
		return nil, nil
	}
	if len(data) < 4 {
		return nil, errors.New("execution reverted")
	}
	method, err := c.parsed.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}
	c.calls[method.Name]++
	if err := c.readErrs[method.Name]; err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}

	now := c.now().Unix()
	switch method.Name {
	case gateway.MethodAddOption:
		name := args[0].(string)
		if from != c.owner {
			return nil, revert("Voting__NotOwner")
		}
		if now >= c.start.Unix() {
			return nil, revert("Voting__VotingAlreadyStarted")
		}
		id := auth.OptionID(name)
		if _, exists := c.votes[id]; exists {
			return nil, revert("Voting__InvalidOption")
		}
		if commit {
			c.options = append(c.options, gateway.Option{Name: name, ID: id, Exists: true})
			c.votes[id] = 0
		}
		return method.Outputs.Pack()

	case gateway.MethodCastVote:
		id := common.Hash(args[0].([32]byte))
		if now < c.start.Unix() {
			return nil, revert("Voting__VotingNotStarted")
		}
		if now >= c.end.Unix() {
			return nil, revert("Voting__VotingClosed")
		}
		if c.voted[from] {
			return nil, revert("Voting__AlreadyVoted")
		}
		if _, exists := c.votes[id]; !exists {
			return nil, revert("Voting__InvalidOption")
		}
		if commit {
			c.voted[from] = true
			c.votes[id]++
		}
		return method.Outputs.Pack()

	case gateway.MethodGetOptions:
		return method.Outputs.Pack(c.options)
	case gateway.MethodGetVotes, "votes":
		id := common.Hash(args[0].([32]byte))
		return method.Outputs.Pack(new(big.Int).SetUint64(c.votes[id]))
	case gateway.MethodGetNumOptions:
		return method.Outputs.Pack(big.NewInt(int64(len(c.options))))
	case gateway.MethodGetOwner:
		return method.Outputs.Pack(c.owner)
	case gateway.MethodHasVoted:
		return method.Outputs.Pack(c.voted[args[0].(common.Address)])
	case gateway.MethodStartTime:
		return method.Outputs.Pack(big.NewInt(c.start.Unix()))
	case gateway.MethodEndTime:
		return method.Outputs.Pack(big.NewInt(c.end.Unix()))
	}
	return nil, fmt.Errorf("fake chain: method %s not implemented", method.Name)
}

// NewTestKey returns a fresh private key and its address.
func NewTestKey(t interface{ Fatalf(string, ...any) }) (*ecdsa.PrivateKey, common.Address) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}
