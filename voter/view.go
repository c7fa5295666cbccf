// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/chart"
	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/models"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateLoading      State = "loading"
	StateReady        State = "ready"
)

// Button labels for the vote action
const (
	LabelCastVote   = "Cast Vote"
	LabelNotStarted = "Voting Not Started"
	LabelClosed     = "Voting Closed"
)

// SuccessDuration is how long the "vote recorded" notice stays up.
const SuccessDuration = 3 * time.Second

var (
	ErrVotingInactive   = errors.New("voting is not active")
	ErrUnknownCandidate = errors.New("unknown candidate")
)

// Contract is the part of the gateway the voter view uses.
type Contract interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	LoadCandidates(ctx context.Context) ([]models.Candidate, error)
	VotingPeriod(ctx context.Context) (time.Time, time.Time, error)
	HasVoted(ctx context.Context, voter common.Address) (bool, error)
	CastVote(ctx context.Context, optionID common.Hash) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Journal interface {
	Record(ctx context.Context, rec models.TxRecord) (models.TxRecord, error)
}

type Options struct {
	SessionID string
	Journal   Journal
	// Now defaults to time.Now.
	Now func() time.Time
	// TxTimeout bounds the wait for a vote to be mined. Zero means no bound
	// beyond the caller's context.
	TxTimeout time.Duration
}

// View is the ballot and live results for one browser session.
type View struct {
	contract  Contract
	journal   Journal
	sessionID string
	now       func() time.Time
	txTimeout time.Duration

	mu           sync.Mutex
	state        State
	account      common.Address
	candidates   []models.Candidate
	start, end   time.Time
	windowLoaded bool
	hasVoted     bool
	selected     *common.Hash
	voting       bool
	notice       string
	errMsg       string
	successName  string
	successUntil time.Time
	updatedAt    time.Time
}

func New(contract Contract, opts Options) *View {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &View{
		contract:  contract,
		journal:   opts.Journal,
		sessionID: opts.SessionID,
		now:       now,
		txTimeout: opts.TxTimeout,
		state:     StateDisconnected,
	}
}

// Init picks up an already authorized wallet without prompting.
func (v *View) Init(ctx context.Context) error {
	accts, err := v.contract.Accounts(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrWalletNotInstalled) {
			return nil
		}
		slog.Warn("failed to check wallet connection", "session", v.sessionID, "error", err)
		return err
	}
	if len(accts) == 0 {
		return nil
	}
	v.connected(accts[0])
	return v.Refresh(ctx)
}

// Connect prompts the wallet for accounts and loads the ballot.
func (v *View) Connect(ctx context.Context) error {
	v.mu.Lock()
	v.errMsg = ""
	v.notice = ""
	v.mu.Unlock()

	accts, err := v.contract.RequestAccounts(ctx)
	if err == nil && len(accts) == 0 {
		err = gateway.ErrWalletNotConnected
	}
	if err != nil {
		v.mu.Lock()
		if errors.Is(err, gateway.ErrWalletNotInstalled) {
			v.notice = gateway.FriendlyMessage(err, "")
		} else {
			v.errMsg = gateway.FriendlyMessage(err, "Failed to connect wallet")
		}
		v.mu.Unlock()
		return err
	}

	v.connected(accts[0])
	return v.Refresh(ctx)
}

func (v *View) connected(account common.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.account = account
	if v.state == StateDisconnected {
		v.state = StateLoading
	}
}

// Connected reports whether the view has a wallet session and should be
// polled.
func (v *View) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state != StateDisconnected
}

// Refresh re-reads candidates, the voting window and the has-voted flag.
// Each read that succeeds is applied; the selection is left alone.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	account := v.account
	v.mu.Unlock()

	var errs []error
	candidates, err := v.contract.LoadCandidates(ctx)
	if err != nil {
		slog.Warn("failed to load candidates", "session", v.sessionID, "error", err)
		errs = append(errs, err)
	}
	start, end, windowErr := v.contract.VotingPeriod(ctx)
	if windowErr != nil {
		slog.Warn("failed to check voting window", "session", v.sessionID, "error", windowErr)
		errs = append(errs, windowErr)
	}
	voted, votedErr := v.contract.HasVoted(ctx, account)
	if votedErr != nil {
		slog.Warn("failed to check voter record", "session", v.sessionID, "error", votedErr)
		errs = append(errs, votedErr)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		v.candidates = candidates
		if v.state != StateDisconnected {
			v.state = StateReady
		}
		v.updatedAt = v.now()
	}
	if windowErr == nil {
		v.start, v.end = start, end
		v.windowLoaded = true
	}
	if votedErr == nil {
		v.hasVoted = voted
	}
	return errors.Join(errs...)
}

// Select marks a candidate for voting. Selecting again is allowed.
func (v *View) Select(id common.Hash) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.find(id); !ok {
		return ErrUnknownCandidate
	}
	v.selected = &id
	v.errMsg = ""
	return nil
}

func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
	v.errMsg = ""
}

// Vote casts a vote for the selected candidate and waits for it to be
// mined. Without a selection it does nothing. Outside the voting window it
// fails with ErrVotingInactive before touching the network. Concurrent
// votes are not serialized; the contract rejects the duplicate.
func (v *View) Vote(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil {
		v.mu.Unlock()
		return nil
	}
	if !v.window().IsActive {
		v.mu.Unlock()
		return ErrVotingInactive
	}
	id := *v.selected
	name := ""
	if c, ok := v.find(id); ok {
		name = c.Name
	}
	account := v.account
	v.voting = true
	v.errMsg = ""
	v.mu.Unlock()

	tx, err := v.contract.CastVote(ctx, id)
	if err != nil {
		return v.voteFailed(err)
	}

	waitCtx := ctx
	if v.txTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, v.txTimeout)
		defer cancel()
	}
	if _, err := v.contract.WaitMined(waitCtx, tx); err != nil {
		if errors.Is(err, gateway.ErrTxPending) {
			v.record(ctx, account, tx, models.TxStatusPending, name)
			return v.votePending(tx, err)
		}
		v.record(ctx, account, tx, models.TxStatusFailed, err.Error())
		return v.voteFailed(err)
	}
	v.record(ctx, account, tx, models.TxStatusConfirmed, name)
	slog.Info("vote confirmed", "session", v.sessionID, "tx", tx.Hash().Hex(), "candidate", name)

	v.mu.Lock()
	v.voting = false
	v.selected = nil
	v.successName = name
	v.successUntil = v.now().Add(SuccessDuration)
	v.mu.Unlock()

	if err := v.Refresh(ctx); err != nil {
		slog.Warn("refresh after vote failed", "session", v.sessionID, "error", err)
	}
	return nil
}

func (v *View) votePending(tx *types.Transaction, err error) error {
	v.mu.Lock()
	v.voting = false
	v.selected = nil
	v.notice = fmt.Sprintf("Vote submitted in %s and still pending. Results update once it is mined.", auth.ShortID(tx.Hash()))
	v.mu.Unlock()
	slog.Warn("vote still pending", "session", v.sessionID, "tx", tx.Hash().Hex())
	return fmt.Errorf("vote pending: %w", err)
}

func (v *View) voteFailed(err error) error {
	v.mu.Lock()
	v.voting = false
	v.errMsg = gateway.FriendlyMessage(err, "Vote failed")
	v.mu.Unlock()
	slog.Warn("vote failed", "session", v.sessionID, "error", err)
	return fmt.Errorf("vote failed: %w", err)
}

func (v *View) record(ctx context.Context, from common.Address, tx *types.Transaction, status, detail string) {
	if v.journal == nil {
		return
	}
	_, err := v.journal.Record(ctx, models.TxRecord{
		SessionID: v.sessionID,
		Kind:      models.TxKindCastVote,
		From:      from.Hex(),
		TxHash:    tx.Hash().Hex(),
		Status:    status,
		Detail:    detail,
	})
	if err != nil {
		slog.Error("failed to journal vote", "session", v.sessionID, "tx", tx.Hash().Hex(), "error", err)
	}
}

// must hold v.mu
func (v *View) find(id common.Hash) (models.Candidate, bool) {
	for _, c := range v.candidates {
		if c.ID == id {
			return c, true
		}
	}
	return models.Candidate{}, false
}

// must hold v.mu
func (v *View) window() models.VotingWindow {
	if !v.windowLoaded {
		return models.VotingWindow{}
	}
	return models.NewVotingWindow(v.start, v.end, v.now())
}

// Snapshot is the rendered state of a View at one instant.
type Snapshot struct {
	State        State               `json:"state"`
	Account      string              `json:"account,omitempty"`
	AccountShort string              `json:"account_short,omitempty"`
	Candidates   []Candidate         `json:"candidates"`
	Chart        chart.Result        `json:"chart"`
	Window       models.VotingWindow `json:"window"`
	WindowLoaded bool                `json:"window_loaded"`
	WindowStatus string              `json:"window_status,omitempty"`
	StartsHuman  string              `json:"starts_human,omitempty"`
	EndsHuman    string              `json:"ends_human,omitempty"`
	Selected     string              `json:"selected,omitempty"`
	HasSelection bool                `json:"has_selection"`
	CanVote      bool                `json:"can_vote"`
	VoteLabel    string              `json:"vote_label"`
	Voting       bool                `json:"voting"`
	HasVoted     bool                `json:"has_voted"`
	TotalVotes   uint64              `json:"total_votes"`
	Notice       string              `json:"notice,omitempty"`
	Error        string              `json:"error,omitempty"`
	Success      string              `json:"success,omitempty"`
	UpdatedAgo   string              `json:"updated_ago,omitempty"`
}

type Candidate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Votes    uint64 `json:"votes"`
	Selected bool   `json:"selected"`
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	w := v.window()
	snap := Snapshot{
		State:        v.state,
		Candidates:   make([]Candidate, 0, len(v.candidates)),
		Chart:        chart.Compute(v.candidates),
		Window:       w,
		WindowLoaded: v.windowLoaded,
		HasSelection: v.selected != nil,
		Voting:       v.voting,
		HasVoted:     v.hasVoted,
		Notice:       v.notice,
		Error:        v.errMsg,
		VoteLabel:    LabelCastVote,
	}
	snap.TotalVotes = snap.Chart.TotalVotes

	if v.state != StateDisconnected {
		snap.Account = v.account.Hex()
		snap.AccountShort = auth.ShortAddress(v.account)
	}
	for _, c := range v.candidates {
		snap.Candidates = append(snap.Candidates, Candidate{
			ID:       c.ID.Hex(),
			Name:     c.Name,
			Votes:    c.Votes,
			Selected: v.selected != nil && *v.selected == c.ID,
		})
	}
	if v.selected != nil {
		snap.Selected = v.selected.Hex()
	}

	if v.windowLoaded {
		snap.WindowStatus = w.Status()
		snap.StartsHuman = humanize.RelTime(v.start, now, "ago", "from now")
		snap.EndsHuman = humanize.RelTime(v.end, now, "ago", "from now")
		if !w.IsActive {
			if w.HasStarted {
				snap.VoteLabel = LabelClosed
			} else {
				snap.VoteLabel = LabelNotStarted
			}
		}
	}
	snap.CanVote = snap.HasSelection && w.IsActive && !v.voting

	if v.successName != "" && now.Before(v.successUntil) {
		snap.Success = v.successName
	}
	if !v.updatedAt.IsZero() {
		snap.UpdatedAgo = humanize.RelTime(v.updatedAt, now, "ago", "from now")
	}
	return snap
}
