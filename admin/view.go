// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/models"
)

// Gate is the result of the owner check.
type Gate string

const (
	GateUnchecked    Gate = "unchecked"
	GateMustConnect  Gate = "must_connect"
	GateAccessDenied Gate = "access_denied"
	GateAuthorized   Gate = "authorized"
)

var (
	ErrEmptyName        = errors.New("please enter a candidate name")
	ErrNotAuthorized    = errors.New("only the contract owner can add options")
	ErrAddOptionsClosed = errors.New("options cannot be added after voting has started")
)

// RecentLimit is how many journal entries the panel shows.
const RecentLimit = 10

const timeLayout = "2006-01-02 15:04:05 MST"

type Contract interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	GetOwner(ctx context.Context) (common.Address, error)
	GetOptions(ctx context.Context) ([]gateway.Option, error)
	VotingPeriod(ctx context.Context) (time.Time, time.Time, error)
	AddOption(ctx context.Context, name string) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Journal interface {
	Record(ctx context.Context, rec models.TxRecord) (models.TxRecord, error)
	Recent(ctx context.Context, limit int) ([]models.TxRecord, error)
}

type Options struct {
	SessionID string
	Journal   Journal
	Now       func() time.Time
	TxTimeout time.Duration
}

// View is the owner-gated option management panel for one browser session.
type View struct {
	contract  Contract
	journal   Journal
	sessionID string
	now       func() time.Time
	txTimeout time.Duration

	mu           sync.Mutex
	gate         Gate
	account      common.Address
	options      []gateway.Option
	start, end   time.Time
	windowLoaded bool
	adding       bool
	input        string
	notice       string
	errMsg       string
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
		gate:      GateUnchecked,
	}
}

// Load evaluates the owner gate and reads the options and voting window.
func (v *View) Load(ctx context.Context) error {
	gate, account := v.checkGate(ctx)

	var errs []error
	options, optErr := v.contract.GetOptions(ctx)
	if optErr != nil {
		slog.Warn("failed to load options", "session", v.sessionID, "error", optErr)
		errs = append(errs, optErr)
	}
	start, end, windowErr := v.contract.VotingPeriod(ctx)
	if windowErr != nil {
		slog.Warn("failed to load voting status", "session", v.sessionID, "error", windowErr)
		errs = append(errs, windowErr)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.gate = gate
	v.account = account
	if optErr == nil {
		v.options = options
	}
	if windowErr == nil {
		v.start, v.end = start, end
		v.windowLoaded = true
	}
	return errors.Join(errs...)
}

func (v *View) checkGate(ctx context.Context) (Gate, common.Address) {
	accts, err := v.contract.Accounts(ctx)
	if err != nil {
		if !errors.Is(err, gateway.ErrWalletNotInstalled) {
			slog.Warn("failed to check wallet connection", "session", v.sessionID, "error", err)
		}
		return GateMustConnect, common.Address{}
	}
	if len(accts) == 0 {
		return GateMustConnect, common.Address{}
	}

	account := accts[0]
	owner, err := v.contract.GetOwner(ctx)
	if err != nil {
		slog.Warn("failed to check ownership", "session", v.sessionID, "error", err)
		return GateAccessDenied, account
	}
	if !auth.SameAddress(owner.Hex(), account.Hex()) {
		slog.Info("admin access denied", "session", v.sessionID, "account", account.Hex())
		return GateAccessDenied, account
	}
	return GateAuthorized, account
}

// Connect prompts the wallet for accounts and re-runs Load.
func (v *View) Connect(ctx context.Context) error {
	v.mu.Lock()
	v.notice = ""
	v.errMsg = ""
	v.mu.Unlock()

	if _, err := v.contract.RequestAccounts(ctx); err != nil {
		v.mu.Lock()
		if errors.Is(err, gateway.ErrWalletNotInstalled) {
			v.notice = gateway.FriendlyMessage(err, "")
		} else {
			v.errMsg = gateway.FriendlyMessage(err, "Failed to connect wallet")
		}
		v.mu.Unlock()
		return err
	}
	return v.Load(ctx)
}

// AddOption submits a new option and waits for it to be mined. Blank
// names, a non-owner session and a started voting period are all rejected
// before any network call.
func (v *View) AddOption(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)

	v.mu.Lock()
	v.input = name
	v.notice = ""
	v.errMsg = ""
	switch {
	case trimmed == "":
		v.errMsg = "Please enter a candidate name"
		v.mu.Unlock()
		return ErrEmptyName
	case v.gate != GateAuthorized:
		v.errMsg = "Only the contract owner can add options"
		v.mu.Unlock()
		return ErrNotAuthorized
	case v.windowLoaded && !v.window().CanAddOptions:
		v.errMsg = "Cannot add options after voting has started"
		v.mu.Unlock()
		return ErrAddOptionsClosed
	}
	account := v.account
	v.adding = true
	v.mu.Unlock()

	tx, err := v.contract.AddOption(ctx, trimmed)
	if err != nil {
		return v.addFailed(err)
	}

	waitCtx := ctx
	if v.txTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, v.txTimeout)
		defer cancel()
	}
	if _, err := v.contract.WaitMined(waitCtx, tx); err != nil {
		if errors.Is(err, gateway.ErrTxPending) {
			v.record(ctx, account, tx, models.TxStatusPending, trimmed)
			return v.addPending(tx, trimmed, err)
		}
		v.record(ctx, account, tx, models.TxStatusFailed, err.Error())
		return v.addFailed(err)
	}
	v.record(ctx, account, tx, models.TxStatusConfirmed, trimmed)
	slog.Info("option added", "session", v.sessionID, "name", trimmed, "tx", tx.Hash().Hex())

	options, optErr := v.contract.GetOptions(ctx)
	if optErr != nil {
		slog.Warn("failed to reload options", "session", v.sessionID, "error", optErr)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.adding = false
	v.input = ""
	v.notice = "Successfully added: " + trimmed
	if optErr == nil {
		v.options = options
	}
	return nil
}

func (v *View) addPending(tx *types.Transaction, name string, err error) error {
	v.mu.Lock()
	v.adding = false
	v.input = ""
	v.notice = fmt.Sprintf("%s submitted in %s and still pending", name, auth.ShortID(tx.Hash()))
	v.mu.Unlock()
	slog.Warn("option still pending", "session", v.sessionID, "name", name, "tx", tx.Hash().Hex())
	return fmt.Errorf("add option pending: %w", err)
}

func (v *View) addFailed(err error) error {
	v.mu.Lock()
	v.adding = false
	v.errMsg = addOptionMessage(err)
	v.mu.Unlock()
	slog.Warn("failed to add option", "session", v.sessionID, "error", err)
	return fmt.Errorf("add option failed: %w", err)
}

func addOptionMessage(err error) string {
	switch {
	case errors.Is(err, gateway.ErrNotOwner):
		return "Only the contract owner can add options"
	case errors.Is(err, gateway.ErrVotingAlreadyStarted):
		return "Cannot add options after voting has started"
	case errors.Is(err, gateway.ErrWalletNotInstalled), errors.Is(err, gateway.ErrWalletNotConnected):
		return gateway.FriendlyMessage(err, "")
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Failed to add option"
}

func (v *View) record(ctx context.Context, from common.Address, tx *types.Transaction, status, detail string) {
	if v.journal == nil {
		return
	}
	_, err := v.journal.Record(ctx, models.TxRecord{
		SessionID: v.sessionID,
		Kind:      models.TxKindAddOption,
		From:      from.Hex(),
		TxHash:    tx.Hash().Hex(),
		Status:    status,
		Detail:    detail,
	})
	if err != nil {
		slog.Error("failed to journal option", "session", v.sessionID, "tx", tx.Hash().Hex(), "error", err)
	}
}

// must hold v.mu
func (v *View) window() models.VotingWindow {
	return models.NewVotingWindow(v.start, v.end, v.now())
}

type Option struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	ShortID string `json:"short_id"`
}

// Snapshot is the rendered state of the admin panel.
type Snapshot struct {
	Gate          Gate                `json:"gate"`
	Account       string              `json:"account,omitempty"`
	AccountShort  string              `json:"account_short,omitempty"`
	Window        models.VotingWindow `json:"window"`
	WindowLoaded  bool                `json:"window_loaded"`
	WindowStatus  string              `json:"window_status,omitempty"`
	StartLabel    string              `json:"start_label,omitempty"`
	EndLabel      string              `json:"end_label,omitempty"`
	StartsHuman   string              `json:"starts_human,omitempty"`
	EndsHuman     string              `json:"ends_human,omitempty"`
	Options       []Option            `json:"options"`
	OptionsClosed bool                `json:"options_closed"`
	FormEnabled   bool                `json:"form_enabled"`
	Adding        bool                `json:"adding"`
	Input         string              `json:"input"`
	Notice        string              `json:"notice,omitempty"`
	Error         string              `json:"error,omitempty"`
	Recent        []models.TxRecord   `json:"recent"`
}

func (v *View) Snapshot(ctx context.Context) Snapshot {
	var recent []models.TxRecord
	if v.journal != nil {
		var err error
		recent, err = v.journal.Recent(ctx, RecentLimit)
		if err != nil {
			slog.Warn("failed to read journal", "session", v.sessionID, "error", err)
		}
	}
	if recent == nil {
		recent = []models.TxRecord{}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Gate:         v.gate,
		WindowLoaded: v.windowLoaded,
		Options:      make([]Option, 0, len(v.options)),
		Adding:       v.adding,
		Input:        v.input,
		Notice:       v.notice,
		Error:        v.errMsg,
		Recent:       recent,
	}
	if v.gate == GateAuthorized || v.gate == GateAccessDenied {
		snap.Account = v.account.Hex()
		snap.AccountShort = auth.ShortAddress(v.account)
	}
	for _, o := range v.options {
		snap.Options = append(snap.Options, Option{Name: o.Name, ID: o.ID.Hex(), ShortID: auth.ShortID(o.ID)})
	}
	if v.windowLoaded {
		now := v.now()
		snap.Window = v.window()
		snap.WindowStatus = snap.Window.Status()
		snap.StartLabel = v.start.Format(timeLayout)
		snap.EndLabel = v.end.Format(timeLayout)
		snap.StartsHuman = humanize.RelTime(v.start, now, "ago", "from now")
		snap.EndsHuman = humanize.RelTime(v.end, now, "ago", "from now")
		snap.OptionsClosed = !snap.Window.CanAddOptions
	}
	snap.FormEnabled = v.gate == GateAuthorized && !v.adding && !snap.OptionsClosed
	return snap
}
