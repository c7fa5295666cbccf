// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/chainvote/admin"
	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/models"
	"github.com/danielhkuo/chainvote/voter"
)

// DefaultIdleTimeout is how long a session survives without requests.
const DefaultIdleTimeout = 30 * time.Minute

// refreshLimit bounds concurrent refreshes per poll tick.
const refreshLimit = 8

// Contract is everything the two views need from the gateway.
type Contract interface {
	voter.Contract
	admin.Contract
}

type Journal interface {
	voter.Journal
	admin.Journal
	ForSession(ctx context.Context, sessionID string, limit int) ([]models.TxRecord, error)
}

type Config struct {
	Journal     Journal
	TxTimeout   time.Duration
	IdleTimeout time.Duration
	Now         func() time.Time
}

// Session is the view state owned by one browser.
type Session struct {
	ID    string
	Voter *voter.View
	Admin *admin.View

	lastSeen time.Time
}

type Store struct {
	contract Contract
	cfg      Config

	mu       sync.Mutex
	sessions map[string]*Session

	cron *cron.Cron
	stop chan struct{}
}

func NewStore(contract Contract, cfg Config) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Store{
		contract: contract,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		cron:     cron.New(),
		stop:     make(chan struct{}),
	}
}

// Get returns the session for id and marks it as seen.
func (s *Store) Get(id string) (*Session, bool) {
	if auth.ValidateSessionID(id) != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.cfg.Now()
	}
	return sess, ok
}

// Ensure returns the session for id, or creates a new one (with a new id)
// when id is unknown. A new session checks for an existing wallet
// authorization right away.
func (s *Store) Ensure(ctx context.Context, id string) (*Session, bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}

	sess := s.newSession()
	if err := sess.Voter.Init(ctx); err != nil {
		slog.Warn("session init failed", "session", sess.ID, "error", err)
	}
	slog.Info("session created", "session", sess.ID)
	return sess, true
}

func (s *Store) newSession() *Session {
	id := auth.NewSessionID()
	now := s.cfg.Now()
	sess := &Session{
		ID: id,
		Voter: voter.New(s.contract, voter.Options{
			SessionID: id,
			Journal:   s.cfg.Journal,
			Now:       s.cfg.Now,
			TxTimeout: s.cfg.TxTimeout,
		}),
		Admin: admin.New(s.contract, admin.Options{
			SessionID: id,
			Journal:   s.cfg.Journal,
			Now:       s.cfg.Now,
			TxTimeout: s.cfg.TxTimeout,
		}),
		lastSeen: now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// History returns up to limit transactions submitted from a session,
// newest first.
func (s *Store) History(ctx context.Context, sess *Session, limit int) ([]models.TxRecord, error) {
	if s.cfg.Journal == nil {
		return []models.TxRecord{}, nil
	}
	records, err := s.cfg.Journal.ForSession(ctx, sess.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}
	if records == nil {
		records = []models.TxRecord{}
	}
	return records, nil
}

// RefreshConnected refreshes every voter view that has a wallet session
// and returns how many were refreshed. Failures are logged per session.
func (s *Store) RefreshConnected(ctx context.Context) int {
	s.mu.Lock()
	views := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		views = append(views, sess)
	}
	s.mu.Unlock()

	var (
		refreshed int
		countMu   sync.Mutex
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(refreshLimit)
	for _, sess := range views {
		if !sess.Voter.Connected() {
			continue
		}
		eg.Go(func() error {
			if err := sess.Voter.Refresh(egCtx); err != nil {
				slog.Warn("poll refresh failed", "session", sess.ID, "error", err)
			}
			countMu.Lock()
			refreshed++
			countMu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return refreshed
}

// EvictIdle drops sessions not seen within the idle timeout.
func (s *Store) EvictIdle() int {
	cutoff := s.cfg.Now().Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		slog.Info("evicted idle sessions", "count", evicted, "remaining", len(s.sessions))
	}
	return evicted
}

// Start schedules the poller: every interval it refreshes connected
// sessions and evicts idle ones.
func (s *Store) Start(interval time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-s.stop
		cancel()
	}()

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		select {
		case <-s.stop:
			return
		default:
		}
		s.EvictIdle()
		n := s.RefreshConnected(ctx)
		slog.Debug("poll tick", "refreshed", n)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule poller: %w", err)
	}
	s.cron.Start()
	slog.Info("session poller started", "interval", interval)
	return nil
}

// Stop halts the poller and waits for a running tick to finish.
func (s *Store) Stop() {
	select {
	case <-s.stop:
		return
	default:
		close(s.stop)
	}
	<-s.cron.Stop().Done()
}
