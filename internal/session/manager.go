package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meur/dtwiki/internal/clock"
	"github.com/meur/dtwiki/internal/drafts"
	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/team"
	"github.com/meur/dtwiki/internal/tierlist"
)

// TeamSession is an open team builder
type TeamSession = Session[team.Composition]

// TierListSession is an open tier-list builder
type TierListSession = Session[tierlist.Composition]

// Config holds the dependencies of a Manager
type Config struct {
	Teams     *team.Builder
	TierLists *tierlist.Builder
	Drafts    drafts.Store
	Clock     clock.Clock
	// AutosaveDelay is the quiet period before a draft is written
	AutosaveDelay time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Teams == nil {
		return errors.InvalidArgument("team builder is required")
	}
	if c.TierLists == nil {
		return errors.InvalidArgument("tier-list builder is required")
	}
	if c.Drafts == nil {
		return errors.InvalidArgument("draft store is required")
	}
	return nil
}

// Manager owns every open session
type Manager struct {
	teams     *team.Builder
	tierLists *tierlist.Builder
	drafts    drafts.Store
	clock     clock.Clock
	delay     time.Duration

	mu       sync.RWMutex
	teamSess map[string]*TeamSession
	tierSess map[string]*TierListSession
}

// NewManager creates a session manager
func NewManager(cfg *Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Manager{
		teams:     cfg.Teams,
		tierLists: cfg.TierLists,
		drafts:    cfg.Drafts,
		clock:     clk,
		delay:     cfg.AutosaveDelay,
		teamSess:  make(map[string]*TeamSession),
		tierSess:  make(map[string]*TierListSession),
	}, nil
}

func sessionID(id string) (string, error) {
	if id == "" {
		return uuid.NewString(), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.InvalidArgumentf("invalid session id %q", id)
	}
	return id, nil
}

// OpenTeam opens a team session. An empty id starts a fresh session; a
// known id resumes its draft. An already open session is returned as is.
func (m *Manager) OpenTeam(ctx context.Context, id string) (*TeamSession, error) {
	id, err := sessionID(id)
	if err != nil {
		return nil, err
	}
	if s, err := m.Team(id); err == nil {
		return s, nil
	}

	saver := drafts.NewAutosaver(m.drafts, drafts.Key(drafts.KindTeam, id), m.delay)
	state := team.New()
	if data, ok := saver.Hydrate(ctx); ok {
		restored, err := m.teams.Paste(state, string(data))
		if err != nil {
			log.Printf("session: ignoring unreadable team draft %s: %v", id, err)
		} else {
			state = restored
		}
	}

	s := &TeamSession{
		ID:      id,
		state:   state,
		version: 1,
		codec: codec[team.Composition]{
			marshal: team.Marshal,
			stamp: func(c team.Composition, ms int64) team.Composition {
				c.LastUpdated = ms
				return c
			},
		},
		saver: saver,
		clock: m.clock,
	}

	// Hydration runs unlocked; a concurrent open of the same id keeps the
	// session that was stored first.
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.teamSess[id]; ok {
		return existing, nil
	}
	m.teamSess[id] = s
	return s, nil
}

// Team returns an open team session
func (m *Manager) Team(id string) (*TeamSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.teamSess[id]
	if !ok {
		return nil, errors.NotFoundf("team session %s not found", id)
	}
	return s, nil
}

// CloseTeam flushes and forgets a team session. With discard the stored
// draft is deleted as well.
func (m *Manager) CloseTeam(ctx context.Context, id string, discard bool) error {
	m.mu.Lock()
	s, ok := m.teamSess[id]
	delete(m.teamSess, id)
	m.mu.Unlock()
	if !ok {
		return errors.NotFoundf("team session %s not found", id)
	}
	if discard {
		s.saver.Discard(ctx)
		return nil
	}
	s.close()
	return nil
}

// OpenTierList opens a tier-list session, like OpenTeam
func (m *Manager) OpenTierList(ctx context.Context, id string) (*TierListSession, error) {
	id, err := sessionID(id)
	if err != nil {
		return nil, err
	}
	if s, err := m.TierList(id); err == nil {
		return s, nil
	}

	saver := drafts.NewAutosaver(m.drafts, drafts.Key(drafts.KindTierList, id), m.delay)
	state := tierlist.New()
	if data, ok := saver.Hydrate(ctx); ok {
		restored, err := m.tierLists.Paste(state, string(data))
		if err != nil {
			log.Printf("session: ignoring unreadable tier-list draft %s: %v", id, err)
		} else {
			state = restored
		}
	}

	s := &TierListSession{
		ID:      id,
		state:   state,
		version: 1,
		codec: codec[tierlist.Composition]{
			marshal: tierlist.Marshal,
			stamp: func(c tierlist.Composition, ms int64) tierlist.Composition {
				c.LastUpdated = ms
				return c
			},
		},
		saver: saver,
		clock: m.clock,
	}

	// Hydration runs unlocked; a concurrent open of the same id keeps the
	// session that was stored first.
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.tierSess[id]; ok {
		return existing, nil
	}
	m.tierSess[id] = s
	return s, nil
}

// TierList returns an open tier-list session
func (m *Manager) TierList(id string) (*TierListSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.tierSess[id]
	if !ok {
		return nil, errors.NotFoundf("tier-list session %s not found", id)
	}
	return s, nil
}

// CloseTierList flushes and forgets a tier-list session
func (m *Manager) CloseTierList(ctx context.Context, id string, discard bool) error {
	m.mu.Lock()
	s, ok := m.tierSess[id]
	delete(m.tierSess, id)
	m.mu.Unlock()
	if !ok {
		return errors.NotFoundf("tier-list session %s not found", id)
	}
	if discard {
		s.saver.Discard(ctx)
		return nil
	}
	s.close()
	return nil
}

// Close flushes every open session. The manager is empty afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.teamSess {
		s.close()
		delete(m.teamSess, id)
	}
	for id, s := range m.tierSess {
		s.close()
		delete(m.tierSess, id)
	}
}
