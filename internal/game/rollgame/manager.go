package rollgame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"dicebot/internal/game/dice"
	"dicebot/internal/model"
	"dicebot/internal/pkg/lock"
)

const (
	// DefaultJoinTimeout is how long a session accepts joins.
	DefaultJoinTimeout = 60 * time.Second

	// DefaultMaxPlayers caps the player count of a single session.
	DefaultMaxPlayers = 25

	// expireTimeout bounds the timeout notice sent from the timer goroutine.
	expireTimeout = 15 * time.Second
)

// Config holds configuration for the session manager.
type Config struct {
	Roller      dice.Roller
	Recorder    Recorder
	JoinTimeout time.Duration
	MaxPlayers  int

	// Locks serializes work per session. A new KeyLock is used when nil.
	Locks *lock.KeyLock
	// NewID generates session IDs. Defaults to random UUIDs.
	NewID func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager owns live sessions and drives their state transitions.
type Manager struct {
	roller      dice.Roller
	recorder    Recorder
	joinTimeout time.Duration
	maxPlayers  int
	locks       *lock.KeyLock
	registry    *Registry
	newID       func() string
	now         func() time.Time
}

// New creates a new session manager.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Roller == nil {
		return nil, errors.New("roller cannot be nil")
	}

	if cfg.Recorder == nil {
		return nil, errors.New("recorder cannot be nil")
	}

	m := &Manager{
		roller:      cfg.Roller,
		recorder:    cfg.Recorder,
		joinTimeout: cfg.JoinTimeout,
		maxPlayers:  cfg.MaxPlayers,
		locks:       cfg.Locks,
		registry:    NewRegistry(),
		newID:       cfg.NewID,
		now:         cfg.Now,
	}

	if m.joinTimeout <= 0 {
		m.joinTimeout = DefaultJoinTimeout
	}
	if m.maxPlayers <= 0 {
		m.maxPlayers = DefaultMaxPlayers
	}
	if m.locks == nil {
		m.locks = lock.NewKeyLock()
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.now == nil {
		m.now = time.Now
	}

	return m, nil
}

// StartInput describes a new session.
type StartInput struct {
	DieSize int
	Players int
	// Announcer receives the completion or timeout of the session. It may be nil.
	Announcer Announcer
}

// JoinResult is returned by a successful Join.
type JoinResult struct {
	// View reflects the session after the join.
	View *View
	// Participant is the joining player with their roll.
	Participant Participant
	// Outcome is set when this join completed the session.
	Outcome *Outcome
}

// ValidatePlayers checks a requested player count against the configured maximum.
func (m *Manager) ValidatePlayers(players int) error {
	if players < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, players)
	}
	if players > m.maxPlayers {
		return fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyPlayers, players, m.maxPlayers)
	}
	return nil
}

// MaxPlayers returns the largest allowed player count.
func (m *Manager) MaxPlayers() int {
	return m.maxPlayers
}

// Start opens a new session and arms its join timeout.
func (m *Manager) Start(ctx context.Context, input *StartInput) (*View, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if err := dice.ValidateSides(input.DieSize); err != nil {
		return nil, err
	}
	if err := m.ValidatePlayers(input.Players); err != nil {
		return nil, err
	}

	now := m.now()
	session := &Session{
		ID:           m.newID(),
		DieSize:      input.DieSize,
		Target:       input.Players,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.joinTimeout),
		status:       StatusOpen,
		participants: make([]Participant, 0, input.Players),
		announcer:    input.Announcer,
	}

	var view *View
	err := m.locks.WithLockContext(ctx, session.ID, func() error {
		m.registry.Add(session)
		session.timer = time.AfterFunc(m.joinTimeout, func() {
			m.onTimeout(session.ID)
		})
		view = session.view()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Int("die_size", session.DieSize).
		Int("players", session.Target).
		Dur("timeout", m.joinTimeout).
		Msg("Roll game started")

	return view, nil
}

// Join adds a player to an open session and rolls for them.
// The join that fills the session also ranks, persists and announces it
// before returning. Joining a finished or unknown session returns
// ErrSessionClosed; joining twice returns ErrAlreadyJoined.
func (m *Manager) Join(ctx context.Context, sessionID string, player Player) (*JoinResult, error) {
	var result *JoinResult
	err := m.locks.WithLockContext(ctx, sessionID, func() error {
		session, ok := m.registry.Get(sessionID)
		if !ok || session.status != StatusOpen {
			return ErrSessionClosed
		}
		if session.hasPlayer(player.UserID) {
			return ErrAlreadyJoined
		}

		value, err := m.roller.Roll(session.DieSize)
		if err != nil {
			return fmt.Errorf("failed to roll for player %d: %w", player.UserID, err)
		}

		participant := Participant{Player: player, Result: value}
		session.participants = append(session.participants, participant)

		log.Debug().
			Str("session_id", sessionID).
			Int64("user_id", player.UserID).
			Int("result", value).
			Int("joined", len(session.participants)).
			Int("target", session.Target).
			Msg("Player joined roll game")

		result = &JoinResult{Participant: participant}
		if !session.full() {
			result.View = session.view()
			return nil
		}

		outcome, err := m.complete(ctx, session)
		result.View = session.view()
		result.Outcome = outcome
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// complete finalizes a full session. The caller holds the session lock.
// The status moves to complete before any side effect so it is never finalized twice.
func (m *Manager) complete(ctx context.Context, session *Session) (*Outcome, error) {
	session.status = StatusComplete
	m.stopTimer(session)
	defer m.registry.Remove(session.ID)

	ranking := Rank(session.participants)
	entries := make([]model.RollEntry, len(ranking))
	for i, p := range ranking {
		entries[i] = model.RollEntry{UserID: p.UserID, Result: p.Result}
	}

	rolls, err := m.recorder.RecordBatch(ctx, session.DieSize, entries)
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to persist roll game")
		return nil, fmt.Errorf("failed to persist game %s: %w", session.ID, err)
	}

	outcome := &Outcome{
		View:    *session.view(),
		Ranking: ranking,
		Winner:  ranking[0],
		Loser:   ranking[len(ranking)-1],
		Rolls:   rolls,
	}

	log.Info().
		Str("session_id", session.ID).
		Int64("winner_id", outcome.Winner.UserID).
		Int64("loser_id", outcome.Loser.UserID).
		Msg("Roll game completed")

	if session.announcer != nil {
		if err := session.announcer.Completed(ctx, outcome); err != nil {
			return outcome, fmt.Errorf("failed to announce game %s: %w", session.ID, err)
		}
	}

	return outcome, nil
}

// Expire times out an open session, discarding its rolls.
// A session that already finished returns ErrSessionClosed and is left untouched.
func (m *Manager) Expire(ctx context.Context, sessionID string) (*View, error) {
	var view *View
	err := m.locks.WithLockContext(ctx, sessionID, func() error {
		session, ok := m.registry.Get(sessionID)
		if !ok || session.status != StatusOpen {
			return ErrSessionClosed
		}

		session.status = StatusTimedOut
		m.stopTimer(session)
		m.registry.Remove(sessionID)
		view = session.view()
		session.participants = nil

		log.Info().
			Str("session_id", sessionID).
			Int("joined", len(view.Participants)).
			Int("target", view.Target).
			Msg("Roll game timed out")

		if session.announcer != nil {
			if err := session.announcer.TimedOut(ctx, view); err != nil {
				return fmt.Errorf("failed to announce timeout of game %s: %w", sessionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

func (m *Manager) onTimeout(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
	defer cancel()

	if _, err := m.Expire(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionClosed) {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to expire roll game")
	}
}

func (m *Manager) stopTimer(session *Session) {
	if session.timer != nil {
		session.timer.Stop()
	}
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	return m.registry.Count()
}

// Shutdown stops every pending timer and drops all live sessions without announcing them.
func (m *Manager) Shutdown() {
	for _, id := range m.registry.IDs() {
		_ = m.locks.WithLock(id, func() error {
			session, ok := m.registry.Get(id)
			if !ok {
				return nil
			}
			m.stopTimer(session)
			m.registry.Remove(id)
			return nil
		})
	}
	log.Info().Msg("Roll game manager stopped")
}
