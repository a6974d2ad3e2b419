package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dicebot/internal/config"
	"dicebot/internal/game/dice"
	"dicebot/internal/game/rollgame"
)

// Messenger is the part of *tele.Bot used to post game updates.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// RollGameHandler handles the /rollgame command and its Join button.
type RollGameHandler struct {
	games     *rollgame.Manager
	messenger Messenger
	names     *Names
	game      config.GameConfig
}

// NewRollGameHandler creates a new RollGameHandler.
func NewRollGameHandler(games *rollgame.Manager, messenger Messenger, names *Names, game config.GameConfig) *RollGameHandler {
	return &RollGameHandler{
		games:     games,
		messenger: messenger,
		names:     names,
		game:      game,
	}
}

// HandleRollGame handles /rollgame [dice] [players].
func (h *RollGameHandler) HandleRollGame(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	args := c.Args()
	dieSize, err := intArg(args, 0, h.game.DefaultDice)
	if err != nil || dice.ValidateSides(dieSize) != nil {
		return c.Reply(msgInvalidDice)
	}
	players, err := intArg(args, 1, h.game.DefaultPlayers)
	if err != nil || h.games.ValidatePlayers(players) != nil {
		return c.Reply(formatPlayerCount(h.games.MaxPlayers()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	announcer := newChatAnnouncer(h.messenger, chat)
	view, err := h.games.Start(ctx, &rollgame.StartInput{
		DieSize:   dieSize,
		Players:   players,
		Announcer: announcer,
	})
	if err != nil {
		if errors.Is(err, rollgame.ErrInvalidPlayerCount) || errors.Is(err, rollgame.ErrTooManyPlayers) {
			return c.Reply(formatPlayerCount(h.games.MaxPlayers()))
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to start roll game")
		return c.Reply(msgGenericFailure)
	}

	panel, err := h.messenger.Send(chat, formatPanel(view), BuildJoinPanel(view.SessionID))
	if err != nil {
		// The session still times out on its own.
		log.Error().Err(err).Str("session_id", view.SessionID).Msg("Failed to send roll game panel")
		return err
	}
	announcer.setPanel(panel)

	log.Info().
		Int64("chat_id", chat.ID).
		Str("session_id", view.SessionID).
		Int("die_size", dieSize).
		Int("players", players).
		Msg("Roll game started")

	return nil
}

// HandleJoinCallback handles a click on a roll game's Join button.
func (h *RollGameHandler) HandleJoinCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	sessionID, ok := DecodeJoinCallback(callback.Data)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: msgGameClosed})
	}

	h.names.Remember(sender)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := h.games.Join(ctx, sessionID, rollgame.Player{
		UserID: sender.ID,
		Name:   DisplayName(sender),
	})
	switch {
	case errors.Is(err, rollgame.ErrSessionClosed):
		return c.Respond(&tele.CallbackResponse{Text: msgGameClosed})
	case errors.Is(err, rollgame.ErrAlreadyJoined):
		return c.Respond(&tele.CallbackResponse{Text: msgAlreadyJoined})
	case err != nil:
		log.Error().Err(err).Str("session_id", sessionID).Int64("user_id", sender.ID).Msg("Failed to join roll game")
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	}

	// A completing join has its panel closed by the announcer.
	if callback.Message != nil && result.Outcome == nil {
		if err := editPanel(h.messenger, callback.Message, result.View); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to edit roll game panel")
		}
	}

	return c.Respond(&tele.CallbackResponse{
		Text: fmt.Sprintf("%s You rolled a %d.", msgJoined, result.Participant.Result),
	})
}

// editPanel redraws a game panel. Editing without markup drops the Join button.
func editPanel(m Messenger, msg tele.Editable, view *rollgame.View) error {
	if view.Status == rollgame.StatusOpen {
		_, err := m.Edit(msg, formatPanel(view), BuildJoinPanel(view.SessionID))
		return err
	}
	_, err := m.Edit(msg, formatPanel(view))
	return err
}

// chatAnnouncer posts a session's end to the chat it was started in.
type chatAnnouncer struct {
	messenger Messenger
	chat      *tele.Chat

	mu    sync.Mutex
	panel *tele.Message
}

func newChatAnnouncer(m Messenger, chat *tele.Chat) *chatAnnouncer {
	return &chatAnnouncer{messenger: m, chat: chat}
}

func (a *chatAnnouncer) setPanel(msg *tele.Message) {
	a.mu.Lock()
	a.panel = msg
	a.mu.Unlock()
}

func (a *chatAnnouncer) panelMessage() *tele.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.panel
}

// Completed closes the panel, then sends the scoreboard.
func (a *chatAnnouncer) Completed(_ context.Context, outcome *rollgame.Outcome) error {
	if panel := a.panelMessage(); panel != nil {
		if err := editPanel(a.messenger, panel, &outcome.View); err != nil {
			log.Debug().Err(err).Str("session_id", outcome.SessionID).Msg("Failed to close roll game panel")
		}
	}
	if _, err := a.messenger.Send(a.chat, formatOutcome(outcome)); err != nil {
		return fmt.Errorf("failed to send scoreboard: %w", err)
	}
	return nil
}

// TimedOut closes the panel and sends the timeout notice.
func (a *chatAnnouncer) TimedOut(_ context.Context, view *rollgame.View) error {
	if panel := a.panelMessage(); panel != nil {
		if err := editPanel(a.messenger, panel, view); err != nil {
			log.Debug().Err(err).Str("session_id", view.SessionID).Msg("Failed to close roll game panel")
		}
	}
	if _, err := a.messenger.Send(a.chat, formatTimeout()); err != nil {
		return fmt.Errorf("failed to send timeout notice: %w", err)
	}
	return nil
}
