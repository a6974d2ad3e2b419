// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dicebot/internal/config"
	"dicebot/internal/game/dice"
	"dicebot/internal/service"
)

// requestTimeout bounds the storage work behind one update.
const requestTimeout = 10 * time.Second

var errBadArgument = errors.New("invalid argument")

// intArg parses the argument at idx, returning def when it is missing.
func intArg(args []string, idx int, def int) (int, error) {
	if idx >= len(args) {
		return def, nil
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, errBadArgument
	}
	return v, nil
}

// RollHandler handles rolling and statistics commands.
type RollHandler struct {
	rolls *service.RollService
	stats *service.StatsService
	names *Names
	game  config.GameConfig
}

// NewRollHandler creates a new RollHandler.
func NewRollHandler(rolls *service.RollService, stats *service.StatsService, names *Names, game config.GameConfig) *RollHandler {
	return &RollHandler{
		rolls: rolls,
		stats: stats,
		names: names,
		game:  game,
	}
}

// HandleStart handles /start and /help.
func (h *RollHandler) HandleStart(c tele.Context) error {
	return c.Reply(helpText)
}

// HandleRoll handles /roll [dice].
func (h *RollHandler) HandleRoll(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	dieSize, err := intArg(c.Args(), 0, h.game.DefaultDice)
	if err != nil || dice.ValidateSides(dieSize) != nil {
		return c.Reply(msgInvalidDice)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	roll, err := h.rolls.Roll(ctx, sender.ID, dieSize)
	if err != nil {
		if errors.Is(err, dice.ErrInvalidDieSize) {
			return c.Reply(msgInvalidDice)
		}
		log.Error().Err(err).Int64("user_id", sender.ID).Int("die_size", dieSize).Msg("Roll failed")
		return c.Reply(msgGenericFailure)
	}

	return c.Reply(formatRoll(roll))
}

// HandleHistory handles /history. Replying to someone's message shows their rolls.
func (h *RollHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	userID := sender.ID
	owner := ""
	if msg := c.Message(); msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		target := msg.ReplyTo.Sender
		if target.ID != sender.ID && !target.IsBot {
			h.names.Remember(target)
			userID = target.ID
			owner = DisplayName(target)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	rolls, err := h.rolls.History(ctx, userID, h.game.HistoryLimit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("History lookup failed")
		return c.Reply(msgGenericFailure)
	}

	return c.Reply(formatHistory(rolls, owner))
}

// HandleAverage handles /average.
func (h *RollHandler) HandleAverage(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	averages, err := h.stats.Averages(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Average lookup failed")
		return c.Reply(msgGenericFailure)
	}

	return c.Reply(formatAverages(averages))
}

// HandleLeaderboard handles /leaderboard [dice].
func (h *RollHandler) HandleLeaderboard(c tele.Context) error {
	dieSize, err := intArg(c.Args(), 0, h.game.DefaultDice)
	if err != nil || dice.ValidateSides(dieSize) != nil {
		return c.Reply(msgInvalidDice)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	entries, err := h.stats.Leaderboard(ctx, dieSize)
	if err != nil {
		log.Error().Err(err).Int("die_size", dieSize).Msg("Leaderboard lookup failed")
		return c.Reply(msgGenericFailure)
	}

	return c.Reply(formatLeaderboard(dieSize, entries, h.game.LeaderboardLimit, h.names))
}
