// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dicebot/internal/config"
	"dicebot/internal/game/rollgame"
	"dicebot/internal/handler"
	"dicebot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot          *tele.Bot
	cfg          *config.Config
	privateUsers *PrivateUsers
	names        *handler.Names

	rollHandler     *handler.RollHandler
	rollGameHandler *handler.RollGameHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config       *config.Config
	RollService  *service.RollService
	StatsService *service.StatsService
	Games        *rollgame.Manager
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Config.Telegram.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if deps.RollService == nil || deps.StatsService == nil || deps.Games == nil {
		return nil, errors.New("roll service, stats service and game manager are required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:          teleBot,
		cfg:          deps.Config,
		privateUsers: NewPrivateUsers(),
		names:        handler.NewNames(),
	}

	b.rollHandler = handler.NewRollHandler(deps.RollService, deps.StatsService, b.names, deps.Config.Game)
	b.rollGameHandler = handler.NewRollGameHandler(deps.Games, teleBot, b.names, deps.Config.Game)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.privateUsers))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(NamesMiddleware(b.names))
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.rollHandler.HandleStart)
	b.bot.Handle("/help", b.rollHandler.HandleStart)
	b.bot.Handle("/roll", b.rollHandler.HandleRoll)
	b.bot.Handle("/history", b.rollHandler.HandleHistory)
	b.bot.Handle("/average", b.rollHandler.HandleAverage)
	b.bot.Handle("/leaderboard", b.rollHandler.HandleLeaderboard)
	b.bot.Handle("/rollgame", b.rollGameHandler.HandleRollGame)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to appropriate handlers
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	if strings.HasPrefix(data, handler.JoinCallbackPrefix) {
		return b.rollGameHandler.HandleJoinCallback(c)
	}

	return c.Respond()
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting Telegram bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping Telegram bot...")
	b.bot.Stop()
}
