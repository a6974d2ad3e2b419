// Package discord provides the Discord surface: slash commands and the roll game join button.
package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"dicebot/internal/config"
	"dicebot/internal/game/rollgame"
	"dicebot/internal/service"
)

// Bot represents the Discord bot instance
type Bot struct {
	session  *discordgo.Session
	commands map[string]CommandHandler
	games    *rollgame.Manager
	config   *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot. Falls back to the session user ID.
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Command defaults and limits
	Game config.GameConfig

	RollService  *service.RollService
	StatsService *service.StatsService
	Games        *rollgame.Manager
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.RollService == nil {
		return nil, errors.New("roll service cannot be nil")
	}

	if cfg.StatsService == nil {
		return nil, errors.New("stats service cannot be nil")
	}

	if cfg.Games == nil {
		return nil, errors.New("game manager cannot be nil")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		session:  session,
		commands: make(map[string]CommandHandler),
		games:    cfg.Games,
		config:   cfg,
	}

	for _, cmd := range []CommandHandler{
		NewRollCommand(cfg.RollService, cfg.Game),
		NewHistoryCommand(cfg.RollService, cfg.Game),
		NewRollGameCommand(cfg.Games, cfg.Game),
		NewAverageCommand(cfg.StatsService),
		NewLeaderboardCommand(cfg.StatsService, cfg.Game),
	} {
		bot.commands[cmd.GetName()] = cmd
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.String()).Msg("Logged in to Discord")
	})
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start opens the gateway connection and registers all commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	log.Info().Int("commands", len(b.commands)).Msg("Discord bot is running")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	log.Info().Msg("Stopping Discord bot...")
	return b.session.Close()
}

// registerCommands replaces the application's command set with ours in one call.
func (b *Bot) registerCommands() error {
	appID := b.config.ApplicationID
	if appID == "" {
		// Fall back to session user ID if application ID is not provided
		appID = b.session.State.User.ID
	}

	defs := make([]*discordgo.ApplicationCommand, 0, len(b.commands))
	for _, cmd := range b.commands {
		defs = append(defs, cmd.GetCommand())
	}

	created, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, defs)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	for _, cmd := range created {
		log.Info().
			Str("command", cmd.Name).
			Str("id", cmd.ID).
			Str("guild_id", b.config.GuildID).
			Msg("Registered command")
	}
	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("interaction_id", i.ID).
				Msg("Recovered from panic in interaction handler")
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		h, ok := b.commands[name]
		if !ok {
			log.Warn().Str("command", name).Msg("Unknown command")
			return
		}
		log.Debug().Str("command", name).Str("channel_id", i.ChannelID).Msg("Command received")
		if err := h.Handle(s, i); err != nil {
			log.Error().Err(err).Str("command", name).Msg("Error handling command")
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			log.Error().Err(err).Str("custom_id", i.MessageComponentData().CustomID).Msg("Error handling component interaction")
		}
	}
}

// handleComponentInteraction handles button clicks
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID

	if sessionID, ok := parseJoinButtonID(customID); ok {
		return handleJoinButton(s, i, b.games, sessionID)
	}

	// Buttons from an older deployment: acknowledge silently.
	return AcknowledgeComponent(s, i)
}

// interactionUser returns the invoking user and their display name.
// Member is set in guilds, User in direct messages.
func interactionUser(i *discordgo.InteractionCreate) (*discordgo.User, string) {
	if i.Member != nil && i.Member.User != nil {
		name := i.Member.Nick
		if name == "" {
			name = displayName(i.Member.User)
		}
		return i.Member.User, name
	}
	if i.User != nil {
		return i.User, displayName(i.User)
	}
	return nil, ""
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// parseUserID converts a Discord snowflake to the numeric user ID stored with rolls.
func parseUserID(id string) (int64, error) {
	userID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return userID, nil
}

// invokerID returns the numeric ID of the user behind an interaction.
func invokerID(i *discordgo.InteractionCreate) (int64, string, error) {
	user, name := interactionUser(i)
	if user == nil {
		return 0, "", errors.New("interaction has no user")
	}
	id, err := parseUserID(user.ID)
	if err != nil {
		return 0, "", err
	}
	return id, name, nil
}
