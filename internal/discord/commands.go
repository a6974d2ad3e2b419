package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"dicebot/internal/config"
	"dicebot/internal/game/dice"
	"dicebot/internal/game/rollgame"
	"dicebot/internal/service"
)

// commandTimeout bounds the storage work behind a single interaction.
const commandTimeout = 10 * time.Second

const genericFailure = "Something went wrong, please try again later."

var invalidDiceMessage = fmt.Sprintf("The dice must have between 1 and %d sides.", dice.MaxSides)

var minOneSide = 1.0

func diceOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "dice",
		Description: description,
		MinValue:    &minOneSide,
		MaxValue:    dice.MaxSides,
	}
}

// intOption returns the named integer option or def when it was omitted.
func intOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string, def int) int {
	for _, opt := range opts {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionInteger {
			return int(opt.IntValue())
		}
	}
	return def
}

// userOption returns the named user option or nil when it was omitted.
func userOption(s *discordgo.Session, opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	for _, opt := range opts {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionUser {
			return opt.UserValue(s)
		}
	}
	return nil
}

// RollCommand handles /roll.
type RollCommand struct {
	BaseCommand
	rolls       *service.RollService
	defaultDice int
}

// NewRollCommand creates the /roll command.
func NewRollCommand(rolls *service.RollService, game config.GameConfig) *RollCommand {
	return &RollCommand{
		BaseCommand: BaseCommand{
			Name:        "roll",
			Description: "Rolls a dice",
			Options: []*discordgo.ApplicationCommandOption{
				diceOption("The number of sides on the dice"),
			},
		},
		rolls:       rolls,
		defaultDice: game.DefaultDice,
	}
}

// Handle processes /roll.
func (c *RollCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID, _, err := invokerID(i)
	if err != nil {
		return err
	}

	dieSize := intOption(i.ApplicationCommandData().Options, "dice", c.defaultDice)
	if err := dice.ValidateSides(dieSize); err != nil {
		return RespondWithEphemeralMessage(s, i, invalidDiceMessage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	roll, err := c.rolls.Roll(ctx, userID, dieSize)
	if err != nil {
		if errors.Is(err, dice.ErrInvalidDieSize) {
			return RespondWithEphemeralMessage(s, i, invalidDiceMessage)
		}
		log.Error().Err(err).Int64("user_id", userID).Int("die_size", dieSize).Msg("Roll failed")
		return RespondWithEphemeralMessage(s, i, genericFailure)
	}

	return RespondWithMessage(s, i, renderRoll(roll))
}

// HistoryCommand handles /history.
type HistoryCommand struct {
	BaseCommand
	rolls *service.RollService
	limit int
}

// NewHistoryCommand creates the /history command.
func NewHistoryCommand(rolls *service.RollService, game config.GameConfig) *HistoryCommand {
	return &HistoryCommand{
		BaseCommand: BaseCommand{
			Name:        "history",
			Description: "Shows your last 10 rolls",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Show this user's rolls instead of yours",
				},
			},
		},
		rolls: rolls,
		limit: game.HistoryLimit,
	}
}

// Handle processes /history.
func (c *HistoryCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID, _, err := invokerID(i)
	if err != nil {
		return err
	}

	var target *int64
	if u := userOption(s, i.ApplicationCommandData().Options, "user"); u != nil {
		id, err := parseUserID(u.ID)
		if err != nil {
			return RespondWithEphemeralMessage(s, i, "That user could not be found.")
		}
		if id != userID {
			target = &id
			userID = id
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rolls, err := c.rolls.History(ctx, userID, c.limit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("History lookup failed")
		return RespondWithEphemeralMessage(s, i, genericFailure)
	}

	return RespondWithMessage(s, i, renderHistory(rolls, target))
}

// AverageCommand handles /average.
type AverageCommand struct {
	BaseCommand
	stats *service.StatsService
}

// NewAverageCommand creates the /average command.
func NewAverageCommand(stats *service.StatsService) *AverageCommand {
	return &AverageCommand{
		BaseCommand: BaseCommand{
			Name:        "average",
			Description: "Shows your average roll for each dice",
		},
		stats: stats,
	}
}

// Handle processes /average.
func (c *AverageCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID, _, err := invokerID(i)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	averages, err := c.stats.Averages(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Average lookup failed")
		return RespondWithEphemeralMessage(s, i, genericFailure)
	}

	return RespondWithMessage(s, i, renderAverages(averages))
}

// LeaderboardCommand handles /leaderboard.
type LeaderboardCommand struct {
	BaseCommand
	stats       *service.StatsService
	defaultDice int
	limit       int
}

// NewLeaderboardCommand creates the /leaderboard command.
func NewLeaderboardCommand(stats *service.StatsService, game config.GameConfig) *LeaderboardCommand {
	return &LeaderboardCommand{
		BaseCommand: BaseCommand{
			Name:        "leaderboard",
			Description: "Shows the best average rolls for a dice",
			Options: []*discordgo.ApplicationCommandOption{
				diceOption("The number of sides on the dice"),
			},
		},
		stats:       stats,
		defaultDice: game.DefaultDice,
		limit:       game.LeaderboardLimit,
	}
}

// Handle processes /leaderboard.
func (c *LeaderboardCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	dieSize := intOption(i.ApplicationCommandData().Options, "dice", c.defaultDice)
	if err := dice.ValidateSides(dieSize); err != nil {
		return RespondWithEphemeralMessage(s, i, invalidDiceMessage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	entries, err := c.stats.Leaderboard(ctx, dieSize)
	if err != nil {
		log.Error().Err(err).Int("die_size", dieSize).Msg("Leaderboard lookup failed")
		return RespondWithEphemeralMessage(s, i, genericFailure)
	}

	return RespondWithMessage(s, i, renderLeaderboard(dieSize, entries, c.limit))
}

// RollGameCommand handles /rollgame.
type RollGameCommand struct {
	BaseCommand
	games          *rollgame.Manager
	defaultDice    int
	defaultPlayers int
}

// NewRollGameCommand creates the /rollgame command.
func NewRollGameCommand(games *rollgame.Manager, game config.GameConfig) *RollGameCommand {
	minPlayers := 1.0
	return &RollGameCommand{
		BaseCommand: BaseCommand{
			Name:        "rollgame",
			Description: "Makes a game out of rolling dice!",
			Options: []*discordgo.ApplicationCommandOption{
				diceOption("The number of sides on the dice"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "players",
					Description: "The number of players",
					MinValue:    &minPlayers,
					MaxValue:    float64(games.MaxPlayers()),
				},
			},
		},
		games:          games,
		defaultDice:    game.DefaultDice,
		defaultPlayers: game.DefaultPlayers,
	}
}

// Handle processes /rollgame.
func (c *RollGameCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := i.ApplicationCommandData().Options
	dieSize := intOption(opts, "dice", c.defaultDice)
	players := intOption(opts, "players", c.defaultPlayers)

	if err := dice.ValidateSides(dieSize); err != nil {
		return RespondWithEphemeralMessage(s, i, invalidDiceMessage)
	}
	if err := c.games.ValidatePlayers(players); err != nil {
		return RespondWithEphemeralMessage(s, i, playerCountMessage(c.games.MaxPlayers()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	view, err := c.games.Start(ctx, &rollgame.StartInput{
		DieSize:   dieSize,
		Players:   players,
		Announcer: newAnnouncer(s, i.Interaction),
	})
	if err != nil {
		if errors.Is(err, rollgame.ErrInvalidPlayerCount) || errors.Is(err, rollgame.ErrTooManyPlayers) {
			return RespondWithEphemeralMessage(s, i, playerCountMessage(c.games.MaxPlayers()))
		}
		log.Error().Err(err).Msg("Failed to start roll game")
		return RespondWithEphemeralMessage(s, i, genericFailure)
	}

	return RespondWithComponents(s, i, renderPanel(view), panelComponents(view))
}
