// Package main is the entry point for the dice bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dicebot/internal/bot"
	"dicebot/internal/cache"
	"dicebot/internal/config"
	"dicebot/internal/discord"
	"dicebot/internal/game/dice"
	"dicebot/internal/game/rollgame"
	"dicebot/internal/pkg/db"
	"dicebot/internal/pkg/lock"
	"dicebot/internal/repository"
	"dicebot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	rollRepo := repository.NewRollRepository(dbPool.Pool)

	// A nil cache disables leaderboard caching.
	var leaderboards service.LeaderboardCache
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		lc, err := cache.NewLeaderboard(ctx, &cache.Config{
			RedisClient: redisClient,
			TTL:         cfg.Redis.LeaderboardTTL,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to initialize leaderboard cache")
		}
		leaderboards = lc
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.LeaderboardTTL).Msg("Leaderboard cache enabled")
	}

	roller := dice.New(&dice.Config{})
	rollService := service.NewRollService(rollRepo, roller, leaderboards)
	statsService := service.NewStatsService(rollRepo, leaderboards)

	games, err := rollgame.New(&rollgame.Config{
		Roller:      roller,
		Recorder:    rollService,
		JoinTimeout: cfg.Game.JoinTimeout,
		MaxPlayers:  cfg.Game.MaxPlayers,
		Locks:       lock.NewKeyLock(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game manager")
	}

	var discordBot *discord.Bot
	if cfg.Discord.Token != "" {
		discordBot, err = discord.New(&discord.Config{
			Token:         cfg.Discord.Token,
			ApplicationID: cfg.Discord.ApplicationID,
			GuildID:       cfg.Discord.GuildID,
			Game:          cfg.Game,
			RollService:   rollService,
			StatsService:  statsService,
			Games:         games,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Discord bot")
		}
		if err := discordBot.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start Discord bot")
		}
	}

	var telegramBot *bot.Bot
	if cfg.Telegram.Token != "" {
		telegramBot, err = bot.New(&bot.Dependencies{
			Config:       cfg,
			RollService:  rollService,
			StatsService: statsService,
			Games:        games,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Telegram bot")
		}
		go telegramBot.Start()
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	if telegramBot != nil {
		telegramBot.Stop()
	}
	if discordBot != nil {
		if err := discordBot.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Discord connection")
		}
	}
	log.Info().Int("open_games", games.Active()).Msg("Dropping open games")
	games.Shutdown()

	log.Info().Msg("Bot stopped gracefully")
}
