package handler

import (
	"fmt"
	"strings"

	"dicebot/internal/game/rollgame"
	"dicebot/internal/model"
	"dicebot/internal/service"
)

const helpText = `🎲 Dice Bot

/roll [dice] - roll a dice (default d100)
/history - your last rolls, reply to a message to see that user's rolls
/average - your average roll for each dice
/leaderboard [dice] - best average rolls for a dice
/rollgame [dice] [players] - start a game, highest roll wins`

const (
	msgInvalidDice    = "❌ The dice must be a whole number between 1 and 2147483647."
	msgGenericFailure = "❌ Something went wrong, please try again later."
	msgJoined         = "✅ You joined the game!"
	msgAlreadyJoined  = "You already joined this game!"
	msgGameClosed     = "This game is no longer open."
)

func formatPlayerCount(maxPlayers int) string {
	return fmt.Sprintf("❌ The number of players must be between 1 and %d.", maxPlayers)
}

func formatRoll(roll *model.Roll) string {
	return fmt.Sprintf("🎲 You rolled a %d", roll.Result)
}

// formatHistory renders rolls newest first. owner is empty for the invoker's own rolls.
func formatHistory(rolls []*model.Roll, owner string) string {
	var b strings.Builder
	if owner != "" {
		fmt.Fprintf(&b, "Last %d roll(s) for %s:", len(rolls), owner)
	} else {
		fmt.Fprintf(&b, "Last %d roll(s):", len(rolls))
	}
	for _, roll := range rolls {
		fmt.Fprintf(&b, "\nd%d: %d", roll.DieSize, roll.Result)
	}
	return b.String()
}

func formatAverages(averages []model.DieAverage) string {
	if len(averages) == 0 {
		return "You haven't rolled any dice yet."
	}
	var b strings.Builder
	b.WriteString("📊 Your average roll(s):")
	for _, avg := range averages {
		fmt.Fprintf(&b, "\nd%d: %s", avg.DieSize, service.FormatAverage(avg.Average))
	}
	return b.String()
}

func formatLeaderboard(dieSize int, entries []*model.LeaderboardEntry, limit int, names *Names) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Nobody has rolled a d%d yet.", dieSize)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Leaderboard for d%d:", dieSize)
	for i, entry := range entries {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, names.Lookup(entry.UserID), service.FormatAverage(entry.Average))
	}
	return b.String()
}

func formatPanel(view *rollgame.View) string {
	var b strings.Builder
	b.WriteString("🎲 Roll Game\n\n")
	fmt.Fprintf(&b, "Rolling a d%d to see who wins!\n\n", view.DieSize)
	fmt.Fprintf(&b, "Players (%d/%d):", len(view.Participants), view.Target)
	for _, p := range view.Participants {
		b.WriteString("\n")
		b.WriteString(p.Name)
	}
	return b.String()
}

func formatOutcome(outcome *rollgame.Outcome) string {
	var b strings.Builder
	b.WriteString("🏁 The game has ended!\n\nScoreboard:")
	for _, p := range outcome.Ranking {
		fmt.Fprintf(&b, "\n%s: %d", p.Name, p.Result)
	}
	fmt.Fprintf(&b, "\n\nWinner: %s", outcome.Winner.Name)
	fmt.Fprintf(&b, "\nLoser: %s", outcome.Loser.Name)
	return b.String()
}

func formatTimeout() string {
	return "⏰ The game has timed out. No winner will be announced."
}
