package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"dicebot/internal/game/rollgame"
	"dicebot/internal/model"
	"dicebot/internal/service"
)

const joinButtonPrefix = "rollgame_join:"

// mention renders a user mention.
func mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

func renderRoll(roll *model.Roll) string {
	return fmt.Sprintf("You rolled a %d", roll.Result)
}

// renderHistory renders rolls newest first. target is set when the rolls
// belong to someone other than the invoker.
func renderHistory(rolls []*model.Roll, target *int64) string {
	var b strings.Builder
	if target != nil {
		fmt.Fprintf(&b, "**Last %d roll(s) for %s:**\n", len(rolls), mention(*target))
	} else {
		fmt.Fprintf(&b, "**Last %d roll(s):**\n", len(rolls))
	}
	b.WriteString("```md\n")
	lines := make([]string, len(rolls))
	for i, roll := range rolls {
		lines[i] = fmt.Sprintf("d%d: %d", roll.DieSize, roll.Result)
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("```")
	return b.String()
}

func renderAverages(averages []model.DieAverage) string {
	if len(averages) == 0 {
		return "You haven't rolled any dice yet."
	}

	var b strings.Builder
	b.WriteString("**Your average roll(s):**\n```md\n")
	lines := make([]string, len(averages))
	for i, avg := range averages {
		lines[i] = fmt.Sprintf("d%d: %s", avg.DieSize, service.FormatAverage(avg.Average))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("```")
	return b.String()
}

func renderLeaderboard(dieSize int, entries []*model.LeaderboardEntry, limit int) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Nobody has rolled a `d%d` yet.", dieSize)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Leaderboard for `d%d`:**\n", dieSize)
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, mention(entry.UserID), service.FormatAverage(entry.Average))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderPanel renders the roll game message with the players joined so far.
func renderPanel(view *rollgame.View) string {
	var b strings.Builder
	b.WriteString("**Roll Game**\n\n")
	fmt.Fprintf(&b, "Rolling a `d%d` to see who wins!\n\n", view.DieSize)
	fmt.Fprintf(&b, "**Players (%d/%d):**\n", len(view.Participants), view.Target)
	for _, p := range view.Participants {
		b.WriteString(mention(p.UserID))
		b.WriteString("\n")
	}
	return b.String()
}

func renderOutcome(outcome *rollgame.Outcome) string {
	var b strings.Builder
	b.WriteString("**The game has ended!**\n\n")
	b.WriteString("**Scoreboard:**\n")
	for _, p := range outcome.Ranking {
		fmt.Fprintf(&b, "%s: %d\n", mention(p.UserID), p.Result)
	}
	fmt.Fprintf(&b, "\n**Winner:** %s\n", mention(outcome.Winner.UserID))
	fmt.Fprintf(&b, "**Loser:** %s\n", mention(outcome.Loser.UserID))
	return b.String()
}

func renderTimeout() string {
	return "**The game has timed out. No winner will be announced.**"
}

func joinButtonID(sessionID string) string {
	return joinButtonPrefix + sessionID
}

// parseJoinButtonID extracts the session ID from a join button custom ID.
func parseJoinButtonID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, joinButtonPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(customID, joinButtonPrefix)
	return id, id != ""
}

// panelComponents returns the join button while the session is open.
func panelComponents(view *rollgame.View) []discordgo.MessageComponent {
	if view.Status != rollgame.StatusOpen {
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.SuccessButton,
					CustomID: joinButtonID(view.SessionID),
					Emoji: &discordgo.ComponentEmoji{
						Name: "🎲",
					},
				},
			},
		},
	}
}
