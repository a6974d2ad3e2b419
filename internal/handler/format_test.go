package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"dicebot/internal/game/rollgame"
	"dicebot/internal/model"
)

func TestFormatHistory(t *testing.T) {
	rolls := []*model.Roll{
		{DieSize: 20, Result: 7},
		{DieSize: 100, Result: 63},
	}

	assert.Equal(t, "Last 2 roll(s):\nd20: 7\nd100: 63", formatHistory(rolls, ""))
	assert.Equal(t, "Last 2 roll(s) for Alice:\nd20: 7\nd100: 63", formatHistory(rolls, "Alice"))
	assert.Equal(t, "Last 0 roll(s):", formatHistory(nil, ""))
}

func TestFormatAverages(t *testing.T) {
	assert.Equal(t, "You haven't rolled any dice yet.", formatAverages(nil))
	assert.Equal(t, "📊 Your average roll(s):\nd6: 4\nd20: 11.63", formatAverages([]model.DieAverage{
		{DieSize: 6, Average: 4},
		{DieSize: 20, Average: 11.63},
	}))
}

func TestFormatLeaderboard(t *testing.T) {
	names := NewNames()
	names.Remember(&tele.User{ID: 1, FirstName: "Alice"})

	assert.Equal(t, "Nobody has rolled a d6 yet.", formatLeaderboard(6, nil, 10, names))

	entries := []*model.LeaderboardEntry{
		{UserID: 1, Average: 70},
		{UserID: 2, Average: 40.5},
		{UserID: 3, Average: 10},
	}
	got := formatLeaderboard(100, entries, 2, names)
	assert.Equal(t, "🏆 Leaderboard for d100:\n1. Alice: 70\n2. User2: 40.5", got)
}

func TestFormatPanelAndOutcome(t *testing.T) {
	alice := rollgame.Participant{Player: rollgame.Player{UserID: 1, Name: "Alice"}, Result: 50}
	bob := rollgame.Participant{Player: rollgame.Player{UserID: 2, Name: "Bob"}, Result: 80}

	view := &rollgame.View{DieSize: 100, Target: 2, Participants: []rollgame.Participant{alice}}
	assert.Equal(t, "🎲 Roll Game\n\nRolling a d100 to see who wins!\n\nPlayers (1/2):\nAlice", formatPanel(view))

	outcome := &rollgame.Outcome{Ranking: []rollgame.Participant{bob, alice}, Winner: bob, Loser: alice}
	assert.Equal(t, "🏁 The game has ended!\n\nScoreboard:\nBob: 80\nAlice: 50\n\nWinner: Bob\nLoser: Alice", formatOutcome(outcome))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", DisplayName(&tele.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Username: "ada"}))
	assert.Equal(t, "@ada", DisplayName(&tele.User{ID: 1, Username: "ada"}))
	assert.Equal(t, "User7", DisplayName(&tele.User{ID: 7}))
}

func TestNames(t *testing.T) {
	names := NewNames()
	assert.Equal(t, "User5", names.Lookup(5))

	names.Remember(&tele.User{ID: 5, FirstName: "Eve"})
	assert.Equal(t, "Eve", names.Lookup(5))

	names.Remember(&tele.User{ID: 5, FirstName: "Eve", LastName: "Adams"})
	assert.Equal(t, "Eve Adams", names.Lookup(5))

	names.Remember(nil)
}

func TestJoinCallback(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		wantID string
		wantOK bool
	}{
		{"encoded", EncodeJoinCallback("abc-123"), "abc-123", true},
		{"form feed prefix", "\f" + EncodeJoinCallback("abc-123"), "abc-123", true},
		{"missing id", JoinCallbackPrefix, "", false},
		{"other callback", "sicbo_big", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := DecodeJoinCallback(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestBuildJoinPanel(t *testing.T) {
	markup := BuildJoinPanel("s1")
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "rollgame_join_s1", markup.InlineKeyboard[0][0].Data)
}

func TestIntArg(t *testing.T) {
	v, err := intArg([]string{"20"}, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = intArg(nil, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	v, err = intArg([]string{"20"}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = intArg([]string{"d20"}, 0, 100)
	assert.ErrorIs(t, err, errBadArgument)
}
