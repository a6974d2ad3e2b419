package handler

import (
	"strings"

	tele "gopkg.in/telebot.v3"
)

// JoinCallbackPrefix prefixes the callback data of roll game Join buttons.
const JoinCallbackPrefix = "rollgame_join_"

// EncodeJoinCallback builds the callback data for a session's Join button.
func EncodeJoinCallback(sessionID string) string {
	return JoinCallbackPrefix + sessionID
}

// DecodeJoinCallback extracts the session ID from Join button callback data.
func DecodeJoinCallback(data string) (string, bool) {
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, JoinCallbackPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(data, JoinCallbackPrefix)
	return id, id != ""
}

// BuildJoinPanel builds the inline keyboard shown under an open roll game.
func BuildJoinPanel(sessionID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = [][]tele.InlineButton{
		{
			{
				Text: "🎲 Join",
				Data: EncodeJoinCallback(sessionID),
			},
		},
	}
	return markup
}
