package handler

import (
	"fmt"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v3"
)

// Names remembers display names of users seen by the bot.
// Rolls only store user IDs, so leaderboards resolve names here.
type Names struct {
	names sync.Map // map[int64]string
}

// NewNames creates an empty name cache.
func NewNames() *Names {
	return &Names{}
}

// Remember records the display name of a Telegram user.
func (n *Names) Remember(user *tele.User) {
	if user == nil {
		return
	}
	n.names.Store(user.ID, DisplayName(user))
}

// Lookup returns the remembered name, or a placeholder for unknown users.
func (n *Names) Lookup(userID int64) string {
	if name, ok := n.names.Load(userID); ok {
		return name.(string)
	}
	return fmt.Sprintf("User%d", userID)
}

// DisplayName prefers the user's full name over the username.
func DisplayName(user *tele.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name != "" {
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("User%d", user.ID)
}
