package handler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"dicebot/internal/config"
	"dicebot/internal/game/dice"
	"dicebot/internal/game/rollgame"
	"dicebot/internal/model"
)

type sentMessage struct {
	text    string
	options []interface{}
}

// fakeMessenger records messages instead of calling the Bot API.
type fakeMessenger struct {
	mu     sync.Mutex
	sent   []sentMessage
	edited []sentMessage
}

func (m *fakeMessenger) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{text: what.(string), options: opts})
	return &tele.Message{ID: len(m.sent), Chat: &tele.Chat{ID: 1}}, nil
}

func (m *fakeMessenger) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edited = append(m.edited, sentMessage{text: what.(string), options: opts})
	return &tele.Message{ID: 1}, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordBatch(ctx context.Context, dieSize int, entries []model.RollEntry) ([]*model.Roll, error) {
	return make([]*model.Roll, len(entries)), nil
}

func newTestGames(t *testing.T) *rollgame.Manager {
	t.Helper()
	games, err := rollgame.New(&rollgame.Config{
		Roller:   dice.New(&dice.Config{Seed: 7}),
		Recorder: nopRecorder{},
	})
	require.NoError(t, err)
	t.Cleanup(games.Shutdown)
	return games
}

func TestChatAnnouncerCompleted(t *testing.T) {
	ctx := context.Background()
	messenger := &fakeMessenger{}
	announcer := newChatAnnouncer(messenger, &tele.Chat{ID: 1})
	games := newTestGames(t)

	view, err := games.Start(ctx, &rollgame.StartInput{DieSize: 6, Players: 1, Announcer: announcer})
	require.NoError(t, err)

	result, err := games.Join(ctx, view.SessionID, rollgame.Player{UserID: 10, Name: "Alice"})
	require.NoError(t, err)
	require.NotNil(t, result.Outcome)

	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].text, "The game has ended!")
	assert.Contains(t, messenger.sent[0].text, "Winner: Alice")
}

func TestChatAnnouncerTimedOut(t *testing.T) {
	ctx := context.Background()
	messenger := &fakeMessenger{}
	announcer := newChatAnnouncer(messenger, &tele.Chat{ID: 1})
	games := newTestGames(t)

	view, err := games.Start(ctx, &rollgame.StartInput{DieSize: 6, Players: 2, Announcer: announcer})
	require.NoError(t, err)
	announcer.setPanel(&tele.Message{ID: 99, Chat: &tele.Chat{ID: 1}})

	_, err = games.Expire(ctx, view.SessionID)
	require.NoError(t, err)

	require.Len(t, messenger.edited, 1)
	assert.Empty(t, messenger.edited[0].options, "closed panel keeps no Join button")
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, formatTimeout(), messenger.sent[0].text)
}

func TestChatAnnouncerTimedOutWithoutPanel(t *testing.T) {
	messenger := &fakeMessenger{}
	announcer := newChatAnnouncer(messenger, &tele.Chat{ID: 1})

	err := announcer.TimedOut(context.Background(), &rollgame.View{SessionID: "s1", Status: rollgame.StatusTimedOut})
	require.NoError(t, err)

	assert.Empty(t, messenger.edited)
	require.Len(t, messenger.sent, 1)
}

func TestEditPanelKeepsButtonWhileOpen(t *testing.T) {
	messenger := &fakeMessenger{}
	view := &rollgame.View{SessionID: "s1", DieSize: 6, Target: 2, Status: rollgame.StatusOpen}

	require.NoError(t, editPanel(messenger, &tele.Message{ID: 1}, view))

	require.Len(t, messenger.edited, 1)
	require.Len(t, messenger.edited[0].options, 1)
	markup, ok := messenger.edited[0].options[0].(*tele.ReplyMarkup)
	require.True(t, ok)
	assert.Equal(t, EncodeJoinCallback("s1"), markup.InlineKeyboard[0][0].Data)
}

func TestChatAnnouncerCompletedClosesPanelFirst(t *testing.T) {
	messenger := &fakeMessenger{}
	announcer := newChatAnnouncer(messenger, &tele.Chat{ID: 1})
	announcer.setPanel(&tele.Message{ID: 99, Chat: &tele.Chat{ID: 1}})

	alice := rollgame.Participant{Player: rollgame.Player{UserID: 10, Name: "Alice"}, Result: 4}
	outcome := &rollgame.Outcome{
		View:    rollgame.View{SessionID: "s1", DieSize: 6, Target: 1, Status: rollgame.StatusComplete},
		Ranking: []rollgame.Participant{alice},
		Winner:  alice,
		Loser:   alice,
	}
	require.NoError(t, announcer.Completed(context.Background(), outcome))

	require.Len(t, messenger.edited, 1)
	assert.Empty(t, messenger.edited[0].options, "closed panel keeps no Join button")
	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].text, "The game has ended!")
}

// fakeContext serves a Join button click. Methods it does not override panic.
type fakeContext struct {
	tele.Context
	callback  *tele.Callback
	sender    *tele.User
	responses []*tele.CallbackResponse
}

func (c *fakeContext) Callback() *tele.Callback { return c.callback }
func (c *fakeContext) Sender() *tele.User       { return c.sender }

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

func clickJoin(t *testing.T, h *RollGameHandler, data string, user *tele.User) *fakeContext {
	t.Helper()
	c := &fakeContext{
		callback: &tele.Callback{Data: data, Message: &tele.Message{ID: 99, Chat: &tele.Chat{ID: 1}}},
		sender:   user,
	}
	require.NoError(t, h.HandleJoinCallback(c))
	require.Len(t, c.responses, 1)
	return c
}

type joinFixture struct {
	handler   *RollGameHandler
	games     *rollgame.Manager
	messenger *fakeMessenger
}

func newJoinFixture(t *testing.T) *joinFixture {
	t.Helper()
	games := newTestGames(t)
	messenger := &fakeMessenger{}
	return &joinFixture{
		handler:   NewRollGameHandler(games, messenger, NewNames(), config.GameConfig{DefaultDice: 6, DefaultPlayers: 2}),
		games:     games,
		messenger: messenger,
	}
}

func (f *joinFixture) start(t *testing.T, players int) string {
	t.Helper()
	announcer := newChatAnnouncer(f.messenger, &tele.Chat{ID: 1})
	view, err := f.games.Start(context.Background(), &rollgame.StartInput{DieSize: 6, Players: players, Announcer: announcer})
	require.NoError(t, err)
	announcer.setPanel(&tele.Message{ID: 99, Chat: &tele.Chat{ID: 1}})
	return view.SessionID
}

func TestHandleJoinCallback_FirstJoinRedrawsOpenPanel(t *testing.T) {
	f := newJoinFixture(t)
	id := f.start(t, 2)

	c := clickJoin(t, f.handler, EncodeJoinCallback(id), &tele.User{ID: 10, FirstName: "Alice"})

	assert.Contains(t, c.responses[0].Text, msgJoined)
	require.Len(t, f.messenger.edited, 1)
	require.Len(t, f.messenger.edited[0].options, 1, "open panel keeps its Join button")
	assert.Contains(t, f.messenger.edited[0].text, "Alice")
	assert.Empty(t, f.messenger.sent)
}

func TestHandleJoinCallback_DuplicateJoin(t *testing.T) {
	f := newJoinFixture(t)
	id := f.start(t, 2)
	alice := &tele.User{ID: 10, FirstName: "Alice"}

	clickJoin(t, f.handler, EncodeJoinCallback(id), alice)
	c := clickJoin(t, f.handler, EncodeJoinCallback(id), alice)

	assert.Equal(t, msgAlreadyJoined, c.responses[0].Text)
	assert.Len(t, f.messenger.edited, 1, "a rejected join leaves the panel alone")
}

func TestHandleJoinCallback_FinalJoinClosesPanelThenAnnounces(t *testing.T) {
	f := newJoinFixture(t)
	id := f.start(t, 2)

	clickJoin(t, f.handler, EncodeJoinCallback(id), &tele.User{ID: 10, FirstName: "Alice"})
	c := clickJoin(t, f.handler, EncodeJoinCallback(id), &tele.User{ID: 20, FirstName: "Bob"})

	assert.Contains(t, c.responses[0].Text, msgJoined)
	require.Len(t, f.messenger.edited, 2)
	assert.Empty(t, f.messenger.edited[1].options, "closed panel keeps no Join button")
	require.Len(t, f.messenger.sent, 1)
	assert.Contains(t, f.messenger.sent[0].text, "The game has ended!")

	late := clickJoin(t, f.handler, EncodeJoinCallback(id), &tele.User{ID: 30, FirstName: "Carol"})
	assert.Equal(t, msgGameClosed, late.responses[0].Text)
}

func TestHandleJoinCallback_UnknownSession(t *testing.T) {
	f := newJoinFixture(t)

	c := clickJoin(t, f.handler, EncodeJoinCallback("gone"), &tele.User{ID: 10})

	assert.Equal(t, msgGameClosed, c.responses[0].Text)
	assert.Empty(t, f.messenger.edited)
}

func TestHandleJoinCallback_ForeignData(t *testing.T) {
	f := newJoinFixture(t)

	c := clickJoin(t, f.handler, "something-else", &tele.User{ID: 10})

	assert.Equal(t, msgGameClosed, c.responses[0].Text)
}
