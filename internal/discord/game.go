package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"dicebot/internal/game/rollgame"
)

func playerCountMessage(maxPlayers int) string {
	return fmt.Sprintf("The number of players must be between 1 and %d.", maxPlayers)
}

// joinReply is what a Join button click shows once the join settles.
type joinReply struct {
	// panel is redrawn when set.
	panel *rollgame.View
	// notice is shown only to the clicker when set.
	notice string
}

func replyForJoin(result *rollgame.JoinResult, err error) joinReply {
	switch {
	case errors.Is(err, rollgame.ErrSessionClosed):
		return joinReply{}
	case errors.Is(err, rollgame.ErrAlreadyJoined):
		return joinReply{notice: "You already joined this game!"}
	case err != nil:
		return joinReply{notice: genericFailure}
	}
	return joinReply{panel: result.View, notice: "You joined the game!"}
}

// handleJoinButton handles a click on a roll game's Join button.
// The click is acknowledged before joining so a slow store or announcement
// cannot push the response past Discord's deadline.
func handleJoinButton(s *discordgo.Session, i *discordgo.InteractionCreate, games *rollgame.Manager, sessionID string) error {
	userID, name, err := invokerID(i)
	if err != nil {
		return err
	}

	if err := AcknowledgeComponent(s, i); err != nil {
		return fmt.Errorf("failed to acknowledge join: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := games.Join(ctx, sessionID, rollgame.Player{UserID: userID, Name: name})
	if err != nil && !errors.Is(err, rollgame.ErrSessionClosed) && !errors.Is(err, rollgame.ErrAlreadyJoined) {
		log.Error().Err(err).Str("session_id", sessionID).Int64("user_id", userID).Msg("Failed to join roll game")
	}

	reply := replyForJoin(result, err)
	if reply.panel != nil {
		if err := EditResponse(s, i, renderPanel(reply.panel), panelComponents(reply.panel)); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to update game panel")
		}
	}
	if reply.notice != "" {
		return FollowupEphemeral(s, i, reply.notice)
	}
	return nil
}

// announcer reports a session's end through the /rollgame interaction that started it.
type announcer struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func newAnnouncer(s *discordgo.Session, interaction *discordgo.Interaction) *announcer {
	return &announcer{session: s, interaction: interaction}
}

// Completed closes the panel, then posts the scoreboard as a follow-up to it.
func (a *announcer) Completed(ctx context.Context, outcome *rollgame.Outcome) error {
	a.closePanel(ctx, &outcome.View)

	_, err := a.session.FollowupMessageCreate(a.interaction, true, &discordgo.WebhookParams{
		Content: renderOutcome(outcome),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send scoreboard: %w", err)
	}
	return nil
}

// TimedOut removes the Join button and posts the timeout notice.
func (a *announcer) TimedOut(ctx context.Context, view *rollgame.View) error {
	a.closePanel(ctx, view)

	_, err := a.session.FollowupMessageCreate(a.interaction, true, &discordgo.WebhookParams{
		Content: renderTimeout(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send timeout notice: %w", err)
	}
	return nil
}

// closePanel redraws the /rollgame response for a finished session.
func (a *announcer) closePanel(ctx context.Context, view *rollgame.View) {
	content := renderPanel(view)
	components := panelComponents(view)
	if _, err := a.session.InteractionResponseEdit(a.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx)); err != nil {
		log.Warn().Err(err).Str("session_id", view.SessionID).Msg("Failed to close game panel")
	}
}
