// Package discord adapts a discordgo session to the chat gateway capability
// and wires button interactions back into the claim flow.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"mentordesk/internal/notify"

	"github.com/bwmarrin/discordgo"
)

// Gateway wraps a Discord bot session. It implements notify.ChatGateway.
type Gateway struct {
	session *discordgo.Session
	ready   atomic.Bool
	logger  *slog.Logger
}

// New creates a Gateway from a bot token. The session is not opened yet;
// call Open after binding interaction handlers.
func New(token string, logger *slog.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	g := &Gateway{session: session, logger: logger}

	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Ready) {
		g.ready.Store(true)
		logger.Info("Discord bot ready")
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		g.ready.Store(true)
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		g.ready.Store(false)
		logger.Warn("Discord session disconnected")
	})

	return g, nil
}

// Open establishes the websocket session to Discord.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close tears down the session.
func (g *Gateway) Close() error {
	g.ready.Store(false)
	return g.session.Close()
}

// Ready reports whether the bot session is established.
func (g *Gateway) Ready() bool {
	return g.ready.Load()
}

// SendMessage posts content with controls to the channel and returns the
// message id.
func (g *Gateway) SendMessage(ctx context.Context, channelID, content string, controls []notify.Control) (string, error) {
	msg, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content,
		Components: buildComponents(controls),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send channel message: %w", err)
	}
	return msg.ID, nil
}

// UpdateMessage rewrites an existing message's content and controls.
func (g *Gateway) UpdateMessage(ctx context.Context, channelID, messageID, content string, controls []notify.Control) error {
	components := buildComponents(controls)
	_, err := g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit channel message: %w", err)
	}
	return nil
}

// SendDirectMessage delivers a private message to the user.
func (g *Gateway) SendDirectMessage(ctx context.Context, userID, content string) error {
	channel, err := g.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := g.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

func buildComponents(controls []notify.Control) []discordgo.MessageComponent {
	if len(controls) == 0 {
		return nil
	}
	buttons := make([]discordgo.MessageComponent, 0, len(controls))
	for _, control := range controls {
		style := discordgo.SuccessButton
		if control.Style == notify.ControlStyleSecondary {
			style = discordgo.SecondaryButton
		}
		buttons = append(buttons, discordgo.Button{
			CustomID: control.CustomID,
			Label:    control.Label,
			Style:    style,
			Disabled: control.Disabled,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}
