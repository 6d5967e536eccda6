package discord

import (
	"context"
	"fmt"
	"log/slog"

	"mentordesk/internal/models"
	"mentordesk/internal/resolver"

	"github.com/bwmarrin/discordgo"
)

// ClaimHandler resolves a claim interaction coming from a chat control.
// Implemented by service.RequestService.
type ClaimHandler interface {
	HandleClaimInteraction(ctx context.Context, rawToken string, by models.Responder) (resolver.Outcome, error)
}

// BindInteractions registers the button interaction handler. Must be called
// before Open so no early interactions are dropped.
func (g *Gateway) BindInteractions(handler ClaimHandler) {
	g.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}

		ctx := context.Background()
		token := i.MessageComponentData().CustomID
		responder := responderFromInteraction(i)

		outcome, err := handler.HandleClaimInteraction(ctx, token, responder)
		if err != nil {
			g.logger.ErrorContext(ctx, "claim interaction failed",
				slog.String("token", token),
				slog.String("error", err.Error()))
			g.replyEphemeral(s, i, "Something went wrong handling this request. Please try again.")
			return
		}

		switch outcome.Kind {
		case resolver.Ignored:
			// Not a claim control; leave the interaction for other handlers.

		case resolver.NotFound:
			g.replyEphemeral(s, i, "This request was not found or was already handled.")

		case resolver.AlreadyClaimed:
			g.replyEphemeral(s, i, fmt.Sprintf("Already accepted by %s.", outcome.AcceptedBy))

		case resolver.Claimed:
			// The dispatcher already edited the message; just acknowledge the
			// interaction so Discord doesn't show a failure to the mentor.
			if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseDeferredMessageUpdate,
			}); err != nil {
				g.logger.WarnContext(ctx, "failed to acknowledge claim interaction",
					slog.String("error", err.Error()))
			}
		}
	})
}

func (g *Gateway) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.logger.Warn("failed to send ephemeral reply", slog.String("error", err.Error()))
	}
}

// responderFromInteraction extracts the mentor identity. Display name
// preference: guild nickname, then global name, then username.
func responderFromInteraction(i *discordgo.InteractionCreate) models.Responder {
	var user *discordgo.User
	nick := ""
	if i.Member != nil {
		user = i.Member.User
		nick = i.Member.Nick
	} else {
		user = i.User
	}
	if user == nil {
		return models.Responder{DisplayName: "Mentor"}
	}

	name := nick
	if name == "" {
		name = user.GlobalName
	}
	if name == "" {
		name = user.Username
	}
	if name == "" {
		name = "Mentor"
	}

	tag := user.Username
	if user.Discriminator != "" && user.Discriminator != "0" {
		tag = user.Username + "#" + user.Discriminator
	}

	return models.Responder{
		ID:          user.ID,
		Tag:         tag,
		DisplayName: name,
	}
}
