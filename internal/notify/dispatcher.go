package notify

import (
	"context"
	"fmt"
	"log/slog"

	"mentordesk/internal/models"
	"mentordesk/internal/observability"
)

const (
	acceptButtonLabel  = "Accept request"
	claimedButtonLabel = "Request claimed"
	claimThanksMessage = "You claimed this mentor request. Thank you!"
)

// Dispatcher formats mentor-request notifications and delivers them through
// the chat gateway.
type Dispatcher struct {
	gateway   ChatGateway
	channelID string
	logger    *slog.Logger
}

// NewDispatcher returns a Dispatcher posting into the given channel.
func NewDispatcher(gateway ChatGateway, channelID string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{gateway: gateway, channelID: channelID, logger: logger}
}

// Ready reports whether the underlying chat session is established.
func (d *Dispatcher) Ready() bool {
	return d.gateway != nil && d.gateway.Ready()
}

// HasChannel reports whether a target channel is configured.
func (d *Dispatcher) HasChannel() bool {
	return d.channelID != ""
}

// RenderRequestMessage formats the channel notification for a new request.
// The Details line is omitted entirely when details is empty.
func RenderRequestMessage(req *models.Request) string {
	detailLine := ""
	if req.Details != "" {
		detailLine = "\nDetails: " + req.Details
	}
	return fmt.Sprintf(
		"🆘 **Mentor Needed**\nTeam: %s\nTable: %s\nCategory: %s%s\n\nRequest ID: %s",
		req.TeamName,
		req.TableNumber,
		req.QueryCategory,
		detailLine,
		req.ID,
	)
}

// Announce posts the request notification with its accept control and returns
// the channel and message ids together with the rendered content. A failure
// here leaves the request stored but without a claim control.
func (d *Dispatcher) Announce(ctx context.Context, req *models.Request) (channelID, messageID, content string, err error) {
	content = RenderRequestMessage(req)
	controls := []Control{{
		CustomID: models.NewAcceptToken(req.ID).String(),
		Label:    acceptButtonLabel,
		Style:    ControlStyleSuccess,
	}}

	messageID, err = d.gateway.SendMessage(ctx, d.channelID, content, controls)
	if err != nil {
		observability.DispatchFailures.WithLabelValues("announce").Inc()
		return "", "", content, models.NewDispatchError("send", err)
	}
	return d.channelID, messageID, content, nil
}

// AnnounceAccepted rewrites the original notification with the acceptance
// line and a disabled control, then sends a private acknowledgment to the
// mentor. Both deliveries are best-effort: the state transition has already
// committed and is never rolled back on chat failure.
func (d *Dispatcher) AnnounceAccepted(ctx context.Context, req *models.Request, mentorName string) {
	if req.ChannelID == "" || req.MessageID == "" {
		d.logger.WarnContext(ctx, "no chat message to update for accepted request",
			slog.String("request_id", req.ID))
		return
	}

	content := req.RenderedMessage + "\n\n✅ Accepted by " + mentorName
	controls := []Control{{
		CustomID: models.NewAcceptToken(req.ID).String(),
		Label:    claimedButtonLabel,
		Style:    ControlStyleSecondary,
		Disabled: true,
	}}

	if err := d.gateway.UpdateMessage(ctx, req.ChannelID, req.MessageID, content, controls); err != nil {
		observability.DispatchFailures.WithLabelValues("update").Inc()
		d.logger.ErrorContext(ctx, "failed to update accepted request message",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()))
	}

	if req.AcceptedByID == "" {
		return
	}
	if err := d.gateway.SendDirectMessage(ctx, req.AcceptedByID, claimThanksMessage); err != nil {
		observability.DispatchFailures.WithLabelValues("ack").Inc()
		d.logger.WarnContext(ctx, "failed to send claim acknowledgment",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()))
	}
}
