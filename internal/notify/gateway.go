// Package notify builds the outbound chat notifications for mentor requests
// and talks to the chat platform through the ChatGateway capability.
package notify

import "context"

// ControlStyle selects the visual style of an interactive control.
type ControlStyle int

const (
	// ControlStyleSuccess renders the control as a primary/positive action.
	ControlStyleSuccess ControlStyle = iota
	// ControlStyleSecondary renders the control as a muted/neutral action.
	ControlStyleSecondary
)

// Control describes one interactive control attached to a chat message. The
// CustomID carries the claim correlation token.
type Control struct {
	CustomID string
	Label    string
	Style    ControlStyle
	Disabled bool
}

// ChatGateway is the capability the core needs from the chat platform. The
// concrete session (connection, login, channel lookup) lives behind it.
type ChatGateway interface {
	// Ready reports whether the chat session is established.
	Ready() bool

	// SendMessage posts content with the given controls to a channel and
	// returns the resulting message id.
	SendMessage(ctx context.Context, channelID, content string, controls []Control) (string, error)

	// UpdateMessage rewrites an existing message's content and controls.
	UpdateMessage(ctx context.Context, channelID, messageID, content string, controls []Control) error

	// SendDirectMessage delivers a private message to a user.
	SendDirectMessage(ctx context.Context, userID, content string) error
}
