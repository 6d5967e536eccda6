package models

import (
	"fmt"
	"strings"
)

// ClaimAction discriminates what an interactive control is for.
type ClaimAction string

// ClaimActionAccept is the accept-request button action.
const ClaimActionAccept ClaimAction = "mentor-accept"

// ClaimToken is the parsed form of the correlation token carried by a chat
// control. On the wire it is "<action>:<requestId>"; inside the service it is
// always this struct so nothing downstream dispatches on raw strings.
type ClaimToken struct {
	Action    ClaimAction
	RequestID string
}

// ParseClaimToken splits a raw control token into its action and request id.
func ParseClaimToken(raw string) (ClaimToken, error) {
	action, id, found := strings.Cut(raw, ":")
	if !found || action == "" || id == "" {
		return ClaimToken{}, fmt.Errorf("malformed claim token %q", raw)
	}
	return ClaimToken{Action: ClaimAction(action), RequestID: id}, nil
}

// String encodes the token back to its wire form.
func (t ClaimToken) String() string {
	return string(t.Action) + ":" + t.RequestID
}

// NewAcceptToken returns the accept-action token for the request.
func NewAcceptToken(requestID string) ClaimToken {
	return ClaimToken{Action: ClaimActionAccept, RequestID: requestID}
}
