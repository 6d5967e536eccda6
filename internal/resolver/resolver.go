// Package resolver decides the outcome of a claim attempt against a mentor
// request and drives the resulting chat-side updates.
package resolver

import (
	"context"
	"log/slog"

	"mentordesk/internal/models"
	"mentordesk/internal/notify"
	"mentordesk/internal/observability"
	"mentordesk/internal/store"
)

// OutcomeKind classifies the result of a claim attempt.
type OutcomeKind int

const (
	// Claimed means this responder won the request.
	Claimed OutcomeKind = iota
	// AlreadyClaimed means another responder got there first.
	AlreadyClaimed
	// NotFound means no request matches the token's id.
	NotFound
	// Ignored means the token's action is not a claim: the interaction is
	// discarded without touching the store.
	Ignored
)

// Outcome is the result of resolving a claim attempt. AcceptedBy carries the
// winner's display name for Claimed and AlreadyClaimed.
type Outcome struct {
	Kind       OutcomeKind
	AcceptedBy string
	Request    *models.Request
}

// Resolver enforces the at-most-one-claim-wins transition. Atomicity lives in
// the store's TryAccept; the resolver only interprets its result and emits
// the best-effort chat side effects on a win.
type Resolver struct {
	store      store.RequestStore
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// New returns a Resolver over the given store and dispatcher.
func New(requests store.RequestStore, dispatcher *notify.Dispatcher, logger *slog.Logger) *Resolver {
	return &Resolver{store: requests, dispatcher: dispatcher, logger: logger}
}

// Resolve runs one claim attempt to completion. Chat-gateway calls happen
// after the atomic transition, using only its result; a delivery failure
// never rolls the transition back.
func (r *Resolver) Resolve(ctx context.Context, token models.ClaimToken, by models.Responder) (Outcome, error) {
	if token.Action != models.ClaimActionAccept {
		return Outcome{Kind: Ignored}, nil
	}

	result, err := r.store.TryAccept(ctx, token.RequestID, by)
	if err != nil {
		return Outcome{}, err
	}

	switch result.Outcome {
	case store.NotFound:
		observability.ClaimAttempts.WithLabelValues("not_found").Inc()
		return Outcome{Kind: NotFound}, nil

	case store.AlreadyAccepted:
		observability.ClaimAttempts.WithLabelValues("already_claimed").Inc()
		return Outcome{
			Kind:       AlreadyClaimed,
			AcceptedBy: result.Request.AcceptorName(),
			Request:    result.Request,
		}, nil
	}

	observability.ClaimAttempts.WithLabelValues("claimed").Inc()
	r.logger.InfoContext(ctx, "mentor request claimed",
		slog.String("request_id", result.Request.ID),
		slog.String("mentor", by.DisplayName))

	r.dispatcher.AnnounceAccepted(ctx, result.Request, by.DisplayName)

	return Outcome{
		Kind:       Claimed,
		AcceptedBy: by.DisplayName,
		Request:    result.Request,
	}, nil
}
