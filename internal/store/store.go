// Package store provides the authoritative request table behind a narrow
// interface so the in-memory default can be swapped for a database-backed
// implementation without touching the resolver or the HTTP layer.
package store

import (
	"context"

	"mentordesk/internal/models"
)

// CreateFields are the immutable requester-supplied fields of a new request.
type CreateFields struct {
	TeamName      string
	TableNumber   string
	QueryCategory string
	Details       string
}

// AcceptOutcome is the result class of a TryAccept call.
type AcceptOutcome int

const (
	// Accepted means this caller won the claim race.
	Accepted AcceptOutcome = iota
	// AlreadyAccepted means another responder already claimed the request.
	AlreadyAccepted
	// NotFound means no request exists with the given id.
	NotFound
)

// AcceptResult carries the outcome of a TryAccept along with the request
// state after the attempt. Request is nil only for NotFound.
type AcceptResult struct {
	Outcome AcceptOutcome
	Request *models.Request
}

// RequestStore owns the request table. All mutation goes through it and
// TryAccept is the single atomic claim entry point: under concurrent calls
// with the same id exactly one caller observes Accepted.
type RequestStore interface {
	// Create allocates a fresh id, inserts the request in pending status and
	// returns it. Must not block on external I/O.
	Create(ctx context.Context, fields CreateFields) (*models.Request, error)

	// Get returns a snapshot of the request or a NOT_FOUND AppError.
	Get(ctx context.Context, id string) (*models.Request, error)

	// TryAccept atomically transitions pending -> accepted. Losers get
	// AlreadyAccepted with the winner's identity on the returned request.
	TryAccept(ctx context.Context, id string, by models.Responder) (AcceptResult, error)

	// AttachMessage records where the notification was posted together with
	// the rendered content that was sent. Called once per request in the
	// normal flow.
	AttachMessage(ctx context.Context, id, channelID, messageID, rendered string) error

	// MarkDispatchFailed flags a request whose notification send failed.
	MarkDispatchFailed(ctx context.Context, id string) error

	// Count returns the number of requests in the table.
	Count(ctx context.Context) (int64, error)
}
