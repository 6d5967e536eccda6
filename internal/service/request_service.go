// Package service implements the request-gateway business logic between the
// HTTP transport and the store, resolver, and dispatcher.
package service

import (
	"context"
	"log/slog"

	"mentordesk/internal/models"
	"mentordesk/internal/notify"
	"mentordesk/internal/observability"
	"mentordesk/internal/resolver"
	"mentordesk/internal/store"
)

// CreateRequestInput carries the requester-supplied fields of a new request.
type CreateRequestInput struct {
	TeamName      string `json:"teamName"`
	TableNumber   string `json:"tableNumber"`
	QueryCategory string `json:"queryCategory"`
	Details       string `json:"details"`
}

// RequestService accepts creation requests, serves status snapshots, and
// routes claim interactions coming from the chat side.
type RequestService struct {
	store      store.RequestStore
	dispatcher *notify.Dispatcher
	resolver   *resolver.Resolver
	logger     *slog.Logger
}

// NewRequestService returns a new RequestService.
func NewRequestService(requests store.RequestStore, dispatcher *notify.Dispatcher, claims *resolver.Resolver, logger *slog.Logger) *RequestService {
	return &RequestService{
		store:      requests,
		dispatcher: dispatcher,
		resolver:   claims,
		logger:     logger,
	}
}

// CreateRequest validates the input, stores the request, and dispatches the
// chat notification. Dependency checks run before any store mutation. A
// dispatch failure after insertion is logged and the creation still succeeds:
// the request stays queryable in a degraded state, flagged on its snapshot.
func (s *RequestService) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.Request, error) {
	if input.TeamName == "" || input.TableNumber == "" || input.QueryCategory == "" {
		return nil, models.NewValidationError("teamName, tableNumber, and queryCategory are required")
	}

	if !s.dispatcher.HasChannel() {
		return nil, models.NewDependencyUnavailableError("mentor channel is not configured")
	}
	if !s.dispatcher.Ready() {
		return nil, models.NewDependencyUnavailableError("chat gateway not ready, please try again")
	}

	req, err := s.store.Create(ctx, store.CreateFields{
		TeamName:      input.TeamName,
		TableNumber:   input.TableNumber,
		QueryCategory: input.QueryCategory,
		Details:       input.Details,
	})
	if err != nil {
		return nil, err
	}
	observability.RequestsCreated.Inc()

	channelID, messageID, rendered, dispatchErr := s.dispatcher.Announce(ctx, req)
	if dispatchErr != nil {
		s.logger.ErrorContext(ctx, "failed to dispatch mentor request notification",
			slog.String("request_id", req.ID),
			slog.String("error", dispatchErr.Error()))
		if markErr := s.store.MarkDispatchFailed(ctx, req.ID); markErr != nil {
			s.logger.ErrorContext(ctx, "failed to flag dispatch failure",
				slog.String("request_id", req.ID),
				slog.String("error", markErr.Error()))
		}
		req.DispatchFailed = true
		return req, nil
	}

	if err := s.store.AttachMessage(ctx, req.ID, channelID, messageID, rendered); err != nil {
		s.logger.ErrorContext(ctx, "failed to record message location",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()))
	}

	return req, nil
}

// GetStatus returns the external status snapshot for the request.
func (s *RequestService) GetStatus(ctx context.Context, id string) (*models.RequestSnapshot, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return req.Snapshot(), nil
}

// HandleClaimInteraction parses the raw control token and resolves the claim.
// Interactions carrying a non-claim action are discarded without touching the
// store.
func (s *RequestService) HandleClaimInteraction(ctx context.Context, rawToken string, by models.Responder) (resolver.Outcome, error) {
	token, err := models.ParseClaimToken(rawToken)
	if err != nil {
		return resolver.Outcome{Kind: resolver.Ignored}, nil
	}
	return s.resolver.Resolve(ctx, token, by)
}
