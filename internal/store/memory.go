package store

import (
	"context"
	"sync"
	"time"

	"mentordesk/internal/models"

	"github.com/google/uuid"
)

// memoryStore is the default process-lifetime request table. Requests are
// never deleted; losing them on restart is an accepted property of the
// service.
type memoryStore struct {
	mu       sync.Mutex
	requests map[string]*models.Request
}

// NewMemoryStore returns an empty in-memory RequestStore.
func NewMemoryStore() RequestStore {
	return &memoryStore{requests: make(map[string]*models.Request)}
}

func (s *memoryStore) Create(_ context.Context, fields CreateFields) (*models.Request, error) {
	now := time.Now().UTC()
	req := &models.Request{
		ID:            uuid.NewString(),
		TeamName:      fields.TeamName,
		TableNumber:   fields.TableNumber,
		QueryCategory: fields.QueryCategory,
		Details:       fields.Details,
		Status:        models.RequestStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.requests[req.ID] = req
	s.mu.Unlock()

	return copyRequest(req), nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, models.NewNotFoundError("Request", id)
	}
	return copyRequest(req), nil
}

// TryAccept holds the table lock for the whole check-and-set so two
// near-simultaneous claims can never both observe pending.
func (s *memoryStore) TryAccept(_ context.Context, id string, by models.Responder) (AcceptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return AcceptResult{Outcome: NotFound}, nil
	}
	if req.Status == models.RequestStatusAccepted {
		return AcceptResult{Outcome: AlreadyAccepted, Request: copyRequest(req)}, nil
	}

	now := time.Now().UTC()
	req.Status = models.RequestStatusAccepted
	req.AcceptedByID = by.ID
	req.AcceptedByTag = by.Tag
	req.AcceptedBy = by.DisplayName
	req.AcceptedAt = &now
	req.UpdatedAt = now

	return AcceptResult{Outcome: Accepted, Request: copyRequest(req)}, nil
}

func (s *memoryStore) AttachMessage(_ context.Context, id, channelID, messageID, rendered string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return models.NewNotFoundError("Request", id)
	}
	req.ChannelID = channelID
	req.MessageID = messageID
	req.RenderedMessage = rendered
	req.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryStore) MarkDispatchFailed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return models.NewNotFoundError("Request", id)
	}
	req.DispatchFailed = true
	req.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.requests)), nil
}

// copyRequest returns a shallow copy so callers never share the table's
// mutable entry outside the lock.
func copyRequest(req *models.Request) *models.Request {
	clone := *req
	if req.AcceptedAt != nil {
		at := *req.AcceptedAt
		clone.AcceptedAt = &at
	}
	return &clone
}
