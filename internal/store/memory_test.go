package store

import (
	"context"
	"sync"
	"testing"

	"mentordesk/internal/models"
)

func TestMemoryStoreCreateStartsPending(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	req, err := s.Create(context.Background(), CreateFields{
		TeamName:      "Alpha",
		TableNumber:   "T3",
		QueryCategory: "Hardware",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.ID == "" {
		t.Fatal("expected allocated id")
	}
	if req.Status != models.RequestStatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.AcceptedAt != nil || req.AcceptedBy != "" {
		t.Fatal("fresh request must not carry acceptance fields")
	}

	got, err := s.Get(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TeamName != "Alpha" || got.TableNumber != "T3" || got.QueryCategory != "Hardware" {
		t.Fatalf("fields not preserved: %+v", got)
	}
}

func TestMemoryStoreGetUnknownID(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected not found error")
	}
	appErr, ok := err.(*models.AppError)
	if !ok || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND app error, got %#v", err)
	}
}

func TestMemoryStoreTryAcceptUnknownID(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	result, err := s.TryAccept(context.Background(), "nope", models.Responder{DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("try accept: %v", err)
	}
	if result.Outcome != NotFound {
		t.Fatalf("expected NotFound, got %v", result.Outcome)
	}
	if count, _ := s.Count(context.Background()); count != 0 {
		t.Fatalf("expected empty table, got %d", count)
	}
}

func TestMemoryStoreTryAcceptSetsAllAcceptanceFields(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Alpha", TableNumber: "T3", QueryCategory: "Hardware"})

	result, err := s.TryAccept(context.Background(), req.ID, models.Responder{
		ID: "42", Tag: "bob#1234", DisplayName: "Bob",
	})
	if err != nil {
		t.Fatalf("try accept: %v", err)
	}
	if result.Outcome != Accepted {
		t.Fatalf("expected Accepted, got %v", result.Outcome)
	}

	got, _ := s.Get(context.Background(), req.ID)
	if got.Status != models.RequestStatusAccepted {
		t.Fatalf("expected accepted status, got %s", got.Status)
	}
	if got.AcceptedByID != "42" || got.AcceptedByTag != "bob#1234" || got.AcceptedBy != "Bob" {
		t.Fatalf("acceptor identity not recorded: %+v", got)
	}
	if got.AcceptedAt == nil {
		t.Fatal("acceptedAt must be set together with acceptedBy")
	}
}

func TestMemoryStoreSecondAcceptLosesWithWinnerIdentity(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Alpha", TableNumber: "T3", QueryCategory: "Hardware"})

	first, _ := s.TryAccept(context.Background(), req.ID, models.Responder{ID: "1", DisplayName: "Bob"})
	if first.Outcome != Accepted {
		t.Fatalf("expected first accept to win, got %v", first.Outcome)
	}

	second, err := s.TryAccept(context.Background(), req.ID, models.Responder{ID: "2", DisplayName: "Carol"})
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if second.Outcome != AlreadyAccepted {
		t.Fatalf("expected AlreadyAccepted, got %v", second.Outcome)
	}
	if second.Request.AcceptedBy != "Bob" {
		t.Fatalf("expected winner Bob surfaced to loser, got %q", second.Request.AcceptedBy)
	}
}

// Many concurrent claims on one request: exactly one Accepted, the rest
// AlreadyAccepted carrying the same winner.
func TestMemoryStoreConcurrentClaimsExactlyOneWinner(t *testing.T) {
	t.Parallel()

	const attempts = 128

	s := NewMemoryStore()
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Alpha", TableNumber: "T3", QueryCategory: "Hardware"})

	results := make([]AcceptResult, attempts)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			result, err := s.TryAccept(context.Background(), req.ID, models.Responder{
				ID:          string(rune('a' + n%26)),
				DisplayName: "Mentor",
			})
			if err != nil {
				t.Errorf("try accept %d: %v", n, err)
				return
			}
			results[n] = result
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	var winnerID string
	for _, result := range results {
		if result.Outcome == Accepted {
			winners++
			winnerID = result.Request.AcceptedByID
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
	for _, result := range results {
		if result.Outcome == AlreadyAccepted && result.Request.AcceptedByID != winnerID {
			t.Fatalf("loser saw winner %q, actual winner %q", result.Request.AcceptedByID, winnerID)
		}
	}
}

func TestMemoryStoreAttachMessage(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Alpha", TableNumber: "T3", QueryCategory: "Hardware"})

	if err := s.AttachMessage(context.Background(), req.ID, "chan-1", "msg-1", "rendered text"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	got, _ := s.Get(context.Background(), req.ID)
	if got.ChannelID != "chan-1" || got.MessageID != "msg-1" || got.RenderedMessage != "rendered text" {
		t.Fatalf("message location not recorded: %+v", got)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Alpha", TableNumber: "T3", QueryCategory: "Hardware"})

	got, _ := s.Get(context.Background(), req.ID)
	got.TeamName = "mutated"

	fresh, _ := s.Get(context.Background(), req.ID)
	if fresh.TeamName != "Alpha" {
		t.Fatal("caller mutation leaked into the table")
	}
}
