package store

import (
	"context"
	"testing"

	"mentordesk/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Request{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormStoreCreateAndGet(t *testing.T) {
	s := NewGormStore(newTestDB(t))

	req, err := s.Create(context.Background(), CreateFields{
		TeamName:      "Beta",
		TableNumber:   "7",
		QueryCategory: "Software",
		Details:       "Segfault in driver",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.RequestStatusPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}
	if got.Details != "Segfault in driver" {
		t.Fatalf("details not preserved: %q", got.Details)
	}

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}
}

func TestGormStoreGetUnknownID(t *testing.T) {
	s := NewGormStore(newTestDB(t))

	_, err := s.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected not found error")
	}
	appErr, ok := err.(*models.AppError)
	if !ok || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND app error, got %#v", err)
	}
}

func TestGormStoreTryAcceptIsCompareAndSet(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Beta", TableNumber: "7", QueryCategory: "Software"})

	first, err := s.TryAccept(context.Background(), req.ID, models.Responder{ID: "1", Tag: "bob#1234", DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if first.Outcome != Accepted {
		t.Fatalf("expected Accepted, got %v", first.Outcome)
	}
	if first.Request.AcceptedAt == nil || first.Request.AcceptedBy != "Bob" {
		t.Fatalf("acceptance fields not recorded: %+v", first.Request)
	}

	second, err := s.TryAccept(context.Background(), req.ID, models.Responder{ID: "2", DisplayName: "Carol"})
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if second.Outcome != AlreadyAccepted {
		t.Fatalf("expected AlreadyAccepted, got %v", second.Outcome)
	}
	if second.Request.AcceptedBy != "Bob" {
		t.Fatalf("expected winner Bob, got %q", second.Request.AcceptedBy)
	}
}

func TestGormStoreTryAcceptUnknownID(t *testing.T) {
	s := NewGormStore(newTestDB(t))

	result, err := s.TryAccept(context.Background(), "nope", models.Responder{DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("try accept: %v", err)
	}
	if result.Outcome != NotFound {
		t.Fatalf("expected NotFound, got %v", result.Outcome)
	}
}

func TestGormStoreAttachMessageAndMarkDispatchFailed(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	req, _ := s.Create(context.Background(), CreateFields{TeamName: "Beta", TableNumber: "7", QueryCategory: "Software"})

	if err := s.AttachMessage(context.Background(), req.ID, "chan-1", "msg-1", "rendered"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := s.AttachMessage(context.Background(), "nope", "chan-1", "msg-1", "rendered"); err == nil {
		t.Fatal("expected not found on unknown id")
	}

	if err := s.MarkDispatchFailed(context.Background(), req.ID); err != nil {
		t.Fatalf("mark dispatch failed: %v", err)
	}

	got, _ := s.Get(context.Background(), req.ID)
	if got.ChannelID != "chan-1" || got.MessageID != "msg-1" || got.RenderedMessage != "rendered" {
		t.Fatalf("message location not recorded: %+v", got)
	}
	if !got.DispatchFailed {
		t.Fatal("dispatch failure flag not recorded")
	}
}
