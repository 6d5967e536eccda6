package store

import (
	"context"
	"errors"
	"time"

	"mentordesk/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormStore is the database-backed RequestStore. The claim race is settled by
// a conditional UPDATE guarded on status, so atomicity comes from the
// database rather than a process-local lock.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns a RequestStore backed by the given database.
func NewGormStore(db *gorm.DB) RequestStore {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, fields CreateFields) (*models.Request, error) {
	req := &models.Request{
		ID:            uuid.NewString(),
		TeamName:      fields.TeamName,
		TableNumber:   fields.TableNumber,
		QueryCategory: fields.QueryCategory,
		Details:       fields.Details,
		Status:        models.RequestStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return req, nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*models.Request, error) {
	var req models.Request
	if err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (s *gormStore) TryAccept(ctx context.Context, id string, by models.Responder) (AcceptResult, error) {
	now := time.Now().UTC()

	// Compare-and-set on status: only one concurrent caller can flip
	// pending -> accepted, everyone else affects zero rows.
	res := s.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":          models.RequestStatusAccepted,
			"accepted_by_id":  by.ID,
			"accepted_by_tag": by.Tag,
			"accepted_by":     by.DisplayName,
			"accepted_at":     now,
		})
	if res.Error != nil {
		return AcceptResult{}, models.NewInternalError(res.Error)
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return AcceptResult{Outcome: NotFound}, nil
		}
		return AcceptResult{}, err
	}

	if res.RowsAffected == 1 {
		return AcceptResult{Outcome: Accepted, Request: req}, nil
	}
	return AcceptResult{Outcome: AlreadyAccepted, Request: req}, nil
}

func (s *gormStore) AttachMessage(ctx context.Context, id, channelID, messageID, rendered string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"channel_id":       channelID,
			"message_id":       messageID,
			"rendered_message": rendered,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Request", id)
	}
	return nil
}

func (s *gormStore) MarkDispatchFailed(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", id).
		Update("dispatch_failed", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Request", id)
	}
	return nil
}

func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Request{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
