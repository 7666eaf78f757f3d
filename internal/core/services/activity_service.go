package services

import (
	"context"
	"log"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
)

// ActivityService records and lists audit log entries
type ActivityService struct {
	activityRepo repositories.ActivityLogRepository
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repositories.ActivityLogRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record appends an audit entry. Audit writes are best-effort: a failed
// write is logged but never fails the action it describes.
func (s *ActivityService) Record(ctx context.Context, userID uint, userName, action, details string) {
	entry := &models.ActivityLog{
		UserID:   userID,
		UserName: userName,
		Action:   action,
		Details:  details,
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit entry [%s]: %v", action, err)
	}
}

// RecordActor appends an audit entry on behalf of the given actor
func (s *ActivityService) RecordActor(ctx context.Context, actor domain.Actor, action, details string) {
	s.Record(ctx, actor.ID, actor.Username, action, details)
}

// List returns audit entries, newest first
func (s *ActivityService) List(ctx context.Context, filter repositories.ActivityLogFilter, offset, limit int) ([]*models.ActivityLog, int64, error) {
	return s.activityRepo.List(ctx, filter, offset, limit)
}
