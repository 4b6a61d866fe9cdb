package service

import (
	"context"
	"fmt"

	"github.com/agorahq/agora/internal/database/models"
	"github.com/agorahq/agora/internal/database/types"
	"go.uber.org/zap"
)

const maxNotificationLimit = 100

// NotificationService is the read side of user notifications.
type NotificationService struct {
	model  *models.NotificationModel
	logger *zap.Logger
}

// NewNotification creates a new notification service.
func NewNotification(model *models.NotificationModel, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		model:  model,
		logger: logger.Named("notification_service"),
	}
}

// List returns the newest notifications of a user.
func (s *NotificationService) List(
	ctx context.Context, userID int64, unreadOnly bool, limit, offset int,
) ([]*types.Notification, error) {
	if limit <= 0 || limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.model.GetNotifications(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks one notification as read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	n, err := s.model.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.RecipientID != userID {
		return fmt.Errorf("%w: notification belongs to another user", types.ErrForbidden)
	}
	if n.IsRead {
		return nil
	}
	return s.model.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead marks every unread notification of a user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	count, err := s.model.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Marked notifications read",
		zap.Int64("userID", userID),
		zap.Int64("count", count))

	return count, nil
}

// UnreadCount counts a user's unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.model.CountUnread(ctx, userID)
}
