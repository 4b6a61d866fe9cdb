package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// NotificationModel handles database operations for notifications.
type NotificationModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewNotification creates a NotificationModel.
func NewNotification(db *bun.DB, logger *zap.Logger) *NotificationModel {
	return &NotificationModel{
		db:     db,
		logger: logger.Named("db_notification"),
	}
}

// InsertNotifications stores a batch of notifications in one statement.
func (r *NotificationModel) InsertNotifications(ctx context.Context, notifications []*types.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		if _, err := r.db.NewInsert().Model(&notifications).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert notifications: %w", err)
		}
		return nil
	})
}

// GetNotifications lists a recipient's notifications, newest first.
func (r *NotificationModel) GetNotifications(
	ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int,
) ([]*types.Notification, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Notification, error) {
		var notifications []*types.Notification

		query := r.db.NewSelect().
			Model(&notifications).
			Where("recipient_id = ?", recipientID)
		if unreadOnly {
			query = query.Where("is_read = ?", false)
		}

		err := query.Order("id DESC").Limit(limit).Offset(offset).Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get notifications: %w", err)
		}

		return notifications, nil
	})
}

// GetNotificationByID retrieves a single notification.
func (r *NotificationModel) GetNotificationByID(ctx context.Context, id int64) (*types.Notification, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Notification, error) {
		var n types.Notification

		err := r.db.NewSelect().Model(&n).Where("id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrNotificationNotFound
			}
			return nil, fmt.Errorf("failed to get notification: %w", err)
		}

		return &n, nil
	})
}

// GetLatestOfType returns the recipient's newest notification of a type,
// or nil when there is none.
func (r *NotificationModel) GetLatestOfType(
	ctx context.Context, recipientID int64, typ enum.NotificationType,
) (*types.Notification, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Notification, error) {
		var n types.Notification

		err := r.db.NewSelect().
			Model(&n).
			Where("recipient_id = ?", recipientID).
			Where("type = ?", typ).
			Order("id DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get latest notification: %w", err)
		}

		return &n, nil
	})
}

// MarkRead flags one notification as read for its recipient.
func (r *NotificationModel) MarkRead(ctx context.Context, recipientID, id int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.Notification)(nil)).
			Set("is_read = ?", true).
			Where("id = ?", id).
			Where("recipient_id = ?", recipientID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
		return nil
	})
}

// MarkAllRead flags every unread notification of a recipient as read and
// returns how many changed.
func (r *NotificationModel) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		res, err := r.db.NewUpdate().
			Model((*types.Notification)(nil)).
			Set("is_read = ?", true).
			Where("recipient_id = ?", recipientID).
			Where("is_read = ?", false).
			Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to mark notifications read: %w", err)
		}
		return res.RowsAffected()
	})
}

// CountUnread counts a recipient's unread notifications.
func (r *NotificationModel) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return r.db.NewSelect().
			Model((*types.Notification)(nil)).
			Where("recipient_id = ?", recipientID).
			Where("is_read = ?", false).
			Count(ctx)
	})
}
