package handler

import (
	"net/http"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/rest/convert"
	"github.com/agorahq/agora/internal/rest/middleware/auth"
	restTypes "github.com/agorahq/agora/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// NotificationHandler handles the caller's notifications and reputation history.
type NotificationHandler struct {
	services *database.Service
	logger   *zap.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(services *database.Service, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		services: services,
		logger:   logger.Named("notification_handler"),
	}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	limit, err := queryInt(req, "limit", 50)
	if err != nil {
		return err
	}
	offset, err := queryInt(req, "offset", 0)
	if err != nil {
		return err
	}
	unreadOnly := req.URL.Query().Get("unread") == "true"

	notifications, err := h.services.Notification().List(req.Context(), identity.UserID, unreadOnly, limit, offset)
	if err != nil {
		return err
	}

	unread, err := h.services.Notification().UnreadCount(req.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.NotificationsResponse{
		Success:       true,
		Unread:        unread,
		Notifications: convert.Notifications(notifications),
	})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	notificationID, err := pathID(req, "id")
	if err != nil {
		return err
	}

	if err := h.services.Notification().MarkRead(req.Context(), identity.UserID, notificationID); err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.SuccessResponse{Success: true})
}

// MarkAllRead marks all of the caller's notifications as read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, req bunrouter.Request) error {
	identity, err := auth.Require(req.Context())
	if err != nil {
		return err
	}

	updated, err := h.services.Notification().MarkAllRead(req.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.MarkAllReadResponse{Success: true, Updated: updated})
}

// Reputation returns a user's reputation history. It is public.
func (h *NotificationHandler) Reputation(w http.ResponseWriter, req bunrouter.Request) error {
	userID, err := pathID(req, "id")
	if err != nil {
		return err
	}

	limit, err := queryInt(req, "limit", 50)
	if err != nil {
		return err
	}
	offset, err := queryInt(req, "offset", 0)
	if err != nil {
		return err
	}

	history, err := h.services.Reputation().History(req.Context(), userID, limit, offset)
	if err != nil {
		return err
	}

	return bunrouter.JSON(w, restTypes.ReputationResponse{
		Success: true,
		History: convert.ReputationHistory(history),
	})
}
