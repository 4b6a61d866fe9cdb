package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/models"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/agorahq/agora/internal/notification"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// DefaultReputationThrottle is the minimum gap between two
// reputation-changed notifications to the same user.
const DefaultReputationThrottle = 30 * time.Minute

const (
	maxHistoryLimit = 100

	// queuedSweepSize is the map size at which expired entries are pruned.
	queuedSweepSize = 1024
)

// ReputationService handles reputation-related business logic.
type ReputationService struct {
	db            *bun.DB
	model         *models.ReputationModel
	users         *models.UserModel
	notifications *models.NotificationModel
	notifier      Notifier
	throttle      time.Duration
	logger        *zap.Logger

	// queuedMu guards queued, the last enqueue time per user. It covers the
	// gap until the dispatcher persists the notification.
	queuedMu sync.Mutex
	queued   map[int64]time.Time
}

// NewReputation creates a new reputation service.
func NewReputation(
	db *bun.DB,
	model *models.ReputationModel,
	users *models.UserModel,
	notifications *models.NotificationModel,
	notifier Notifier,
	throttle time.Duration,
	logger *zap.Logger,
) *ReputationService {
	if throttle <= 0 {
		throttle = DefaultReputationThrottle
	}
	return &ReputationService{
		db:            db,
		model:         model,
		users:         users,
		notifications: notifications,
		notifier:      notifier,
		throttle:      throttle,
		logger:        logger.Named("reputation_service"),
		queued:        make(map[int64]time.Time),
	}
}

// Credit applies amount to the user's reputation in its own transaction
// and returns the new total, which never drops below zero.
func (s *ReputationService) Credit(
	ctx context.Context, userID int64, amount int, reason enum.ReputationReason, relatedID int64,
) (int, error) {
	var entry *types.ReputationHistory

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		var err error
		entry, err = s.CreditTx(ctx, tx, userID, amount, reason, relatedID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.NotifyChanged(ctx, entry)

	return entry.NewTotal, nil
}

// CreditForAction credits the fixed amount of a community action.
func (s *ReputationService) CreditForAction(
	ctx context.Context, userID int64, reason enum.ReputationReason, relatedID int64,
) (int, error) {
	action, ok := types.ReputationActions[reason]
	if !ok {
		return 0, fmt.Errorf("%w: no fixed amount for %s", types.ErrInvalidArgument, reason)
	}

	return s.Credit(ctx, userID, action.Amount, action.Reason, relatedID)
}

// CreditTx credits reputation as part of a caller's transaction. The
// caller passes the returned entry to NotifyChanged after committing.
func (s *ReputationService) CreditTx(
	ctx context.Context, idb bun.IDB, userID int64, amount int, reason enum.ReputationReason, relatedID int64,
) (*types.ReputationHistory, error) {
	return s.model.Credit(ctx, idb, userID, amount, reason, relatedID)
}

// NotifyChanged tells the user about a ledger entry unless they were
// already notified within the throttle window. Both persisted
// notifications and ones still waiting in the dispatcher count.
func (s *ReputationService) NotifyChanged(ctx context.Context, entry *types.ReputationHistory) {
	if entry == nil {
		return
	}

	if s.recentlyQueued(entry.UserID, time.Now()) {
		s.logger.Debug("Reputation notification throttled",
			zap.Int64("userID", entry.UserID))
		return
	}

	latest, err := s.notifications.GetLatestOfType(ctx, entry.UserID, enum.NotificationTypeReputationChanged)
	if err != nil {
		s.logger.Warn("Failed to check reputation notification throttle",
			zap.Error(err),
			zap.Int64("userID", entry.UserID))
		return
	}

	if latest != nil && time.Since(latest.CreatedAt) < s.throttle {
		s.logger.Debug("Reputation notification throttled",
			zap.Int64("userID", entry.UserID),
			zap.Time("lastNotified", latest.CreatedAt))
		return
	}

	if !s.claim(entry.UserID, time.Now()) {
		return
	}

	s.notifier.Enqueue(notification.ReputationChanged(entry))
}

func (s *ReputationService) recentlyQueued(userID int64, now time.Time) bool {
	s.queuedMu.Lock()
	defer s.queuedMu.Unlock()

	at, ok := s.queued[userID]
	return ok && now.Sub(at) < s.throttle
}

// claim records an enqueue for userID unless another caller got there
// first within the window.
func (s *ReputationService) claim(userID int64, now time.Time) bool {
	s.queuedMu.Lock()
	defer s.queuedMu.Unlock()

	if at, ok := s.queued[userID]; ok && now.Sub(at) < s.throttle {
		return false
	}

	if len(s.queued) >= queuedSweepSize {
		for id, at := range s.queued {
			if now.Sub(at) >= s.throttle {
				delete(s.queued, id)
			}
		}
	}

	s.queued[userID] = now
	return true
}

// History returns the newest ledger entries of a user.
func (s *ReputationService) History(
	ctx context.Context, userID int64, limit, offset int,
) ([]*types.ReputationHistory, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	return s.model.GetHistory(ctx, userID, limit, offset)
}
