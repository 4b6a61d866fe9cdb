package models

import (
	"context"
	"fmt"
	"time"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ReputationModel maintains the append-only reputation ledger and the
// cached total on the user row.
type ReputationModel struct {
	db     *bun.DB
	users  *UserModel
	logger *zap.Logger
}

// NewReputation creates a ReputationModel.
func NewReputation(db *bun.DB, users *UserModel, logger *zap.Logger) *ReputationModel {
	return &ReputationModel{
		db:     db,
		users:  users,
		logger: logger.Named("db_reputation"),
	}
}

// Credit applies amount to the user's total, floored at zero, and appends
// a ledger entry recording the requested amount. It must run inside a
// transaction so the total and the entry stay consistent.
func (r *ReputationModel) Credit(
	ctx context.Context, idb bun.IDB, userID int64, amount int, reason enum.ReputationReason, relatedID int64,
) (*types.ReputationHistory, error) {
	user, err := r.users.GetUser(ctx, idb, userID, true)
	if err != nil {
		return nil, err
	}

	entry := &types.ReputationHistory{
		UserID:    userID,
		Amount:    amount,
		OldTotal:  user.Reputation,
		NewTotal:  max(0, user.Reputation+amount),
		Reason:    reason,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.users.SetReputation(ctx, idb, userID, entry.NewTotal); err != nil {
		return nil, err
	}

	if _, err := idb.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to append reputation history: %w", err)
	}

	r.logger.Debug("Credited reputation",
		zap.Int64("userID", userID),
		zap.Int("amount", amount),
		zap.Int("oldTotal", entry.OldTotal),
		zap.Int("newTotal", entry.NewTotal),
		zap.String("reason", reason.String()))

	return entry, nil
}

// GetHistory returns a user's ledger entries, newest first.
func (r *ReputationModel) GetHistory(
	ctx context.Context, userID int64, limit, offset int,
) ([]*types.ReputationHistory, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ReputationHistory, error) {
		var entries []*types.ReputationHistory

		err := r.db.NewSelect().
			Model(&entries).
			Where("user_id = ?", userID).
			Order("id DESC").
			Limit(limit).
			Offset(offset).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get reputation history: %w", err)
		}

		return entries, nil
	})
}
