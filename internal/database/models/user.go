package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/agorahq/agora/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UserModel handles database operations for users.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a UserModel.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// CreateUser inserts a new user and fills in its ID.
func (r *UserModel) CreateUser(ctx context.Context, user *types.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// GetUserByID retrieves a user outside of any transaction.
func (r *UserModel) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		return r.GetUser(ctx, r.db, id, false)
	})
}

// GetUser retrieves a user through idb, optionally locking the row.
func (r *UserModel) GetUser(ctx context.Context, idb bun.IDB, id int64, lock bool) (*types.User, error) {
	var user types.User

	query := idb.NewSelect().Model(&user).Where("id = ?", id)
	if lock {
		query = forUpdate(idb, query)
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// SetReputation overwrites the cached reputation total.
func (r *UserModel) SetReputation(ctx context.Context, idb bun.IDB, id int64, total int) error {
	_, err := idb.NewUpdate().
		Model((*types.User)(nil)).
		Set("reputation = ?", total).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set reputation: %w", err)
	}
	return nil
}
